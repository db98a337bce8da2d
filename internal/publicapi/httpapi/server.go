package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/internal/publicapi/cache"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/dto"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/repo"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/ws"
	"github.com/radieske/live-auction-platform-poc/internal/snapshot"
)

// API expõe os endpoints REST públicos de leilão ao vivo e o WebSocket de
// invalidação. Snapshot sai do cache (invalidado por push); o histórico de
// lances do admin é passthrough direto do ledger.
type API struct {
	Log      *zap.Logger
	ReadRepo *repo.ReadRepo        // acesso bruto ao ledger (histórico admin)
	Cache    *cache.SnapshotCache // snapshots por evento
	Hub      *ws.Hub              // fan-out de invalidação pros viewers
}

// Router retorna o roteador HTTP com os endpoints REST e o WS
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/events/{eid}/snapshot", a.getSnapshot) // Visão pública denormalizada
	r.Get("/v1/events/{eid}/bids", a.getBidHistory)   // Histórico bruto (admin)
	r.Get("/ws", a.Hub.HandleWS)                      // Push de invalidação
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError devolve o corpo de erro estruturado com código estável
func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg, Code: code})
}

// getSnapshot retorna o snapshot público do evento. Por padrão o caminho é
// correto-primeiro (reconstrói se STALE); ?mode=best_effort opta pelo caminho
// rápido não-autoritativo, que pode servir valor anotado como obsoleto.
func (a *API) getSnapshot(w http.ResponseWriter, r *http.Request) {
	eid := chi.URLParam(r, "eid")

	get := a.Cache.Get
	if r.URL.Query().Get("mode") == "best_effort" {
		get = a.Cache.GetBestEffort
	}

	snap, possiblyStale, err := get(r.Context(), eid)
	if err != nil {
		a.writeSnapshotError(w, eid, err)
		return
	}

	if possiblyStale {
		w.Header().Set("X-Possibly-Stale", "true")
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) writeSnapshotError(w http.ResponseWriter, eid string, err error) {
	switch {
	case errors.Is(err, snapshot.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event_not_found", "event "+eid+" not found")
	case errors.Is(err, snapshot.ErrUpstreamUnavailable):
		// nunca responde snapshot vazio quando o estado real é desconhecido
		a.Log.Error("ledger unavailable", zap.String("event_id", eid), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "ledger unavailable")
	default:
		a.Log.Error("snapshot build failed", zap.String("event_id", eid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// getBidHistory retorna o histórico completo e ordenado de lances para
// auditoria/exibição, sem filtro da agregação. ?artwork_id= restringe a uma obra.
func (a *API) getBidHistory(w http.ResponseWriter, r *http.Request) {
	eid := chi.URLParam(r, "eid")
	artworkID := r.URL.Query().Get("artwork_id")

	// 404 se o evento não existe, mesmo sem lances
	if _, err := a.ReadRepo.GetEventMetadata(r.Context(), eid); err != nil {
		if errors.Is(err, snapshot.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "event_not_found", "event "+eid+" not found")
			return
		}
		a.Log.Error("event metadata query failed", zap.String("event_id", eid), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "ledger unavailable")
		return
	}

	bids, err := a.ReadRepo.ListBidHistory(r.Context(), eid, artworkID)
	if err != nil {
		a.Log.Error("bid history query failed", zap.String("event_id", eid), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "ledger unavailable")
		return
	}
	if bids == nil {
		bids = []dto.BidHistoryEntry{}
	}

	writeJSON(w, http.StatusOK, dto.BidHistoryResponse{
		EventID:   eid,
		ArtworkID: artworkID,
		Bids:      bids,
	})
}
