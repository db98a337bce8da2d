package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/internal/shared/config"
	"github.com/radieske/live-auction-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

// gateway fino na frente do public-api: expõe o prefixo /live/* que os apps
// de display e broadcast consomem, com CORS liberado pra leitura pública
func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	publicURL := os.Getenv("PUBLIC_API_URL")
	if publicURL == "" {
		publicURL = "http://localhost:8080"
	}
	public := rp(publicURL)

	mux := http.NewServeMux()

	// ex.: /live/v1/events/AB1234/snapshot -> public-api
	mux.Handle("/live/", http.StripPrefix("/live", withCORS(public)))

	// WS de invalidação passa direto
	mux.Handle("/ws", public)

	addr := ":" + cfg.HTTPPort
	log.Info("edge gateway listening",
		zap.String("addr", addr),
		zap.String("public_api", publicURL),
	)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
