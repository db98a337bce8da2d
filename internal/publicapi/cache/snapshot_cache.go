package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/internal/snapshot"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

// State é o estado de uma entrada do cache por evento: EMPTY → FRESH → STALE → FRESH → ...
type State int

const (
	StateEmpty State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "FRESH"
	case StateStale:
		return "STALE"
	default:
		return "EMPTY"
	}
}

// BuildFunc reconstrói o snapshot de um evento (normalmente snapshot.Builder.Build)
type BuildFunc func(ctx context.Context, eventID string) (*snapshot.PublicSnapshot, error)

// entrada por evento; mu protege estado, snapshot e sequência
type entry struct {
	mu      sync.Mutex
	state   State
	snap    *snapshot.PublicSnapshot
	lastSeq int64
}

// SnapshotCache guarda o último snapshot construído por evento.
// Invalidação é exclusivamente por mensagem do broadcaster — nunca por TTL.
// A sequência monotônica das mensagens suprime duplicatas e notificações
// fora de ordem já superadas (entrega at-least-once do canal).
type SnapshotCache struct {
	log   *zap.Logger
	build BuildFunc

	mu      sync.Mutex
	entries map[string]*entry
}

func NewSnapshotCache(log *zap.Logger, build BuildFunc) *SnapshotCache {
	return &SnapshotCache{
		log:     log,
		build:   build,
		entries: make(map[string]*entry),
	}
}

func (c *SnapshotCache) entryFor(eventID string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[eventID]
	if !ok {
		e = &entry{state: StateEmpty}
		c.entries[eventID] = e
	}
	return e
}

// OnInvalidation processa uma mensagem do canal do evento. Qualquer
// change_type invalida: a mensagem é só "algo mudou, releia", nunca carrega
// o novo estado. Sequence menor ou igual à última vista é descartada.
func (c *SnapshotCache) OnInvalidation(msg events.Invalidation) {
	e := c.entryFor(msg.EventID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if msg.Sequence <= e.lastSeq {
		c.log.Debug("invalidation superseded, ignoring",
			zap.String("event_id", msg.EventID),
			zap.Int64("sequence", msg.Sequence),
			zap.Int64("last_seq", e.lastSeq),
		)
		return
	}
	e.lastSeq = msg.Sequence
	if e.state == StateFresh {
		e.state = StateStale
	}
}

// Get é o caminho padrão, correto-primeiro: EMPTY ou STALE reconstroem antes
// de responder. Se a reconstrução de uma entrada STALE falha, o último valor
// FRESH continua sendo servido anotado como possivelmente obsoleto
// (possiblyStale=true) em vez de travar a UI.
func (c *SnapshotCache) Get(ctx context.Context, eventID string) (snap *snapshot.PublicSnapshot, possiblyStale bool, err error) {
	e := c.entryFor(eventID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateFresh {
		return e.snap, false, nil
	}

	return c.rebuildLocked(ctx, eventID, e)
}

// GetBestEffort serve imediatamente o snapshot disponível, mesmo STALE
// (anotado), e dispara a reconstrução em background. Caminho opt-in,
// não-autoritativo. Com a entrada vazia, cai no caminho padrão.
func (c *SnapshotCache) GetBestEffort(ctx context.Context, eventID string) (*snapshot.PublicSnapshot, bool, error) {
	e := c.entryFor(eventID)
	e.mu.Lock()

	if e.state == StateFresh {
		defer e.mu.Unlock()
		return e.snap, false, nil
	}

	if e.state == StateStale && e.snap != nil {
		stale := e.snap
		e.mu.Unlock()
		go func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.state == StateStale {
				_, _, _ = c.rebuildLocked(context.Background(), eventID, e)
			}
		}()
		return stale, true, nil
	}

	defer e.mu.Unlock()
	return c.rebuildLocked(ctx, eventID, e)
}

// rebuildLocked é chamada com e.mu seguro e retorna com e.mu seguro, mas
// solta o lock durante o build (três queries no ledger): segurá-lo ali
// bloquearia OnInvalidation e, como o subscriber Redis entrega em uma única
// goroutine, represaria as invalidações de todos os eventos atrás de um build
// lento. Uma invalidação que chega durante o build incrementa lastSeq;
// comparar a sequência antes/depois evita marcar FRESH um snapshot que já
// nasceu obsoleto. É isso que garante nunca servir um líder velho como atual.
func (c *SnapshotCache) rebuildLocked(ctx context.Context, eventID string, e *entry) (*snapshot.PublicSnapshot, bool, error) {
	seqAtStart := e.lastSeq

	e.mu.Unlock()
	built, err := c.build(ctx, eventID)
	e.mu.Lock()

	if err != nil {
		if e.snap != nil {
			c.log.Warn("snapshot rebuild failed, serving last known value",
				zap.String("event_id", eventID), zap.Error(err))
			return e.snap, true, nil
		}
		return nil, false, err
	}

	if e.lastSeq == seqAtStart {
		e.snap = built
		e.state = StateFresh
		return built, false, nil
	}
	// invalidado durante o build: o resultado serve pra este caller, anotado,
	// mas a entrada continua STALE. Só preenche e.snap se não havia nada; um
	// rebuild concorrente pode já ter guardado um valor mais novo.
	if e.snap == nil {
		e.snap = built
	}
	e.state = StateStale
	return built, true, nil
}

// Unsubscribe descarta a entrada do evento; não há estado terminal enquanto
// o cliente segue inscrito.
func (c *SnapshotCache) Unsubscribe(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, eventID)
}

// StateOf expõe o estado corrente de uma entrada (métricas e testes)
func (c *SnapshotCache) StateOf(eventID string) State {
	c.mu.Lock()
	e, ok := c.entries[eventID]
	c.mu.Unlock()
	if !ok {
		return StateEmpty
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
