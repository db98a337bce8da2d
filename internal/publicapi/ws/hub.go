package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

// client embrulha a conexão com um mutex de escrita: gorilla/websocket suporta
// no máximo um escritor por conexão, e tanto o fan-out do broadcast (goroutine
// do subscriber Redis) quanto a resposta de pong (goroutine de leitura da
// conexão) escrevem no mesmo conn.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) sendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.send(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas de invalidação por evento
// subs: mapeia eventID para o conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// eventID -> set of clients
	subs map[string]map[*client]struct{}

	// OnUnsubscribe avisa o dono do cache que um evento perdeu o último
	// assinante (descarte da entrada), quando configurado
	OnUnsubscribe func(eventID string)
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em eventos e responde a pings
// Cada viewer pode se inscrever em múltiplos eventIDs
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.EventID]; !ok {
				h.subs[msg.EventID] = make(map[*client]struct{})
			}
			h.subs[msg.EventID][cl] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.removeSub(msg.EventID, cl)
		case "ping":
			_ = cl.sendJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove o cliente de todas as assinaturas ao desconectar
	h.mu.Lock()
	var emptied []string
	for id, set := range h.subs {
		delete(set, cl)
		if len(set) == 0 {
			delete(h.subs, id)
			emptied = append(emptied, id)
		}
	}
	h.mu.Unlock()
	h.notifyUnsubscribed(emptied)
}

func (h *Hub) removeSub(eventID string, cl *client) {
	h.mu.Lock()
	var emptied []string
	if m, ok := h.subs[eventID]; ok {
		delete(m, cl)
		if len(m) == 0 {
			delete(h.subs, eventID)
			emptied = append(emptied, eventID)
		}
	}
	h.mu.Unlock()
	h.notifyUnsubscribed(emptied)
}

func (h *Hub) notifyUnsubscribed(eventIDs []string) {
	if h.OnUnsubscribe == nil {
		return
	}
	for _, id := range eventIDs {
		h.OnUnsubscribe(id)
	}
}

// Broadcast repassa uma mensagem de invalidação para todos os viewers inscritos
// no eventID correspondente. A mensagem é sinal de releitura; o viewer busca o
// snapshot novo pela API, nunca pelo payload.
func (h *Hub) Broadcast(msg events.Invalidation) {
	// copia o conjunto ainda sob RLock: iterar o map depois de soltar o lock
	// corre contra subscribe/disconnect concorrentes e derruba o runtime
	h.mu.RLock()
	set := h.subs[msg.EventID]
	clients := make([]*client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	b, _ := json.Marshal(msg)
	for _, c := range clients {
		_ = c.send(websocket.TextMessage, b)
	}
}

// Subscribers retorna a contagem de conexões de um evento (métricas)
func (h *Hub) Subscribers(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[eventID])
}
