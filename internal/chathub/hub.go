package chathub

import (
	"sync"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
)

// Hub registra as conexões ativas, uma por sessão de atendimento, mais os
// observadores da equipe de mediação que acompanham sessões alheias.
type Hub struct {
	mu        sync.Mutex
	clients   map[string]Client
	observers map[string][]Client

	// Sessions é o manager das sessões de atendimento desta instância.
	Sessions *intake.Manager
}

// NewHub cria o hub.
func NewHub(sessions *intake.Manager) *Hub {
	return &Hub{
		clients:   make(map[string]Client),
		observers: make(map[string][]Client),
		Sessions:  sessions,
	}
}

// Register associa a conexão à sua sessão. Uma conexão anterior da mesma
// sessão é derrubada: vale sempre a mais recente.
func (h *Hub) Register(c Client) {
	h.mu.Lock()
	old := h.clients[c.SessionID()]
	h.clients[c.SessionID()] = c
	h.mu.Unlock()

	if old != nil && old != c {
		old.Close()
	}
}

// Unregister remove a conexão, se ainda for a corrente da sessão.
func (h *Hub) Unregister(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.SessionID()] == c {
		delete(h.clients, c.SessionID())
	}
}

// Observe acrescenta um observador da sessão dada (painel da equipe).
func (h *Hub) Observe(sessionID string, c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[sessionID] = append(h.observers[sessionID], c)
}

// Client devolve a conexão corrente da sessão.
func (h *Hub) Client(sessionID string) (Client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[sessionID]
	return c, ok
}

// Len devolve o número de conexões registradas.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown derruba todas as conexões e encerra as sessões abertas.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	open := make([]Client, 0, len(h.clients))
	for _, c := range h.clients {
		open = append(open, c)
	}
	h.clients = make(map[string]Client)
	h.observers = make(map[string][]Client)
	h.mu.Unlock()

	for _, c := range open {
		c.Close()
	}
	h.Sessions.CloseAll()
}

// deliverToObservers repassa um quadro aos observadores da sessão.
func (h *Hub) deliverToObservers(sessionID string, out intake.Outbound) {
	h.mu.Lock()
	watchers := append([]Client(nil), h.observers[sessionID]...)
	h.mu.Unlock()

	for _, w := range watchers {
		w.Deliver(out)
	}
}
