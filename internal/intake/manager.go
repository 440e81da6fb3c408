package intake

import (
	"math/rand"
	"sync"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/metrics"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/google/uuid"
)

// Manager administra as sessões de atendimento abertas. Cada sessão recebe
// seu próprio gerador de números aleatórios, derivado da fonte do manager,
// para que nenhum rand seja compartilhado entre goroutines.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
	seeds    *rand.Rand
}

// NewManager cria o manager com a fonte de sementes padrão.
func NewManager(deps Deps) *Manager {
	return NewManagerWithSeed(deps, time.Now().UnixNano())
}

// NewManagerWithSeed fixa a semente das sessões; usado nos testes.
func NewManagerWithSeed(deps Deps, seed int64) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		seeds:    rand.New(rand.NewSource(seed)),
	}
}

// Open abre uma nova sessão de atendimento. user nil é atendimento anônimo.
func (m *Manager) Open(user *models.User, sink Sink) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	rng := rand.New(rand.NewSource(m.seeds.Int63()))
	sess := NewSession(id, user, sink, m.deps, rng)
	sess.onClose = m.remove
	sess.touch()

	m.sessions[id] = sess
	metrics.ActiveSessions.Inc()
	return sess
}

// Get localiza uma sessão aberta.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Len devolve o número de sessões abertas.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll encerra todas as sessões; usado no desligamento do servidor.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
}

// remove tira a sessão do mapa quando ela encerra.
func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}
