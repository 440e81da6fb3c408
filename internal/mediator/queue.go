package mediator

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
)

// Ticket é a entrada do cidadão na fila de mediação: a posição simulada
// exibida e a estimativa de espera derivada dela.
type Ticket struct {
	SessionID     string
	Position      int
	EstimatedWait time.Duration
}

// Queue administra a fila de espera por um mediador. A fila real vive no
// Redis (compartilhada entre instâncias); a posição exibida é sorteada entre
// 1 e QueueMaxPosition, reproduzindo o comportamento observável do portal.
type Queue struct {
	storage storage.Storage
	rng     *rand.Rand
}

// NewQueue cria a fila. O gerador de números aleatórios é injetado para que
// os testes fixem a semente.
func NewQueue(s storage.Storage, rng *rand.Rand) *Queue {
	return &Queue{storage: s, rng: rng}
}

// Enter registra a sessão na fila e devolve o ticket com posição e espera
// estimada. A estimativa cresce com a posição.
func (q *Queue) Enter(sessionID string) (Ticket, error) {
	if _, err := q.storage.EnterMediatorQueue(sessionID); err != nil {
		return Ticket{}, err
	}
	position := 1 + q.rng.Intn(config.QueueMaxPosition)
	ticket := Ticket{
		SessionID:     sessionID,
		Position:      position,
		EstimatedWait: time.Duration(position) * config.QueueWaitPerSlot,
	}
	slog.Info("cidadão entrou na fila de mediação",
		"session", sessionID, "position", position)
	return ticket, nil
}

// Leave tira a sessão da fila, por conexão, timeout ou desistência.
func (q *Queue) Leave(sessionID string) {
	if err := q.storage.LeaveMediatorQueue(sessionID); err != nil {
		slog.Warn("falha ao remover sessão da fila de mediação",
			"session", sessionID, "error", err)
	}
}

// DrawConnect sorteia o desfecho da espera: true conecta ao mediador,
// false estoura o tempo e cai no ramo de contato alternativo.
func (q *Queue) DrawConnect(probability float64) bool {
	return q.rng.Float64() < probability
}
