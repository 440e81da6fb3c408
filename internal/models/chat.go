package models

import "time"

// Sender identifica a origem de uma mensagem de chat.
// Tipo próprio em vez de string livre para impedir remetentes inválidos.
type Sender string

const (
	SenderUser     Sender = "user"
	SenderBot      Sender = "bot"
	SenderMediator Sender = "mediator"
	SenderSystem   Sender = "system"
)

// Valid informa se o remetente é um dos valores conhecidos.
func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderBot, SenderMediator, SenderSystem:
		return true
	}
	return false
}

// ChatMessage é uma mensagem trocada durante um atendimento.
// A sequência é append-only e pertence a uma única sessão; sobrevive ao
// encerramento apenas como transcript achatado dentro da Complaint.
type ChatMessage struct {
	ID        int       `json:"id"`
	SessionID string    `json:"session_id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
