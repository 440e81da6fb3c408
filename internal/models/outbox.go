package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SentEmail é uma entrada da caixa de saída: toda notificação renderizada é
// registrada aqui antes de qualquer tentativa de entrega SMTP.
type SentEmail struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	To             string    `gorm:"type:varchar(191);not null;index" json:"to"`
	Subject        string    `gorm:"type:text;not null" json:"subject"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	ComplaintID    string    `gorm:"type:text;index" json:"complaint_id"`
	ProtocolNumber string    `gorm:"type:varchar(32);index" json:"protocol_number"`
	SentAt         time.Time `json:"sent_at"`
}

func (e *SentEmail) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

// SurveyResponse guarda a pesquisa de satisfação pós-atendimento.
// Gravação fire-and-forget: falhas nunca bloqueiam a entrega do protocolo.
type SurveyResponse struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	ProtocolNumber string    `gorm:"type:varchar(32);index" json:"protocol_number"`
	Rating         int       `gorm:"not null" json:"rating"`
	Comment        string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *SurveyResponse) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}
