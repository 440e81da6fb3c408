package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status possíveis de uma denúncia.
const (
	ComplaintStatusPending  = "pending"
	ComplaintStatusResolved = "resolved"
	ComplaintStatusClosed   = "closed"
)

// Complaint é o registro definitivo de uma denúncia finalizada.
// Criada uma única vez no encerramento do atendimento e imutável depois
// disso: não há operações de atualização ou remoção.
type Complaint struct {
	ID             string `gorm:"primaryKey" json:"id"`
	ProtocolNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"protocol_number"`

	Description string         `gorm:"type:text;not null" json:"description"`
	Photos      pq.StringArray `gorm:"type:text[]" json:"photos"`
	Videos      pq.StringArray `gorm:"type:text[]" json:"videos"`
	Location    string         `gorm:"type:text" json:"location,omitempty"`

	// Resultado da análise, embutido na denúncia (não persistido à parte).
	Category           string `gorm:"type:varchar(64)" json:"category,omitempty"`
	CDCArticle         string `gorm:"type:text" json:"cdc_article,omitempty"`
	MediationGuidance  string `gorm:"type:text" json:"mediation_guidance,omitempty"`
	ExecutiveSummary   string `gorm:"type:text" json:"executive_summary,omitempty"`
	NextStepSuggestion string `gorm:"type:text" json:"next_step_suggestion,omitempty"`
	RiskLevel          string `gorm:"type:varchar(16)" json:"risk_level,omitempty"`

	// Transcript é a conversa com o mediador achatada em texto.
	// Vazio quando o cidadão se declarou satisfeito sem chat.
	Transcript string `gorm:"type:text" json:"transcript,omitempty"`

	Status    string    `gorm:"type:varchar(16);default:pending" json:"status"`
	UserID    *string   `gorm:"type:text;index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ComplaintStatusPending
	}
	return
}
