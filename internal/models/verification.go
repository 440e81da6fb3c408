package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Métodos de envio do código de verificação.
const (
	VerificationMethodEmail    = "email"
	VerificationMethodWhatsapp = "whatsapp"
)

// PendingVerification guarda um cadastro em andamento: os dados do usuário
// ainda não confirmados mais o código de 6 dígitos enviado ao canal escolhido.
// Existe no máximo um registro por CPF; um reenvio troca o código e empurra
// ExpiresAt para frente. O registro é consumido na verificação bem-sucedida
// ou removido quando a expiração é detectada.
type PendingVerification struct {
	ID string `gorm:"primaryKey" json:"id"`

	// Dados do rascunho do usuário (materializados em User após a verificação).
	Nome                  string `gorm:"type:text;not null"`
	CPF                   string `gorm:"type:varchar(11);uniqueIndex;not null"`
	Email                 string `gorm:"type:varchar(191);not null"`
	Telefone              string `gorm:"type:varchar(16)"`
	EmailNotifications    bool   `gorm:"default:true"`
	WhatsappNotifications bool   `gorm:"default:false"`
	IsWhatsapp            bool   `gorm:"default:false"`

	VerificationCode   string    `gorm:"type:varchar(6);not null"`
	VerificationMethod string    `gorm:"type:varchar(16);not null"`
	CreatedAt          time.Time
	ExpiresAt          time.Time
}

func (p *PendingVerification) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// Expired informa se o código já passou da validade no instante dado.
func (p *PendingVerification) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
