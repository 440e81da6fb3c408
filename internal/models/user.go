package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User representa um cidadão cadastrado no portal.
// CPF e e-mail são únicos; a senha é armazenada apenas como hash bcrypt.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Nome         string `gorm:"type:text;not null" json:"nome"`
	CPF          string `gorm:"type:varchar(11);uniqueIndex;not null" json:"cpf"`
	Email        string `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Telefone     string `gorm:"type:varchar(16)" json:"telefone"`
	PasswordHash string `gorm:"not null" json:"-"`

	EmailNotifications    bool `gorm:"default:true" json:"email_notifications"`
	WhatsappNotifications bool `gorm:"default:false" json:"whatsapp_notifications"`
	IsWhatsapp            bool `gorm:"default:false" json:"is_whatsapp"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate é um hook GORM que gera o UUID do usuário quando ausente.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
