// Package storage concentra o acesso a dados: PostgreSQL (via GORM) para os
// registros duráveis e Redis para fila de mediação, rate limit e pub/sub.
// Os serviços dependem apenas da interface Storage, o que permite substituir
// tudo por um fake em memória nos testes.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound é retornado quando o registro pedido não existe.
var ErrNotFound = errors.New("registro não encontrado")

type Storage interface {
	// Usuários
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetActiveUserByCPF(cpf string) (*models.User, error)
	UserExistsByCPFOrEmail(cpf, email string) (bool, error)

	// Verificações pendentes
	UpsertPendingVerification(pending *models.PendingVerification) error
	GetPendingByCPF(cpf string) (*models.PendingVerification, error)
	GetPendingByCPFAndCode(cpf, code string) (*models.PendingVerification, error)
	DeletePendingVerification(id string) error

	// Denúncias (append-only)
	SaveComplaint(complaint *models.Complaint) error
	ListComplaintsByUser(userID string) ([]models.Complaint, error)
	FindComplaintByProtocol(protocol string) (*models.Complaint, error)

	// Caixa de saída e pesquisa de satisfação
	SaveSentEmail(email *models.SentEmail) error
	ListSentEmailsByProtocol(protocol string) ([]models.SentEmail, error)
	SaveSurveyResponse(survey *models.SurveyResponse) error

	// Redis
	EnterMediatorQueue(sessionID string) (int64, error)
	LeaveMediatorQueue(sessionID string) error
	MediatorQueueDepth() (int64, error)
	AllowResend(cpf string, window time.Duration) (bool, error)
	PublishChatMessage(sessionID string, msg models.ChatMessage) error
}

// Service implementa Storage sobre GORM + Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService é o construtor do Storage de produção.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Usuários ---

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetActiveUserByCPF(cpf string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("cpf = ? AND is_active = ?", cpf, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UserExistsByCPFOrEmail(cpf, email string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).
		Where("cpf = ? OR email = ?", cpf, email).
		Count(&count).Error
	return count > 0, err
}

// --- Verificações pendentes ---

// UpsertPendingVerification substitui qualquer verificação anterior do mesmo
// CPF: existe no máximo um cadastro em andamento por pessoa.
func (s *Service) UpsertPendingVerification(pending *models.PendingVerification) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cpf = ?", pending.CPF).
			Delete(&models.PendingVerification{}).Error; err != nil {
			return err
		}
		return tx.Create(pending).Error
	})
}

func (s *Service) GetPendingByCPF(cpf string) (*models.PendingVerification, error) {
	var pending models.PendingVerification
	err := s.DB.Where("cpf = ?", cpf).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (s *Service) GetPendingByCPFAndCode(cpf, code string) (*models.PendingVerification, error) {
	var pending models.PendingVerification
	err := s.DB.Where("cpf = ? AND verification_code = ?", cpf, code).
		First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (s *Service) DeletePendingVerification(id string) error {
	return s.DB.Where("id = ?", id).Delete(&models.PendingVerification{}).Error
}

// --- Denúncias ---

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	if err := s.DB.Create(complaint).Error; err != nil {
		slog.Error("falha ao gravar denúncia",
			"protocol", complaint.ProtocolNumber, "error", err)
		return err
	}
	return nil
}

func (s *Service) ListComplaintsByUser(userID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&complaints).Error
	return complaints, err
}

func (s *Service) FindComplaintByProtocol(protocol string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Where("protocol_number = ?", protocol).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// --- Caixa de saída e pesquisa ---

func (s *Service) SaveSentEmail(email *models.SentEmail) error {
	return s.DB.Create(email).Error
}

func (s *Service) ListSentEmailsByProtocol(protocol string) ([]models.SentEmail, error) {
	var emails []models.SentEmail
	err := s.DB.Where("protocol_number = ?", protocol).
		Order("sent_at asc").
		Find(&emails).Error
	return emails, err
}

func (s *Service) SaveSurveyResponse(survey *models.SurveyResponse) error {
	return s.DB.Create(survey).Error
}
