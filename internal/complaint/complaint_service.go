// Package complaint cuida do registro e da consulta de denúncias, incluindo
// a geração do número de protocolo entregue ao cidadão.
package complaint

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
)

// ErrRelatoVazio é devolvido quando a denúncia chega sem descrição.
var ErrRelatoVazio = errors.New("descreva o problema antes de registrar a denúncia")

// Service concentra a lógica de negócio das denúncias.
type Service struct {
	Storage storage.Storage

	now func() time.Time

	// rng alimenta o sufixo do protocolo; o mutex o protege porque o
	// serviço é compartilhado entre sessões de atendimento.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewService cria o serviço de denúncias. O rng alimenta apenas o sufixo do
// protocolo; os testes injetam uma fonte com semente fixa via NewServiceWith.
func NewService(s storage.Storage) *Service {
	return NewServiceWith(s, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewServiceWith permite controlar relógio e aleatoriedade nos testes.
func NewServiceWith(s storage.Storage, now func() time.Time, rng *rand.Rand) *Service {
	return &Service{Storage: s, now: now, rng: rng}
}

// CreateInput são os dados do formulário de denúncia.
type CreateInput struct {
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	Videos      []string `json:"videos"`
	Location    string   `json:"location"`
	Transcript  string   `json:"transcript"`
	UserID      string   `json:"-"`

	// Protocol permite reaproveitar um protocolo já emitido (nova tentativa
	// de finalização). Vazio gera um número novo.
	Protocol string `json:"-"`
}

// Register grava a denúncia com a análise embutida e devolve o registro
// salvo, incluindo o número de protocolo.
func (s *Service) Register(in CreateInput, result analysis.Result) (*models.Complaint, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrRelatoVazio
	}

	protocol := in.Protocol
	if protocol == "" {
		protocol = s.NewProtocol()
	}

	c := &models.Complaint{
		ProtocolNumber:     protocol,
		Description:        strings.TrimSpace(in.Description),
		Photos:             in.Photos,
		Videos:             in.Videos,
		Location:           strings.TrimSpace(in.Location),
		Transcript:         in.Transcript,
		Category:           result.Category,
		CDCArticle:         result.CDCArticle,
		MediationGuidance:  result.MediationGuidance,
		ExecutiveSummary:   result.ExecutiveSummary,
		NextStepSuggestion: result.NextStepSuggestion,
		RiskLevel:          result.RiskLevel,
		Status:             models.ComplaintStatusPending,
	}
	if in.UserID != "" {
		c.UserID = &in.UserID
	}

	if err := s.Storage.SaveComplaint(c); err != nil {
		return nil, fmt.Errorf("gravar denúncia: %w", err)
	}
	return c, nil
}

// ListByUser devolve as denúncias registradas pelo usuário.
func (s *Service) ListByUser(userID string) ([]models.Complaint, error) {
	return s.Storage.ListComplaintsByUser(userID)
}

// FindByProtocol localiza uma denúncia pelo número de protocolo.
func (s *Service) FindByProtocol(protocol string) (*models.Complaint, error) {
	return s.Storage.FindComplaintByProtocol(protocol)
}

// NewProtocol gera um número no formato DEN-YYYYMMDD-#### com a data do dia
// e um sufixo aleatório de quatro dígitos.
func (s *Service) NewProtocol() string {
	s.mu.Lock()
	suffix := s.rng.Intn(10000)
	s.mu.Unlock()
	return fmt.Sprintf("%s-%s-%04d",
		config.ProtocolPrefix,
		s.now().Format("20060102"),
		suffix)
}
