// Package storagetest fornece um Storage em memória para testes.
// Implementa a interface completa sem Postgres nem Redis e permite injetar
// falhas pontuais para exercitar os caminhos de erro.
package storagetest

import (
	"sync"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"

	"github.com/google/uuid"
)

// Fake é um storage.Storage em memória, seguro para uso concorrente.
type Fake struct {
	mu sync.Mutex

	Users      map[string]*models.User
	Pendings   map[string]*models.PendingVerification // chave: CPF
	Complaints []models.Complaint
	Outbox     []models.SentEmail
	Surveys    []models.SurveyResponse
	Queue      []string
	Published  []models.ChatMessage

	resendMarks map[string]time.Time

	// Falhas injetáveis: quando não-nulas, a operação correspondente
	// devolve o erro uma única vez e depois volta ao normal.
	FailSaveComplaint error
	FailSaveEmail     error
}

// New cria o fake vazio.
func New() *Fake {
	return &Fake{
		Users:       make(map[string]*models.User),
		Pendings:    make(map[string]*models.PendingVerification),
		resendMarks: make(map[string]time.Time),
	}
}

var _ storage.Storage = (*Fake)(nil)

func (f *Fake) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	f.Users[user.ID] = &cp
	return nil
}

func (f *Fake) GetUserByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (f *Fake) GetActiveUserByCPF(cpf string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if u.CPF == cpf && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *Fake) UserExistsByCPFOrEmail(cpf, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if u.CPF == cpf || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) UpsertPendingVerification(pending *models.PendingVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pending.ID == "" {
		pending.ID = uuid.New().String()
	}
	cp := *pending
	f.Pendings[pending.CPF] = &cp
	return nil
}

func (f *Fake) GetPendingByCPF(cpf string) (*models.PendingVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Pendings[cpf]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (f *Fake) GetPendingByCPFAndCode(cpf, code string) (*models.PendingVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Pendings[cpf]; ok && p.VerificationCode == code {
		cp := *p
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (f *Fake) DeletePendingVerification(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for cpf, p := range f.Pendings {
		if p.ID == id {
			delete(f.Pendings, cpf)
			return nil
		}
	}
	return nil
}

func (f *Fake) SaveComplaint(complaint *models.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailSaveComplaint; err != nil {
		f.FailSaveComplaint = nil
		return err
	}
	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}
	if complaint.Status == "" {
		complaint.Status = models.ComplaintStatusPending
	}
	f.Complaints = append(f.Complaints, *complaint)
	return nil
}

func (f *Fake) ListComplaintsByUser(userID string) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Complaint
	for _, c := range f.Complaints {
		if c.UserID != nil && *c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *Fake) FindComplaintByProtocol(protocol string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Complaints {
		if f.Complaints[i].ProtocolNumber == protocol {
			cp := f.Complaints[i]
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *Fake) SaveSentEmail(email *models.SentEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailSaveEmail; err != nil {
		f.FailSaveEmail = nil
		return err
	}
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	f.Outbox = append(f.Outbox, *email)
	return nil
}

func (f *Fake) ListSentEmailsByProtocol(protocol string) ([]models.SentEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SentEmail
	for _, e := range f.Outbox {
		if e.ProtocolNumber == protocol {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *Fake) SaveSurveyResponse(survey *models.SurveyResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if survey.ID == "" {
		survey.ID = uuid.New().String()
	}
	f.Surveys = append(f.Surveys, *survey)
	return nil
}

func (f *Fake) EnterMediatorQueue(sessionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queue = append(f.Queue, sessionID)
	return int64(len(f.Queue)), nil
}

func (f *Fake) LeaveMediatorQueue(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.Queue[:0]
	for _, id := range f.Queue {
		if id != sessionID {
			out = append(out, id)
		}
	}
	f.Queue = out
	return nil
}

func (f *Fake) MediatorQueueDepth() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.Queue)), nil
}

func (f *Fake) AllowResend(cpf string, window time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if last, ok := f.resendMarks[cpf]; ok && time.Since(last) < window {
		return false, nil
	}
	f.resendMarks[cpf] = time.Now()
	return true, nil
}

func (f *Fake) PublishChatMessage(sessionID string, msg models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, msg)
	return nil
}
