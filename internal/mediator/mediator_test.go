package mediator_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScriptReply(t *testing.T) {
	script := mediator.NewScript()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "produto",
			text: "comprei um produto que veio quebrado",
			want: "Entendo. Pode me contar mais detalhes sobre o produto e o problema?",
		},
		{
			name: "defeito",
			text: "o DEFEITO apareceu na primeira semana",
			want: "Entendo. Pode me contar mais detalhes sobre o produto e o problema?",
		},
		{
			name: "loja",
			text: "a loja se recusou a trocar",
			want: "Já tentou resolver diretamente com o estabelecimento?",
		},
		{
			name: "padrão",
			text: "não sei o que fazer",
			want: "Vamos verificar as opções de solução para o seu caso. Posso te ajudar com isso.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, script.Reply(tt.text))
		})
	}
}

func TestScriptFarewellEmbedsProtocol(t *testing.T) {
	script := mediator.NewScript()
	assert.Contains(t, script.Farewell("DEN-20260831-1234"), "DEN-20260831-1234")
}

func TestQueueEnter(t *testing.T) {
	store := new(MockStorage)
	store.On("EnterMediatorQueue", "sess-1").Return(int64(1), nil).Once()

	q := mediator.NewQueue(store, rand.New(rand.NewSource(42)))
	ticket, err := q.Enter("sess-1")

	require.NoError(t, err)
	assert.GreaterOrEqual(t, ticket.Position, 1)
	assert.LessOrEqual(t, ticket.Position, config.QueueMaxPosition)
	assert.Equal(t,
		time.Duration(ticket.Position)*config.QueueWaitPerSlot,
		ticket.EstimatedWait)
	store.AssertExpectations(t)
}

func TestQueueDrawConnect_Extremes(t *testing.T) {
	store := new(MockStorage)
	q := mediator.NewQueue(store, rand.New(rand.NewSource(7)))

	for i := 0; i < 100; i++ {
		assert.True(t, q.DrawConnect(1.0))
		assert.False(t, q.DrawConnect(0.0))
	}
}

// MockStorage cobre apenas os métodos que a fila usa.
type MockStorage struct {
	mock.Mock
	storagestub
}

func (m *MockStorage) EnterMediatorQueue(sessionID string) (int64, error) {
	args := m.Called(sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) LeaveMediatorQueue(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

// storagestub preenche o restante da interface storage.Storage com
// implementações que falham se forem chamadas por engano.
type storagestub struct{}

func (storagestub) CreateUser(*models.User) error                  { panic("não esperado") }
func (storagestub) GetUserByID(string) (*models.User, error)       { panic("não esperado") }
func (storagestub) GetActiveUserByCPF(string) (*models.User, error) { panic("não esperado") }
func (storagestub) UserExistsByCPFOrEmail(string, string) (bool, error) {
	panic("não esperado")
}
func (storagestub) UpsertPendingVerification(*models.PendingVerification) error {
	panic("não esperado")
}
func (storagestub) GetPendingByCPF(string) (*models.PendingVerification, error) {
	panic("não esperado")
}
func (storagestub) GetPendingByCPFAndCode(string, string) (*models.PendingVerification, error) {
	panic("não esperado")
}
func (storagestub) DeletePendingVerification(string) error { panic("não esperado") }
func (storagestub) SaveComplaint(*models.Complaint) error  { panic("não esperado") }
func (storagestub) ListComplaintsByUser(string) ([]models.Complaint, error) {
	panic("não esperado")
}
func (storagestub) FindComplaintByProtocol(string) (*models.Complaint, error) {
	panic("não esperado")
}
func (storagestub) SaveSentEmail(*models.SentEmail) error { panic("não esperado") }
func (storagestub) ListSentEmailsByProtocol(string) ([]models.SentEmail, error) {
	panic("não esperado")
}
func (storagestub) SaveSurveyResponse(*models.SurveyResponse) error { panic("não esperado") }
func (storagestub) MediatorQueueDepth() (int64, error)              { panic("não esperado") }
func (storagestub) AllowResend(string, time.Duration) (bool, error) { panic("não esperado") }
func (storagestub) PublishChatMessage(string, models.ChatMessage) error {
	panic("não esperado")
}
