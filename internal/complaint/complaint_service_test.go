package complaint

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedService(fake *storagetest.Fake) *Service {
	now := func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return NewServiceWith(fake, now, rand.New(rand.NewSource(42)))
}

func TestNewProtocolFormato(t *testing.T) {
	svc := fixedService(storagetest.New())

	proto := svc.NewProtocol()
	assert.Regexp(t, regexp.MustCompile(`^DEN-20260315-\d{4}$`), proto)
}

func TestRegisterGravaDenunciaComAnalise(t *testing.T) {
	fake := storagetest.New()
	svc := fixedService(fake)

	result := analysis.Result{
		Category:   "Cobrança Indevida",
		CDCArticle: "Art. 42 do CDC",
		RiskLevel:  analysis.RiskMedium,
	}
	c, err := svc.Register(CreateInput{
		Description: "  Fui cobrado duas vezes na fatura.  ",
		Photos:      []string{"fatura.jpg"},
		Location:    "Taguatinga",
		UserID:      "user-1",
	}, result)
	require.NoError(t, err)

	assert.Equal(t, "Fui cobrado duas vezes na fatura.", c.Description)
	assert.Equal(t, "Cobrança Indevida", c.Category)
	assert.Equal(t, "Art. 42 do CDC", c.CDCArticle)
	require.NotNil(t, c.UserID)
	assert.Equal(t, "user-1", *c.UserID)
	require.Len(t, fake.Complaints, 1)
	assert.Equal(t, c.ProtocolNumber, fake.Complaints[0].ProtocolNumber)
}

func TestRegisterRejeitaRelatoVazio(t *testing.T) {
	svc := fixedService(storagetest.New())

	_, err := svc.Register(CreateInput{Description: "   "}, analysis.Result{})
	assert.ErrorIs(t, err, ErrRelatoVazio)
}

func TestRegisterSemUsuarioFicaAnonima(t *testing.T) {
	fake := storagetest.New()
	svc := fixedService(fake)

	c, err := svc.Register(CreateInput{Description: "Produto veio quebrado"}, analysis.Result{})
	require.NoError(t, err)
	assert.Nil(t, c.UserID)
}

func TestFindByProtocol(t *testing.T) {
	fake := storagetest.New()
	svc := fixedService(fake)

	c, err := svc.Register(CreateInput{Description: "Atendimento ruim na loja"}, analysis.Result{})
	require.NoError(t, err)

	found, err := svc.FindByProtocol(c.ProtocolNumber)
	require.NoError(t, err)
	assert.Equal(t, c.Description, found.Description)

	_, err = svc.FindByProtocol("DEN-19990101-0000")
	assert.Error(t, err)
}

func TestListByUser(t *testing.T) {
	fake := storagetest.New()
	svc := fixedService(fake)

	_, err := svc.Register(CreateInput{Description: "a", UserID: "u1"}, analysis.Result{})
	require.NoError(t, err)
	_, err = svc.Register(CreateInput{Description: "b", UserID: "u2"}, analysis.Result{})
	require.NoError(t, err)
	_, err = svc.Register(CreateInput{Description: "c", UserID: "u1"}, analysis.Result{})
	require.NoError(t, err)

	list, err := svc.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
