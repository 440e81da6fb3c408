package auth

import (
	"testing"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpfValido = "11144477735"

type capturingSender struct {
	sent []*models.PendingVerification
}

func (c *capturingSender) SendCode(p *models.PendingVerification) error {
	c.sent = append(c.sent, p)
	return nil
}

func newTestService(t *testing.T) (*Service, *storagetest.Fake, *capturingSender) {
	t.Helper()
	fake := storagetest.New()
	sender := &capturingSender{}
	svc := NewService(fake, sender, "segredo-de-teste")
	return svc, fake, sender
}

func registroValido() RegisterInput {
	return RegisterInput{
		Nome:               "Maria da Silva",
		CPF:                "111.444.777-35",
		Email:              "maria@example.com",
		Telefone:           "(61) 99999-0000",
		VerificationMethod: models.VerificationMethodEmail,
		EmailNotifications: true,
	}
}

func TestRegisterGeraCodigoDeSeisDigitos(t *testing.T) {
	svc, fake, sender := newTestService(t)

	pending, err := svc.Register(registroValido())
	require.NoError(t, err)

	assert.Len(t, pending.VerificationCode, 6)
	assert.Equal(t, cpfValido, pending.CPF, "CPF deve ser normalizado para dígitos")
	assert.Equal(t, "61999990000", pending.Telefone)
	assert.NotNil(t, fake.Pendings[cpfValido])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, pending.VerificationCode, sender.sent[0].VerificationCode)
}

func TestRegisterRejeitaDadosInvalidos(t *testing.T) {
	svc, _, _ := newTestService(t)

	casos := []struct {
		nome    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{"nome vazio", func(in *RegisterInput) { in.Nome = "  " }, ErrNomeObrigatorio},
		{"cpf inválido", func(in *RegisterInput) { in.CPF = "11144477734" }, ErrCPFInvalido},
		{"cpf repetido", func(in *RegisterInput) { in.CPF = "11111111111" }, ErrCPFInvalido},
		{"email sem arroba", func(in *RegisterInput) { in.Email = "maria.example.com" }, ErrEmailInvalido},
	}
	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			in := registroValido()
			tc.mutate(&in)
			_, err := svc.Register(in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegisterRejeitaCPFOuEmailJaCadastrado(t *testing.T) {
	svc, fake, _ := newTestService(t)
	require.NoError(t, fake.CreateUser(&models.User{
		Nome: "Outro", CPF: cpfValido, Email: "outro@example.com",
		PasswordHash: "x", IsActive: true,
	}))

	_, err := svc.Register(registroValido())
	assert.ErrorIs(t, err, ErrJaCadastrado)
}

func TestVerifyCriaContaComHashBcrypt(t *testing.T) {
	svc, fake, _ := newTestService(t)
	pending, err := svc.Register(registroValido())
	require.NoError(t, err)

	user, err := svc.VerifyAndCreateAccount(VerifyInput{
		CPF:      cpfValido,
		Code:     pending.VerificationCode,
		Password: "senha-forte",
	})
	require.NoError(t, err)

	assert.Equal(t, cpfValido, user.CPF)
	assert.NotEqual(t, "senha-forte", user.PasswordHash, "senha nunca fica em claro")
	assert.True(t, user.IsActive)
	assert.Nil(t, fake.Pendings[cpfValido], "pendência deve ser consumida")

	// Depois da verificação o login funciona com a senha escolhida.
	token, logged, err := svc.Login("111.444.777-35", "senha-forte")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)
}

func TestVerifyRejeitaCodigoErrado(t *testing.T) {
	svc, _, _ := newTestService(t)
	pending, err := svc.Register(registroValido())
	require.NoError(t, err)

	errado := "000000"
	if pending.VerificationCode == errado {
		errado = "999999"
	}
	_, err = svc.VerifyAndCreateAccount(VerifyInput{CPF: cpfValido, Code: errado, Password: "senha-forte"})
	assert.ErrorIs(t, err, ErrCodigoInvalido)
}

func TestVerifyRejeitaSenhaCurta(t *testing.T) {
	svc, _, _ := newTestService(t)
	pending, err := svc.Register(registroValido())
	require.NoError(t, err)

	_, err = svc.VerifyAndCreateAccount(VerifyInput{CPF: cpfValido, Code: pending.VerificationCode, Password: "12345"})
	assert.ErrorIs(t, err, ErrSenhaCurta)
}

func TestVerifyDescartaCodigoExpirado(t *testing.T) {
	svc, fake, _ := newTestService(t)
	pending, err := svc.Register(registroValido())
	require.NoError(t, err)

	// Avança o relógio além da validade do código.
	svc.now = func() time.Time { return time.Now().Add(config.VerificationTTL + time.Minute) }

	_, err = svc.VerifyAndCreateAccount(VerifyInput{CPF: cpfValido, Code: pending.VerificationCode, Password: "senha-forte"})
	assert.ErrorIs(t, err, ErrCodigoExpirado)
	assert.Nil(t, fake.Pendings[cpfValido], "pendência expirada é removida")
}

func TestLoginErroGenericoParaCPFOuSenhaErrados(t *testing.T) {
	svc, _, _ := newTestService(t)
	pending, err := svc.Register(registroValido())
	require.NoError(t, err)
	_, err = svc.VerifyAndCreateAccount(VerifyInput{CPF: cpfValido, Code: pending.VerificationCode, Password: "senha-forte"})
	require.NoError(t, err)

	_, _, err = svc.Login(cpfValido, "senha-errada")
	assert.ErrorIs(t, err, ErrCredenciais)

	_, _, err = svc.Login("52998224725", "senha-forte")
	assert.ErrorIs(t, err, ErrCredenciais, "CPF inexistente devolve o mesmo erro")
}

func TestResendTrocaCodigoERespeitaJanela(t *testing.T) {
	svc, fake, sender := newTestService(t)
	pending, err := svc.Register(registroValido())
	require.NoError(t, err)
	primeiro := pending.VerificationCode

	// O primeiro reenvio abre a janela; o Register em si não conta.
	require.NoError(t, svc.ResendVerificationCode(cpfValido))
	assert.Len(t, sender.sent, 2)
	novo := fake.Pendings[cpfValido].VerificationCode
	assert.Len(t, novo, 6)
	_ = primeiro // códigos podem colidir, então não comparamos valores

	err = svc.ResendVerificationCode(cpfValido)
	assert.ErrorIs(t, err, ErrReenvioAguarde, "segundo reenvio dentro da janela é bloqueado")
}

func TestResendSemCadastroPendente(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.ResendVerificationCode(cpfValido)
	assert.ErrorIs(t, err, ErrCadastroNaoIniciado)
}

func TestTokenGeradoEValidado(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := &models.User{ID: "abc-123", CPF: cpfValido}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", claims.UserID)
	assert.Equal(t, cpfValido, claims.CPF)
	assert.Equal(t, "alo-consumidor", claims.Issuer)

	outro := NewService(storagetest.New(), nil, "outro-segredo")
	_, err = outro.ParseToken(token)
	assert.Error(t, err, "assinatura com segredo diferente é rejeitada")
}
