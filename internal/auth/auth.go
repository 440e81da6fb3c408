// Package auth implementa o cadastro em duas etapas (código de verificação)
// e o login por CPF e senha com emissão de JWT.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Erros de negócio do fluxo de autenticação. A camada HTTP decide o status
// de cada um; as mensagens já vêm prontas para exibição ao cidadão.
var (
	ErrNomeObrigatorio     = errors.New("nome é obrigatório")
	ErrCPFInvalido         = errors.New("CPF inválido")
	ErrEmailInvalido       = errors.New("e-mail inválido")
	ErrJaCadastrado        = errors.New("já existe uma conta com este CPF ou e-mail")
	ErrCodigoInvalido      = errors.New("código de verificação inválido")
	ErrCodigoExpirado      = errors.New("código de verificação expirado, solicite um novo")
	ErrSenhaCurta          = errors.New("a senha deve ter pelo menos 6 caracteres")
	ErrCredenciais         = errors.New("CPF ou senha incorretos")
	ErrReenvioAguarde      = errors.New("aguarde um minuto antes de pedir um novo código")
	ErrCadastroNaoIniciado = errors.New("nenhum cadastro pendente para este CPF")
)

// CodeSender entrega o código de verificação pelo canal escolhido no cadastro.
type CodeSender interface {
	SendCode(pending *models.PendingVerification) error
}

// Service concentra as regras de cadastro, verificação e login.
type Service struct {
	storage storage.Storage
	sender  CodeSender
	secret  []byte

	// now é injetável para os testes controlarem expiração de código.
	now func() time.Time
}

// NewService monta o serviço. sender pode ser nil em ambientes de teste;
// nesse caso o código fica apenas registrado no banco de pendências.
func NewService(st storage.Storage, sender CodeSender, jwtSecret string) *Service {
	return &Service{
		storage: st,
		sender:  sender,
		secret:  []byte(jwtSecret),
		now:     time.Now,
	}
}

// RegisterInput são os dados do formulário de cadastro.
type RegisterInput struct {
	Nome                  string `json:"nome"`
	CPF                   string `json:"cpf"`
	Email                 string `json:"email"`
	Telefone              string `json:"telefone"`
	VerificationMethod    string `json:"verification_method"`
	EmailNotifications    bool   `json:"email_notifications"`
	WhatsappNotifications bool   `json:"whatsapp_notifications"`
	IsWhatsapp            bool   `json:"is_whatsapp"`
}

// Register valida o formulário, gera um código de 6 dígitos e grava o
// cadastro pendente. Um novo Register para o mesmo CPF substitui o pendente
// anterior. A conta só passa a existir após VerifyAndCreateAccount.
func (s *Service) Register(in RegisterInput) (*models.PendingVerification, error) {
	if strings.TrimSpace(in.Nome) == "" {
		return nil, ErrNomeObrigatorio
	}
	cpf := validation.NormalizeDigits(in.CPF)
	if !validation.ValidateCPF(cpf) {
		return nil, ErrCPFInvalido
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.ValidateEmail(email) {
		return nil, ErrEmailInvalido
	}

	exists, err := s.storage.UserExistsByCPFOrEmail(cpf, email)
	if err != nil {
		return nil, fmt.Errorf("consultar cadastro existente: %w", err)
	}
	if exists {
		return nil, ErrJaCadastrado
	}

	method := in.VerificationMethod
	if method != models.VerificationMethodWhatsapp {
		method = models.VerificationMethodEmail
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("gerar código de verificação: %w", err)
	}

	now := s.now()
	pending := &models.PendingVerification{
		Nome:                  strings.TrimSpace(in.Nome),
		CPF:                   cpf,
		Email:                 email,
		Telefone:              validation.NormalizeDigits(in.Telefone),
		EmailNotifications:    in.EmailNotifications,
		WhatsappNotifications: in.WhatsappNotifications,
		IsWhatsapp:            in.IsWhatsapp,
		VerificationCode:      code,
		VerificationMethod:    method,
		CreatedAt:             now,
		ExpiresAt:             now.Add(config.VerificationTTL),
	}
	if err := s.storage.UpsertPendingVerification(pending); err != nil {
		return nil, fmt.Errorf("gravar cadastro pendente: %w", err)
	}

	s.dispatchCode(pending)
	return pending, nil
}

// VerifyInput confirma o código recebido e define a senha da conta.
type VerifyInput struct {
	CPF      string `json:"cpf"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// VerifyAndCreateAccount confere o código pendente e, estando válido,
// materializa o usuário definitivo com a senha em hash bcrypt.
// Um código expirado é removido na hora para forçar novo cadastro/reenvio.
func (s *Service) VerifyAndCreateAccount(in VerifyInput) (*models.User, error) {
	cpf := validation.NormalizeDigits(in.CPF)
	code := validation.NormalizeDigits(in.Code)
	if len(code) != 6 {
		return nil, ErrCodigoInvalido
	}
	if len(in.Password) < 6 {
		return nil, ErrSenhaCurta
	}

	pending, err := s.storage.GetPendingByCPFAndCode(cpf, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCodigoInvalido
	}
	if err != nil {
		return nil, fmt.Errorf("consultar cadastro pendente: %w", err)
	}
	if pending.Expired(s.now()) {
		if err := s.storage.DeletePendingVerification(pending.ID); err != nil {
			slog.Warn("falha ao descartar pendência expirada", "cpf", cpf, "error", err)
		}
		return nil, ErrCodigoExpirado
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("gerar hash da senha: %w", err)
	}

	user := &models.User{
		Nome:                  pending.Nome,
		CPF:                   pending.CPF,
		Email:                 pending.Email,
		Telefone:              pending.Telefone,
		PasswordHash:          string(hash),
		EmailNotifications:    pending.EmailNotifications,
		WhatsappNotifications: pending.WhatsappNotifications,
		IsWhatsapp:            pending.IsWhatsapp,
		IsActive:              true,
	}
	if err := s.storage.CreateUser(user); err != nil {
		return nil, fmt.Errorf("criar usuário: %w", err)
	}
	if err := s.storage.DeletePendingVerification(pending.ID); err != nil {
		slog.Warn("falha ao consumir pendência de verificação", "cpf", cpf, "error", err)
	}

	slog.Info("conta criada", "user_id", user.ID)
	return user, nil
}

// Login autentica por CPF e senha e devolve um JWT de 72 horas.
// Credenciais erradas e CPF inexistente produzem o mesmo erro genérico.
func (s *Service) Login(cpfRaw, password string) (string, *models.User, error) {
	cpf := validation.NormalizeDigits(cpfRaw)
	user, err := s.storage.GetActiveUserByCPF(cpf)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrCredenciais
	}
	if err != nil {
		return "", nil, fmt.Errorf("consultar usuário: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrCredenciais
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ResendVerificationCode gera um novo código para um cadastro pendente,
// respeitando a janela mínima entre reenvios.
func (s *Service) ResendVerificationCode(cpfRaw string) error {
	cpf := validation.NormalizeDigits(cpfRaw)
	pending, err := s.storage.GetPendingByCPF(cpf)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrCadastroNaoIniciado
	}
	if err != nil {
		return fmt.Errorf("consultar cadastro pendente: %w", err)
	}

	ok, err := s.storage.AllowResend(cpf, config.ResendCodeWindow)
	if err != nil {
		return fmt.Errorf("verificar janela de reenvio: %w", err)
	}
	if !ok {
		return ErrReenvioAguarde
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("gerar código de verificação: %w", err)
	}
	pending.VerificationCode = code
	pending.ExpiresAt = s.now().Add(config.VerificationTTL)
	if err := s.storage.UpsertPendingVerification(pending); err != nil {
		return fmt.Errorf("atualizar cadastro pendente: %w", err)
	}

	s.dispatchCode(pending)
	return nil
}

func (s *Service) dispatchCode(pending *models.PendingVerification) {
	if s.sender == nil {
		return
	}
	// Falha de entrega não derruba o cadastro: o cidadão pode pedir reenvio.
	if err := s.sender.SendCode(pending); err != nil {
		slog.Error("falha ao enviar código de verificação",
			"method", pending.VerificationMethod, "error", err)
	}
}

// Claims do token do portal.
type Claims struct {
	UserID string `json:"user_id"`
	CPF    string `json:"cpf"`
	jwt.RegisteredClaims
}

// GenerateToken emite um JWT HS256 válido por 72 horas.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		CPF:    user.CPF,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "alo-consumidor",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(72 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("assinar token: %w", err)
	}
	return signed, nil
}

// ParseToken valida a assinatura e a expiração e devolve as claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("token inválido")
	}
	return claims, nil
}

// generateCode sorteia um código numérico de 6 dígitos com crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
