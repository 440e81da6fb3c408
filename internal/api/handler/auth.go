package handler

import (
	"errors"
	"net/http"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/auth"

	"github.com/gin-gonic/gin"
)

var errSenhasNaoConferem = errors.New("as senhas não conferem")

// Register inicia o cadastro: valida o formulário e envia o código de
// verificação pelo canal escolhido. O código nunca aparece na resposta.
func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	pending, err := h.Auth.Register(in)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":             "código de verificação enviado",
		"verification_method": pending.VerificationMethod,
	})
}

type verifyRequest struct {
	CPF             string `json:"cpf"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Verify confirma o código e cria a conta definitiva.
func (h *Handler) Verify(c *gin.Context) {
	var in verifyRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}
	if in.Password != in.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": errSenhasNaoConferem.Error()})
		return
	}

	user, err := h.Auth.VerifyAndCreateAccount(auth.VerifyInput{
		CPF:      in.CPF,
		Code:     in.Code,
		Password: in.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// Login autentica por CPF e senha e devolve o token da sessão.
func (h *Handler) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	token, user, err := h.Auth.Login(in.CPF, in.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type resendRequest struct {
	CPF string `json:"cpf"`
}

// ResendCode gera e envia um novo código para um cadastro pendente.
func (h *Handler) ResendCode(c *gin.Context) {
	var in resendRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}

	if err := h.Auth.ResendVerificationCode(in.CPF); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "novo código de verificação enviado"})
}
