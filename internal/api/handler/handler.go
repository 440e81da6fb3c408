// Package handler expõe a superfície HTTP do portal: autenticação,
// denúncias, análise, pesquisa de satisfação e a conexão WebSocket do
// atendimento.
package handler

import (
	"errors"
	"net/http"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/auth"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/chathub"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/complaint"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler agrega os serviços usados pelos endpoints.
type Handler struct {
	Auth       *auth.Service
	Complaints *complaint.Service
	Classifier analysis.Classifier
	Hub        *chathub.Hub
	Storage    storage.Storage
}

// NewHandler monta o handler.
func NewHandler(a *auth.Service, c *complaint.Service, cl analysis.Classifier, hub *chathub.Hub, st storage.Storage) *Handler {
	return &Handler{Auth: a, Complaints: c, Classifier: cl, Hub: hub, Storage: st}
}

// fail devolve o erro no status HTTP correspondente à sua categoria:
// validação 400, credenciais 401, conflito 409, ausência 404, limite de
// frequência 429 e falha de downstream 502.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, complaint.ErrRelatoVazio),
		errors.Is(err, auth.ErrNomeObrigatorio),
		errors.Is(err, auth.ErrCPFInvalido),
		errors.Is(err, auth.ErrEmailInvalido),
		errors.Is(err, auth.ErrSenhaCurta),
		errors.Is(err, intake.ErrNotaInvalida):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrCredenciais),
		errors.Is(err, auth.ErrCodigoInvalido),
		errors.Is(err, auth.ErrCodigoExpirado):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrJaCadastrado):
		return http.StatusConflict
	case errors.Is(err, auth.ErrCadastroNaoIniciado),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrReenvioAguarde):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
