package handler

import (
	"net/http"
	"strings"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/complaint"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/metrics"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateComplaint registra uma denúncia direto pela API, sem passar pelo
// fluxo de atendimento. A análise roda na hora e vai embutida no registro.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var in complaint.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}
	in.UserID = c.GetString("user_id")

	result := h.Classifier.Classify(in.Description)
	saved, err := h.Complaints.Register(in, result)
	if err != nil {
		fail(c, err)
		return
	}
	metrics.ComplaintsRegistered.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"id":              saved.ID,
		"protocol_number": saved.ProtocolNumber,
	})
}

// ListComplaints devolve as denúncias do cidadão autenticado.
func (h *Handler) ListComplaints(c *gin.Context) {
	userID := c.GetString("user_id")
	list, err := h.Complaints.ListByUser(userID)
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []models.Complaint{}
	}
	c.JSON(http.StatusOK, list)
}

// GetComplaintByProtocol localiza uma denúncia pelo protocolo.
func (h *Handler) GetComplaintByProtocol(c *gin.Context) {
	protocol := c.Param("protocol")
	found, err := h.Complaints.FindByProtocol(protocol)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

type analyzeRequest struct {
	Description string `json:"description"`
}

// AnalyzeComplaint roda o classificador sobre uma descrição avulsa.
func (h *Handler) AnalyzeComplaint(c *gin.Context) {
	var in analyzeRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}
	if strings.TrimSpace(in.Description) == "" {
		fail(c, complaint.ErrRelatoVazio)
		return
	}

	result := h.Classifier.Classify(in.Description)
	metrics.AnalysesRun.WithLabelValues(result.Category).Inc()
	c.JSON(http.StatusOK, result)
}

type surveyRequest struct {
	ProtocolNumber string `json:"protocol_number"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

// CreateSurvey grava uma resposta da pesquisa de satisfação.
func (h *Handler) CreateSurvey(c *gin.Context) {
	var in surveyRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}
	if in.Rating < 0 || in.Rating > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a nota da pesquisa vai de 0 a 10"})
		return
	}

	survey := &models.SurveyResponse{
		ProtocolNumber: in.ProtocolNumber,
		Rating:         in.Rating,
		Comment:        strings.TrimSpace(in.Comment),
	}
	if err := h.Storage.SaveSurveyResponse(survey); err != nil {
		fail(c, err)
		return
	}
	metrics.SurveyResponses.Inc()

	c.JSON(http.StatusCreated, gin.H{"message": "obrigado pela avaliação"})
}
