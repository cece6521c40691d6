package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"triagem-llm/internal/domain"
	"triagem-llm/internal/service"
)

// ChatHandler mantém as dependências dos endpoints de conversa e triagem.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
	triage *service.TriageService
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService, triage *service.TriageService) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		chat:   chat,
		triage: triage,
	}
}

// StartConversation trata POST /chat: inicia uma conversa para um paciente.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req struct {
		PatientRef string `json:"patient_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("requisição de nova conversa inválida", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "requisição inválida"})
		return
	}

	conv, err := h.chat.StartConversation(c.Request.Context(), req.PatientRef)
	if err != nil {
		h.writeError(c, "criar conversa", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": conv.ID,
		"messages":   conv.Messages,
	})
}

// PostMessage trata POST /chat/message: envia uma mensagem em uma conversa
// existente ou inicia uma conversa anônima quando session_id vem vazio.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("requisição de mensagem inválida", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "requisição inválida"})
		return
	}

	result, err := h.chat.PostMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeError(c, "processar mensagem", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": result.SessionID,
		"reply":      result.Reply,
	})
}

// GetMessages trata GET /chat/messages/:session_id.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chat.History(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, "buscar histórico", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// GetTriage trata GET /chat/triage/:session_id: reextrai a triagem do log
// atual, grava o snapshot e devolve o registro.
func (h *ChatHandler) GetTriage(c *gin.Context) {
	sessionID := c.Param("session_id")

	record, err := h.triage.Recompute(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, "extrair triagem", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"triage":     record,
	})
}

// ListByPatient trata GET /chat/patient/:patient_ref.
func (h *ChatHandler) ListByPatient(c *gin.Context) {
	patientRef := c.Param("patient_ref")

	conversations, err := h.chat.ListByPatient(c.Request.Context(), patientRef)
	if err != nil {
		h.writeError(c, "listar conversas", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_ref":   patientRef,
		"conversations": conversations,
	})
}

// writeError mapeia os erros do domínio para status HTTP.
func (h *ChatHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversa não encontrada"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "entrada inválida"})
	case errors.Is(err, domain.ErrEngineUnavailable):
		h.logger.Error(op+" falhou: motor indisponível", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "motor de geração indisponível"})
	default:
		h.logger.Error(op+" falhou", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno"})
	}
}
