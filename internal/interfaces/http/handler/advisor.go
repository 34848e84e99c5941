package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/royale/pos/internal/application/advisor"
)

// ChatRequest is one chat turn plus the conversation so far
type ChatRequest struct {
	History []advisor.ChatMessage `json:"history" binding:"max=50,dive"`
	Message string                `json:"message" binding:"required,max=2000"`
}

// ReplyResponse carries advisor text
type ReplyResponse struct {
	Reply string `json:"reply"`
}

// AdvisorHandler serves business advice and chat. Both always answer 200;
// the advisor replaces failures with fixed text.
type AdvisorHandler struct {
	BaseHandler
	advisor *advisor.Service
}

// NewAdvisorHandler creates a new AdvisorHandler
func NewAdvisorHandler(svc *advisor.Service) *AdvisorHandler {
	return &AdvisorHandler{advisor: svc}
}

// Advice handles GET /advisor/advice
func (h *AdvisorHandler) Advice(c *gin.Context) {
	h.Success(c, ReplyResponse{Reply: h.advisor.BusinessAdvice(c.Request.Context())})
}

// Chat handles POST /advisor/chat
func (h *AdvisorHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, ReplyResponse{Reply: h.advisor.Chat(c.Request.Context(), req.History, req.Message)})
}
