package handlers

import (
	"net/http"

	"careermate/internal/application/usecase"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	assistant *usecase.AssistantUseCase
}

func NewAIHandler(assistant *usecase.AssistantUseCase) *AIHandler {
	return &AIHandler{assistant: assistant}
}

type chatReq struct {
	Message string `json:"message"`
}

func (h *AIHandler) Chat(c *gin.Context) {
	if _, ok := requireIdentity(c); !ok {
		return
	}
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Message is required")
		return
	}

	reply, err := h.assistant.Chat(c, req.Message)
	if err != nil {
		respondError(c, err, "Sorry, I encountered an error. Please try again in a moment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "audioUrl": nil})
}
