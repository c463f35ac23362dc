package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/usecase/conversation"
)

type ConversationHandler struct {
	convUseCase *conversation.ConversationUseCase
}

func NewConversationHandler(convUseCase *conversation.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		convUseCase: convUseCase,
	}
}

// SendMessageRequest represents an outgoing message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=4000"`
}

// List handles GET /conversations
// @Summary List my conversations
// @Description List conversations, most recently active first
// @Tags conversations
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Conversation
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	conversations, err := h.convUseCase.ListMine(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list conversations",
		})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// Messages handles GET /conversations/:conversation_id/messages
// @Summary Read a conversation
// @Description Page through the message log, oldest first
// @Tags conversations
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {array} domain.Message
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations/{conversation_id}/messages [get]
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	conversationID := c.Param("conversation_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.convUseCase.Messages(c.Request.Context(), conversationID, userID.(string), limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "conversation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to load messages",
		})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /conversations/:conversation_id/messages
// @Summary Send a message
// @Description Append a message to an active conversation
// @Tags conversations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations/{conversation_id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	conversationID := c.Param("conversation_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	msg, err := h.convUseCase.SendMessage(c.Request.Context(), conversationID, userID.(string), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "conversation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to send message",
		})
		return
	}

	c.JSON(http.StatusCreated, msg)
}
