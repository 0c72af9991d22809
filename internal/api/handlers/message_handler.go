package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// MessageHandler handles REST requests for direct messages.
type MessageHandler struct {
	cfg            *config.Config
	messageService services.IMessageService
	userService    services.IUserService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(cfg *config.Config, messageService services.IMessageService, userService services.IUserService) *MessageHandler {
	return &MessageHandler{cfg: cfg, messageService: messageService, userService: userService}
}

// ListMessages handles GET /api/messages. The caller sees the messages they
// sent or received, optionally narrowed to an order or RFQ thread.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	limit, offset := parsePagination(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	filters := services.MessageFilters{
		UserID:  authCtx.UserID,
		OrderID: c.Query("orderId"),
		RfqID:   c.Query("rfqId"),
		Limit:   limit,
		Offset:  offset,
	}

	page, err := h.messageService.List(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateMessage handles POST /api/messages.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input services.MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	if _, err := h.userService.FindByID(c.Request.Context(), input.RecipientID); err != nil {
		respondServiceError(c, err, "Recipient not found")
		return
	}

	message, err := h.messageService.Create(c.Request.Context(), authCtx.UserID, &input)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, message)
}

// MarkMessageRead handles PUT /api/messages/:id/read. Only the recipient may
// mark a message read; re-reading refreshes the timestamp.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	message, err := h.messageService.MarkRead(c.Request.Context(), c.Param("id"), authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "Message not found")
		return
	}
	c.JSON(http.StatusOK, message)
}
