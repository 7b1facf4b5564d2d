package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"samvaad.app/intake/internal/http/dto"
	"samvaad.app/intake/internal/service"
)

type ConversationHandler struct {
	service service.ConversationService
}

func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetHistory returns the newest audit-log lines for one sender. Channel and
// sender id come from query params because sender ids can contain characters
// (+, /) that path segments mangle.
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	channel := c.Query("channel")
	senderID := c.Query("sender_id")
	if channel == "" || senderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and sender_id are required"})
		return
	}

	var limit int32
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = int32(parsed)
	}

	entries, err := h.service.History(ctx, channel, senderID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch conversation history", "channel", channel, "sender_id", senderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch conversation history"})
		return
	}

	resp := dto.ConversationHistoryResponse{
		Channel:  channel,
		SenderID: senderID,
		Entries:  make([]dto.ConversationEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.ConversationEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Direction: string(e.Direction),
			Text:      e.Text,
			MediaURL:  e.MediaURL,
			CreatedAt: e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
