package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"samvaad.app/intake/internal/http/dto"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/service"
)

type MessageHandler struct {
	service     service.MessageIngestService
	traceHeader string
}

func NewMessageHandler(service service.MessageIngestService, traceHeader string) *MessageHandler {
	return &MessageHandler{
		service:     service,
		traceHeader: traceHeader,
	}
}

func (h *MessageHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	traceID := c.GetHeader(h.traceHeader)
	if traceID == "" {
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			traceID = spanCtx.TraceID().String()
		}
	}

	env := model.Envelope{
		Channel:           req.Channel,
		SenderID:          req.SenderID,
		SenderName:        req.SenderName,
		Text:              req.Text,
		ExternalMessageID: req.ExternalMessageID,
	}
	if req.Media != nil {
		env.Media = &model.Media{
			MimeType: req.Media.MimeType,
			URL:      req.Media.URL,
			Data:     req.Media.Data,
			Filename: req.Media.Filename,
		}
	}
	if req.Location != nil {
		env.Location = &model.Location{
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			Name:    req.Location.Name,
			Address: req.Location.Address,
		}
	}

	var tracePtr *string
	if traceID != "" {
		tracePtr = &traceID
	}

	result, err := h.service.Ingest(ctx, env, tracePtr)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEnvelope) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to ingest message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest message"})
		return
	}

	c.JSON(http.StatusAccepted, dto.IngestMessageResponse{
		MessageID:  result.MessageID,
		Enqueued:   result.Enqueued,
		Duplicated: result.Duplicated,
	})
}
