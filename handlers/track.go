package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/rdioscaio/pane-a-tavola/middleware"
	"github.com/rdioscaio/pane-a-tavola/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TrackHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTrackHandler(db *sql.DB, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{
		db:     db,
		logger: logger,
	}
}

// Track appends one storefront interaction to the events table. The type
// allow-list is checked before any store access; everything else is stored
// as provided. The events table is created at startup, not here.
func (h *TrackHandler) Track(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "TrackEvent")
	defer span.End()

	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON"})
		return
	}

	eventType := strings.TrimSpace(req.Type)
	if !models.ValidEventType(eventType) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid event type"})
		return
	}

	span.SetAttributes(attribute.String("event.type", eventType))

	var productSlug, pagePath, sessionID, extra *string
	if req.ProductSlug != "" {
		productSlug = &req.ProductSlug
	}
	if req.PagePath != "" {
		pagePath = &req.PagePath
	}
	if req.SessionID != "" {
		sessionID = &req.SessionID
	}
	if len(req.Extra) > 0 {
		s := string(req.Extra)
		extra = &s
	}

	_, err := h.db.ExecContext(ctx,
		"INSERT INTO events (type, product_slug, page_path, session_id, extra) VALUES ($1, $2, $3, $4, $5)",
		eventType, productSlug, pagePath, sessionID, extra,
	)
	if err != nil {
		span.RecordError(err)
		traceID := middleware.GetTraceID(ctx)
		h.logger.Error("Failed to record event", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to record event"})
		return
	}

	middleware.RecordStorefrontEvent(eventType)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
