package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/rdioscaio/pane-a-tavola/cache"
	"github.com/rdioscaio/pane-a-tavola/kafka"
	"github.com/rdioscaio/pane-a-tavola/middleware"
	"github.com/rdioscaio/pane-a-tavola/models"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	producer    sarama.SyncProducer
	logger      *zap.Logger
}

func NewCheckoutHandler(db *sql.DB, redisClient *redis.Client, producer sarama.SyncProducer, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		db:          db,
		redisClient: redisClient,
		producer:    producer,
		logger:      logger,
	}
}

// Checkout records a storefront cart as a sales row. The cart total is
// computed by the storefront and submitted in cents; items are validated
// but not persisted.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "Checkout")
	defer span.End()

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON"})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Empty cart"})
		return
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		customerName = "Website customer"
	}
	channel := req.Channel
	if channel == "" {
		channel = "site"
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "other"
	}

	span.SetAttributes(
		attribute.Int("cart.items", len(req.Items)),
		attribute.Int64("cart.total_cents", req.TotalValueCents),
	)

	var saleID int
	err := h.db.QueryRowContext(ctx,
		"INSERT INTO sales (customer_name, channel, payment_method, total_value_cents, notes) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		customerName, channel, paymentMethod, req.TotalValueCents, req.Notes,
	).Scan(&saleID)
	if err != nil {
		span.RecordError(err)
		traceID := middleware.GetTraceID(ctx)
		h.logger.Error("Failed to record checkout", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to record sale"})
		return
	}

	if err := cache.InvalidateSalesList(ctx, h.redisClient); err != nil {
		h.logger.Debug("Failed to invalidate sales cache", zap.Error(err))
	}

	event := models.SaleEvent{
		SaleID:          saleID,
		CustomerName:    customerName,
		Channel:         channel,
		PaymentMethod:   paymentMethod,
		TotalValueCents: req.TotalValueCents,
		EventType:       "sale_recorded",
	}
	if err := kafka.PublishEvent(ctx, h.producer, "sale_events", event, h.logger); err != nil {
		h.logger.Error("Failed to publish sale_recorded event", zap.Error(err))
		// Don't fail the request, but log the error
	}

	middleware.RecordSale(channel)

	h.logger.Info("Checkout recorded", zap.Int("sale_id", saleID), zap.String("channel", channel))
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": saleID})
}
