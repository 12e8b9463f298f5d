package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

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

const salesCacheTTL = 1 * time.Minute

type SalesHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	producer    sarama.SyncProducer
	logger      *zap.Logger
	rowLimit    int
}

func NewSalesHandler(db *sql.DB, redisClient *redis.Client, producer sarama.SyncProducer, rowLimit int, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		db:          db,
		redisClient: redisClient,
		producer:    producer,
		logger:      logger,
		rowLimit:    rowLimit,
	}
}

// ListSales returns the sales ledger newest-first, bounded by the configured
// row limit, with a short-lived cache in front of the query.
func (h *SalesHandler) ListSales(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "ListSales")
	defer span.End()

	if cached, err := cache.GetSalesList(ctx, h.redisClient); err == nil {
		var sales []models.Sale
		if err := json.Unmarshal(cached, &sales); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			c.JSON(http.StatusOK, gin.H{"ok": true, "sales": sales})
			return
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	rows, err := h.db.QueryContext(ctx,
		"SELECT id, created_at, customer_name, customer_phone, channel, payment_method, total_value_cents, discount_cents, cost_freight_cents, cost_packaging_cents, cost_card_fee_cents, cost_other_cents, notes FROM sales ORDER BY created_at DESC LIMIT $1",
		h.rowLimit,
	)
	if err != nil {
		span.RecordError(err)
		traceID := middleware.GetTraceID(ctx)
		h.logger.Error("Failed to fetch sales", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to fetch sales"})
		return
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(
			&s.ID, &s.CreatedAt, &s.CustomerName, &s.CustomerPhone, &s.Channel, &s.PaymentMethod,
			&s.TotalValueCents, &s.DiscountCents, &s.CostFreightCents, &s.CostPackagingCents,
			&s.CostCardFeeCents, &s.CostOtherCents, &s.Notes,
		); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan sale", zap.Error(err))
			continue
		}
		sales = append(sales, s)
	}

	if err := cache.SetSalesList(ctx, h.redisClient, sales, salesCacheTTL); err != nil {
		h.logger.Debug("Failed to cache sales list", zap.Error(err))
	}

	span.SetAttributes(attribute.Int("sales.count", len(sales)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "sales": sales})
}

// CreateSale records a manual ledger entry with its cost breakdown. Monetary
// fields arrive as decimal strings; unparseable input is rejected instead of
// being stored as zero.
func (h *SalesHandler) CreateSale(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "CreateSale")
	defer span.End()

	var req models.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON"})
		return
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Customer name is required"})
		return
	}

	totalValueCents, err := models.ParseCents(req.TotalValue)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if totalValueCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Total value must be greater than zero"})
		return
	}

	var discountCents, costFreightCents, costPackagingCents, costCardFeeCents, costOtherCents int64
	for _, field := range []struct {
		value string
		dst   *int64
	}{
		{req.Discount, &discountCents},
		{req.CostFreight, &costFreightCents},
		{req.CostPackaging, &costPackagingCents},
		{req.CostCardFee, &costCardFeeCents},
		{req.CostOther, &costOtherCents},
	} {
		cents, err := models.ParseCents(field.value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		*field.dst = cents
	}

	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	if channel == "" {
		channel = "whatsapp"
	}
	paymentMethod := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if paymentMethod == "" {
		paymentMethod = "pix"
	}

	var customerPhone, notes *string
	if p := strings.TrimSpace(req.CustomerPhone); p != "" {
		customerPhone = &p
	}
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = &n
	}

	span.SetAttributes(
		attribute.String("sale.channel", channel),
		attribute.Int64("sale.total_cents", totalValueCents),
	)

	var saleID int
	err = h.db.QueryRowContext(ctx,
		"INSERT INTO sales (customer_name, customer_phone, channel, payment_method, total_value_cents, discount_cents, cost_freight_cents, cost_packaging_cents, cost_card_fee_cents, cost_other_cents, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id",
		customerName, customerPhone, channel, paymentMethod,
		totalValueCents, discountCents, costFreightCents,
		costPackagingCents, costCardFeeCents, costOtherCents, notes,
	).Scan(&saleID)
	if err != nil {
		span.RecordError(err)
		traceID := middleware.GetTraceID(ctx)
		h.logger.Error("Failed to create sale", zap.String("trace_id", traceID), zap.Error(err))
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
		TotalValueCents: totalValueCents,
		EventType:       "sale_recorded",
	}
	if err := kafka.PublishEvent(ctx, h.producer, "sale_events", event, h.logger); err != nil {
		h.logger.Error("Failed to publish sale_recorded event", zap.Error(err))
		// Don't fail the request, but log the error
	}

	middleware.RecordSale(channel)

	h.logger.Info("Sale recorded", zap.Int("sale_id", saleID), zap.String("channel", channel))
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": saleID})
}
