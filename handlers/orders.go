package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/rdioscaio/pane-a-tavola/kafka"
	"github.com/rdioscaio/pane-a-tavola/middleware"
	"github.com/rdioscaio/pane-a-tavola/models"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// orderColumns is the projection shared by the orders listing and its CSV
// export; the export header row follows this order.
var orderColumns = []string{
	"id", "created_at", "delivery_date", "delivery_period", "customer_name",
	"customer_phone", "customer_address", "notes", "origin", "status",
	"total_cents", "brand_slug",
}

type OrdersHandler struct {
	db       *sql.DB
	producer sarama.SyncProducer
	logger   *zap.Logger
	rowLimit int
}

func NewOrdersHandler(db *sql.DB, producer sarama.SyncProducer, rowLimit int, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		db:       db,
		producer: producer,
		logger:   logger,
		rowLimit: rowLimit,
	}
}

// buildOrdersQuery assembles the conjunctive filter used by both the listing
// and the CSV export. A status value outside the enum is ignored, matching
// the listing's historical behavior.
func buildOrdersQuery(filter models.OrderFilter, limit int) (string, []interface{}) {
	var where []string
	var args []interface{}

	if filter.Start != "" {
		args = append(args, filter.Start)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.End != "" {
		args = append(args, filter.End)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.Status != "" && models.ValidOrderStatus(filter.Status) {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := "SELECT " + strings.Join(orderColumns, ", ") + " FROM orders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	return query, args
}

func scanOrders(rows *sql.Rows, logger *zap.Logger) []models.Order {
	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.CreatedAt, &o.DeliveryDate, &o.DeliveryPeriod, &o.CustomerName,
			&o.CustomerPhone, &o.CustomerAddress, &o.Notes, &o.Origin, &o.Status,
			&o.TotalCents, &o.BrandSlug,
		); err != nil {
			logger.Error("Failed to scan order", zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}
	return orders
}

// ListOrders returns orders newest-first with optional start/end/status
// filters, capped at the configured row limit.
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "ListOrders")
	defer span.End()

	filter := models.OrderFilter{
		Start:  c.Query("start"),
		End:    c.Query("end"),
		Status: c.Query("status"),
	}

	query, args := buildOrdersQuery(filter, h.rowLimit)
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		traceID := middleware.GetTraceID(ctx)
		h.logger.Error("Failed to fetch orders", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := scanOrders(rows, h.logger)
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}

// UpdateStatus moves one order through its lifecycle. An id that matches no
// row is a bad request, not a silent no-op.
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "UpdateOrderStatus")
	defer span.End()

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON"})
		return
	}

	if req.ID <= 0 || !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid parameters"})
		return
	}

	span.SetAttributes(
		attribute.Int("order.id", req.ID),
		attribute.String("order.status", req.Status),
	)

	result, err := h.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", req.Status, req.ID)
	if err != nil {
		span.RecordError(err)
		traceID := middleware.GetTraceID(ctx)
		h.logger.Error("Failed to update order status", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to update order"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Unknown order"})
		return
	}

	event := models.OrderStatusEvent{
		OrderID:   req.ID,
		Status:    req.Status,
		EventType: "order_status_changed",
	}
	if err := kafka.PublishEvent(ctx, h.producer, "order_events", event, h.logger); err != nil {
		h.logger.Error("Failed to publish order_status_changed event", zap.Error(err))
		// Don't fail the request, but log the error
	}

	middleware.RecordOrderStatusUpdate(req.Status)

	h.logger.Info("Order status updated", zap.Int("order_id", req.ID), zap.String("status", req.Status))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
