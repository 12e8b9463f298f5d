package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rdioscaio/pane-a-tavola/middleware"
	"github.com/rdioscaio/pane-a-tavola/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ExportCSV serializes the filtered orders as a CSV download. It shares the
// filter builder and row limit with ListOrders; historically the export used
// a separate query with its own cap.
func (h *OrdersHandler) ExportCSV(c *gin.Context) {
	ctx, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "ExportOrdersCSV")
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
		h.logger.Error("Failed to export orders", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to export orders"})
		return
	}
	defer rows.Close()

	orders := scanOrders(rows, h.logger)
	span.SetAttributes(attribute.Int("orders.count", len(orders)))

	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(ordersToCSV(orders)))
}

// ordersToCSV renders every present value double-quoted with internal quotes
// doubled; NULLs become bare empty fields. An empty result set produces an
// empty body with no header row. encoding/csv is not used because it only
// quotes when it has to, and the consuming spreadsheet import relies on the
// always-quoted form.
func ordersToCSV(orders []models.Order) string {
	if len(orders) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(orderColumns, ","))

	for _, o := range orders {
		id := strconv.Itoa(o.ID)
		createdAt := o.CreatedAt.Format(time.RFC3339)
		status := string(o.Status)
		totalCents := strconv.FormatInt(o.TotalCents, 10)

		values := []*string{
			&id,
			&createdAt,
			o.DeliveryDate,
			o.DeliveryPeriod,
			&o.CustomerName,
			o.CustomerPhone,
			o.CustomerAddress,
			o.Notes,
			o.Origin,
			&status,
			&totalCents,
			o.BrandSlug,
		}

		b.WriteString("\n")
		for i, v := range values {
			if i > 0 {
				b.WriteString(",")
			}
			if v == nil {
				continue
			}
			b.WriteString(`"`)
			b.WriteString(strings.ReplaceAll(*v, `"`, `""`))
			b.WriteString(`"`)
		}
	}

	return b.String()
}
