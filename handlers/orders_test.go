package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rdioscaio/pane-a-tavola/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var orderTestCols = []string{
	"id", "created_at", "delivery_date", "delivery_period", "customer_name",
	"customer_phone", "customer_address", "notes", "origin", "status",
	"total_cents", "brand_slug",
}

func setupOrdersTest(t *testing.T) (*OrdersHandler, sqlmock.Sqlmock, *gin.Engine) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewOrdersHandler(db, &mockProducer{}, 500, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/admin/orders", handler.ListOrders)
	router.POST("/api/admin/orders", handler.UpdateStatus)
	router.GET("/api/admin/orders/export", handler.ExportCSV)

	return handler, mock, router
}

func TestListOrders_NoFilters(t *testing.T) {
	handler, mock, router := setupOrdersTest(t)
	defer handler.db.Close()

	rows := sqlmock.NewRows(orderTestCols).
		AddRow(5, time.Now(), "2025-12-01", "morning", "Daniela", nil, nil, nil, "site", "new", 8900, "pane")

	mock.ExpectQuery("SELECT (.+) FROM orders ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(500).
		WillReturnRows(rows)

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		OK     bool           `json:"ok"`
		Orders []models.Order `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.OK || len(resp.Orders) != 1 {
		t.Errorf("Expected 1 order, got %+v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestListOrders_AllFilters(t *testing.T) {
	handler, mock, router := setupOrdersTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE created_at >= \\$1 AND created_at <= \\$2 AND status = \\$3 ORDER BY created_at DESC LIMIT \\$4").
		WithArgs("2025-01-01", "2025-01-31", "ready", 500).
		WillReturnRows(sqlmock.NewRows(orderTestCols))

	req := httptest.NewRequest("GET", "/api/admin/orders?start=2025-01-01&end=2025-01-31&status=ready", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestListOrders_InvalidStatusFilterIgnored(t *testing.T) {
	handler, mock, router := setupOrdersTest(t)
	defer handler.db.Close()

	// A status outside the enum must not reach the WHERE clause
	mock.ExpectQuery("SELECT (.+) FROM orders ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows(orderTestCols))

	req := httptest.NewRequest("GET", "/api/admin/orders?status=shipped", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	handler, mock, router := setupOrdersTest(t)
	defer handler.db.Close()

	mock.ExpectExec("UPDATE orders SET status = \\$1 WHERE id = \\$2").
		WithArgs("delivered", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(models.UpdateOrderStatusRequest{ID: 42, Status: "delivered"})
	req := httptest.NewRequest("POST", "/api/admin/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	handler, mock, router := setupOrdersTest(t)
	defer handler.db.Close()

	// No database expectations - the enum check runs before any update
	body, _ := json.Marshal(models.UpdateOrderStatusRequest{ID: 42, Status: "shipped"})
	req := httptest.NewRequest("POST", "/api/admin/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls were made: %v", err)
	}
}

func TestUpdateStatus_MissingID(t *testing.T) {
	handler, _, router := setupOrdersTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(models.UpdateOrderStatusRequest{Status: "ready"})
	req := httptest.NewRequest("POST", "/api/admin/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	handler, mock, router := setupOrdersTest(t)
	defer handler.db.Close()

	mock.ExpectExec("UPDATE orders SET status = \\$1 WHERE id = \\$2").
		WithArgs("ready", 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	body, _ := json.Marshal(models.UpdateOrderStatusRequest{ID: 999, Status: "ready"})
	req := httptest.NewRequest("POST", "/api/admin/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}
