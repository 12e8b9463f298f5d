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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupSalesTest(t *testing.T) (*SalesHandler, sqlmock.Sqlmock, *gin.Engine) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	// Unreachable Redis address so the list tests always miss the cache
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:1",
	})

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewSalesHandler(db, redisClient, &mockProducer{}, 500, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/admin/sales", handler.ListSales)
	router.POST("/api/admin/sales", handler.CreateSale)

	return handler, mock, router
}

func TestListSales_Success(t *testing.T) {
	handler, mock, router := setupSalesTest(t)
	defer handler.db.Close()

	cols := []string{
		"id", "created_at", "customer_name", "customer_phone", "channel", "payment_method",
		"total_value_cents", "discount_cents", "cost_freight_cents", "cost_packaging_cents",
		"cost_card_fee_cents", "cost_other_cents", "notes",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(2, time.Now(), "Bruna", "11999990000", "whatsapp", "pix", 4500, 0, 0, 0, 0, 0, nil).
		AddRow(1, time.Now(), "Carlos", nil, "site", "card", 12000, 500, 1000, 200, 300, 0, "birthday cake")

	mock.ExpectQuery("SELECT (.+) FROM sales ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(500).
		WillReturnRows(rows)

	req := httptest.NewRequest("GET", "/api/admin/sales", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		OK    bool          `json:"ok"`
		Sales []models.Sale `json:"sales"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.OK || len(resp.Sales) != 2 {
		t.Errorf("Expected 2 sales, got %+v", resp)
	}
	if resp.Sales[0].CustomerName != "Bruna" {
		t.Errorf("Expected newest sale first, got %q", resp.Sales[0].CustomerName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestCreateSale_Success(t *testing.T) {
	handler, mock, router := setupSalesTest(t)
	defer handler.db.Close()

	// "45,90" and "5.5" must land as rounded integer cents
	mock.ExpectQuery("INSERT INTO sales").
		WithArgs("Bruna", "11999990000", "whatsapp", "pix",
			int64(4590), int64(550), int64(0), int64(0), int64(0), int64(0), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	reqBody := models.CreateSaleRequest{
		CustomerName:  "Bruna",
		CustomerPhone: "11999990000",
		Channel:       "WhatsApp",
		PaymentMethod: "Pix",
		TotalValue:    "45,90",
		Discount:      "5.5",
		Notes:         "pickup",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/api/admin/sales", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		OK bool `json:"ok"`
		ID int  `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.OK || resp.ID != 3 {
		t.Errorf("Unexpected response: %+v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestCreateSale_MissingCustomerName(t *testing.T) {
	handler, mock, router := setupSalesTest(t)
	defer handler.db.Close()

	// No database expectations - validation fails before any insert
	body, _ := json.Marshal(models.CreateSaleRequest{TotalValue: "10"})
	req := httptest.NewRequest("POST", "/api/admin/sales", bytes.NewBuffer(body))
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

func TestCreateSale_NonNumericTotal(t *testing.T) {
	handler, mock, router := setupSalesTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(models.CreateSaleRequest{
		CustomerName: "Bruna",
		TotalValue:   "abc",
	})
	req := httptest.NewRequest("POST", "/api/admin/sales", bytes.NewBuffer(body))
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

func TestCreateSale_ZeroTotal(t *testing.T) {
	handler, _, router := setupSalesTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(models.CreateSaleRequest{
		CustomerName: "Bruna",
		TotalValue:   "0",
	})
	req := httptest.NewRequest("POST", "/api/admin/sales", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateSale_NonNumericCost(t *testing.T) {
	handler, mock, router := setupSalesTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(models.CreateSaleRequest{
		CustomerName: "Bruna",
		TotalValue:   "45,90",
		CostFreight:  "free",
	})
	req := httptest.NewRequest("POST", "/api/admin/sales", bytes.NewBuffer(body))
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
