package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/kendall-kelly/luxetrack-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sequentialIDs hands out #DH9001, #DH9002, ... so tests can predict ids
type sequentialIDs struct {
	next int
}

func (s *sequentialIDs) NewID(taken func(string) bool) string {
	for {
		s.next++
		id := fmt.Sprintf("#DH%d", 9000+s.next)
		if !taken(id) {
			return id
		}
	}
}

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// setupTestLedger returns a seeded ledger backed by an in-memory SQLite store
func setupTestLedger(t *testing.T) *services.Ledger {
	store := services.NewGormStore(setupOrderTestDB(t))
	return loadTestLedger(t, store)
}

func loadTestLedger(t *testing.T, store services.Store) *services.Ledger {
	ledger := services.NewLedger(store, nil, nil,
		services.WithIDGenerator(&sequentialIDs{}),
		services.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, ledger.Load(context.Background()))
	return ledger
}

func setupOrderRouter(ledger *services.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	oc := NewOrderController(ledger, nil)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/orders", oc.ListOrders)
		v1.GET("/orders/brands", oc.ListBrands)
		v1.POST("/orders/preview", oc.PreviewOrder)
		v1.GET("/orders/:id", oc.GetOrder)
		v1.POST("/orders", oc.CreateOrder)
		v1.PUT("/orders/:id", oc.UpdateOrder)
		v1.DELETE("/orders/:id", oc.DeleteOrder)
	}
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func orderIDs(t *testing.T, response map[string]interface{}) []string {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "data should be a list")

	ids := make([]string, 0, len(data))
	for _, item := range data {
		ids = append(ids, item.(map[string]interface{})["id"].(string))
	}
	return ids
}

func TestListOrders(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expectedIDs []string
	}{
		{"no filter returns every order newest first", "", []string{"#DH1210", "#DH1211", "#DH1212"}},
		{"search matches customer name case-insensitively", "?q=tran", []string{"#DH1211"}},
		{"search matches id", "?q=dh1212", []string{"#DH1212"}},
		{"search matches phone", "?q=0987", []string{"#DH1212"}},
		{"status filter", "?status=Pending", []string{"#DH1212"}},
		{"brand filter", "?brand=Dior", []string{"#DH1211"}},
		{"All means no constraint", "?status=All&brand=All", []string{"#DH1210", "#DH1211", "#DH1212"}},
		{"filters combine with AND", "?q=tran&status=Pending", []string{}},
		{"unknown brand matches nothing", "?brand=Hermes", []string{}},
	}

	router := setupOrderRouter(setupTestLedger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doJSON(router, http.MethodGet, "/api/v1/orders"+tt.query, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, response["success"].(bool))
			assert.Equal(t, tt.expectedIDs, orderIDs(t, response))

			meta := response["meta"].(map[string]interface{})
			assert.Equal(t, float64(len(tt.expectedIDs)), meta["count"])
			assert.Equal(t, float64(3), meta["total"])
		})
	}
}

func TestListBrands(t *testing.T) {
	router := setupOrderRouter(setupTestLedger(t))

	w, response := doJSON(router, http.MethodGet, "/api/v1/orders/brands", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Gentle Monster", "Dior", "Vivienne Westwood"}, response["data"])
}

func TestGetOrder(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedError  string
	}{
		{"escaped id", "/api/v1/orders/%23DH1211", http.StatusOK, ""},
		{"id without hash prefix", "/api/v1/orders/DH1211", http.StatusOK, ""},
		{"unknown id", "/api/v1/orders/%23DH0000", http.StatusNotFound, "ORDER_NOT_FOUND"},
	}

	router := setupOrderRouter(setupTestLedger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doJSON(router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, "#DH1211", data["id"])
			assert.Equal(t, "Tran Thi B", data["customerName"])
			assert.Equal(t, float64(120150000), data["totalAmount"])
		})
	}
}

func TestCreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name: "Successfully create order with derived totals",
			requestBody: map[string]interface{}{
				"brand":        "Chanel",
				"productName":  "Classic Flap",
				"unitPrice":    200000000,
				"quantity":     1,
				"discount":     1000000,
				"shippingFee":  50000,
				"deposit":      50000000,
				"costPrice":    160000000,
				"customerName": "Pham Thi D",
				"phone":        "0933333333",
				"status":       "Shipping",
				"channel":      "Website",
				"region":       "North",
				"orderDate":    "2024-03-14",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "#DH9001", data["id"])
				assert.Equal(t, float64(199050000), data["totalAmount"])
				assert.Equal(t, float64(149050000), data["codAmount"])
				assert.Equal(t, float64(39000000), data["profit"])
				assert.Equal(t, "Shipping", data["status"])
				assert.Equal(t, "Website", data["channel"])
				assert.Equal(t, "North", data["region"])
				assert.Equal(t, "2024-03-14", data["orderDate"])
			},
		},
		{
			name: "Defaults are applied to empty fields",
			requestBody: map[string]interface{}{
				"brand":     "Celine",
				"unitPrice": 1000,
				"quantity":  1,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "Pending", data["status"])
				assert.Equal(t, "Facebook", data["channel"])
				assert.Equal(t, "South", data["region"])
				assert.Equal(t, "2024-03-15", data["orderDate"])
				assert.Equal(t, "", data["shipDate"])
			},
		},
		{
			name:           "Numeric strings are accepted and derived values from the client are ignored",
			requestBody:    `{"unitPrice":"1500000","quantity":"2","discount":"abc","shippingFee":null,"totalAmount":1,"profit":999}`,
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, float64(3000000), data["totalAmount"])
				assert.Equal(t, float64(3000000), data["profit"])
				assert.Equal(t, float64(0), data["discount"])
			},
		},
		{
			name:           "Fail with negative amount",
			requestBody:    map[string]interface{}{"unitPrice": -1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with unknown status",
			requestBody:    map[string]interface{}{"status": "Lost"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with malformed date",
			requestBody:    map[string]interface{}{"orderDate": "15/03/2024"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with invalid JSON",
			requestBody:    `{"brand":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := setupTestLedger(t)
			router := setupOrderRouter(ledger)

			w, response := doJSON(router, http.MethodPost, "/api/v1/orders", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
				assert.Len(t, ledger.List(), 3, "A rejected request must not change the ledger")
				return
			}

			assert.True(t, response["success"].(bool))
			data := response["data"].(map[string]interface{})
			tt.checkResponse(t, data)

			orders := ledger.List()
			require.Len(t, orders, 4)
			assert.Equal(t, data["id"], orders[0].ID, "New orders go to the front")
		})
	}
}

func TestCreateOrderPersistenceFailure(t *testing.T) {
	store := services.NewMemoryStore()
	ledger := loadTestLedger(t, store)
	router := setupOrderRouter(ledger)

	store.FailSets(errors.New("disk full"))

	w, response := doJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"brand": "Prada"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "PERSISTENCE_ERROR", errorData["code"])
	assert.Len(t, ledger.List(), 3, "Failed flush must roll back the create")
}

func TestUpdateOrder(t *testing.T) {
	ledger := setupTestLedger(t)
	router := setupOrderRouter(ledger)

	w, response := doJSON(router, http.MethodPut, "/api/v1/orders/%23DH1211", map[string]interface{}{
		"orderDate":    "2024-03-11",
		"status":       "Completed",
		"channel":      "Instagram",
		"brand":        "Dior",
		"productName":  "Lady Dior Mini Black",
		"unitPrice":    125000000,
		"quantity":     1,
		"discount":     0,
		"shippingFee":  150000,
		"deposit":      125150000,
		"costPrice":    95000000,
		"customerName": "Tran Thi B",
		"region":       "South",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "#DH1211", data["id"])
	assert.Equal(t, "Completed", data["status"])
	assert.Equal(t, float64(125150000), data["totalAmount"])
	assert.Equal(t, float64(0), data["codAmount"])
	assert.Equal(t, float64(30000000), data["profit"])

	orders := ledger.List()
	require.Len(t, orders, 3)
	assert.Equal(t, "#DH1211", orders[1].ID, "Updated order keeps its position")
	assert.Equal(t, models.StatusCompleted, orders[1].Status)
}

func TestUpdateOrderNotFound(t *testing.T) {
	ledger := setupTestLedger(t)
	router := setupOrderRouter(ledger)

	w, response := doJSON(router, http.MethodPut, "/api/v1/orders/%23DH4040", map[string]interface{}{"brand": "Fendi"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "ORDER_NOT_FOUND", errorData["code"])
	assert.Equal(t, services.SeedOrders(), ledger.List())
}

func TestDeleteOrder(t *testing.T) {
	ledger := setupTestLedger(t)
	router := setupOrderRouter(ledger)

	w, response := doJSON(router, http.MethodDelete, "/api/v1/orders/%23DH1210", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#DH1210", response["data"].(map[string]interface{})["id"])
	assert.Len(t, ledger.List(), 2)

	w, response = doJSON(router, http.MethodDelete, "/api/v1/orders/%23DH1210", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", response["error"].(map[string]interface{})["code"])
	assert.Len(t, ledger.List(), 2, "Deleting an unknown id changes nothing")

	w, _ = doJSON(router, http.MethodGet, "/api/v1/orders/%23DH1210", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewOrder(t *testing.T) {
	ledger := setupTestLedger(t)
	router := setupOrderRouter(ledger)

	w, response := doJSON(router, http.MethodPost, "/api/v1/orders/preview", map[string]interface{}{
		"unitPrice":   4200000,
		"quantity":    2,
		"shippingFee": 30000,
		"deposit":     1000000,
		"costPrice":   2800000,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "", data["id"])
	assert.Equal(t, float64(8430000), data["totalAmount"])
	assert.Equal(t, float64(7430000), data["codAmount"])
	assert.Equal(t, float64(2800000), data["profit"])
	assert.Len(t, ledger.List(), 3, "Preview must not mutate the ledger")
}
