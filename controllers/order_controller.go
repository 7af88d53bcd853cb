package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/kendall-kelly/luxetrack-api/services"
	"go.uber.org/zap"
)

// OrderController serves the order ledger
type OrderController struct {
	ledger *services.Ledger
	logger *zap.Logger
}

// NewOrderController creates an order controller over ledger
func NewOrderController(ledger *services.Ledger, logger *zap.Logger) *OrderController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderController{ledger: ledger, logger: logger}
}

// ListOrders handles GET /api/v1/orders - lists orders newest first, optionally filtered
// by ?q= (id, customer name, phone), ?status= and ?brand=
func (oc *OrderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{
		SearchTerm: c.Query("q"),
		Status:     c.DefaultQuery("status", services.FilterAll),
		Brand:      c.DefaultQuery("brand", services.FilterAll),
	}

	orders := oc.ledger.Filter(filter)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"meta": gin.H{
			"count": len(orders),
			"total": len(oc.ledger.List()),
		},
	})
}

// ListBrands handles GET /api/v1/orders/brands - distinct brands for the filter dropdown
func (oc *OrderController) ListBrands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.Brands(oc.ledger.List()),
	})
}

// GetOrder handles GET /api/v1/orders/:id - gets a single order
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.ledger.Get(oc.orderID(c))
	if err != nil {
		oc.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CreateOrder handles POST /api/v1/orders - creates a new order at the top of the ledger
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input models.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := oc.ledger.Create(c.Request.Context(), input)
	if err != nil {
		oc.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - replaces every field except the id
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var input models.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := oc.ledger.Update(c.Request.Context(), oc.orderID(c), input)
	if err != nil {
		oc.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id := oc.orderID(c)
	if err := oc.ledger.Delete(c.Request.Context(), id); err != nil {
		oc.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": id,
		},
	})
}

// PreviewOrder handles POST /api/v1/orders/preview - returns the order as it would be
// saved, with derived totals, without touching the ledger
func (oc *OrderController) PreviewOrder(c *gin.Context) {
	var input models.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    models.BuildOrder("", input, time.Now()),
	})
}

// orderID reads the :id path parameter. Ids start with "#", which clients must
// escape as %23; an id sent without it is retried with the prefix.
func (oc *OrderController) orderID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || strings.HasPrefix(id, "#") {
		return id
	}
	if _, err := oc.ledger.Get(id); errors.Is(err, services.ErrOrderNotFound) {
		if _, err := oc.ledger.Get("#" + id); err == nil {
			return "#" + id
		}
	}
	return id
}

func (oc *OrderController) respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
	default:
		oc.logger.Error("ledger operation failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERSISTENCE_ERROR",
				"message": "Failed to save orders",
			},
		})
	}
}
