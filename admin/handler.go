// Package admin is the staff HTTP API: order lookup, per-customer history and
// fulfilment status updates.
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/storefront"
)

// ReadyFunc reports whether the service can take traffic.
type ReadyFunc func() bool

// OrderHandler serves the staff order endpoints.
type OrderHandler struct {
	orders order.Repository
	ready  ReadyFunc
	now    func() time.Time
	logger *zap.Logger
}

// NewOrderHandler creates the handler. A nil ready func reports always ready.
func NewOrderHandler(orders order.Repository, ready ReadyFunc, logger *zap.Logger) *OrderHandler {
	if ready == nil {
		ready = func() bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{orders: orders, ready: ready, now: time.Now, logger: logger}
}

type updateStatusRequest struct {
	Status order.Status `json:"status" binding:"required"`
}

type orderResponse struct {
	order.Order
	StatusLabel string `json:"statusLabel"`
}

func (h *OrderHandler) writeError(c *gin.Context, err error) {
	var cmdErr *storefront.CommandError
	if errors.As(err, &cmdErr) {
		code := http.StatusBadRequest
		switch cmdErr.Code {
		case storefront.StatusFailedPrecondition:
			code = http.StatusConflict
		case storefront.StatusNotFound:
			code = http.StatusNotFound
		case storefront.StatusUnavailable:
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"error": cmdErr.Message})
		return
	}
	h.logger.Error("admin request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// Health reports liveness and whether the catalog has finished loading.
func (h *OrderHandler) Health(c *gin.Context) {
	status := gin.H{
		"status":  "healthy",
		"service": "storefront",
	}
	if !h.ready() {
		status["status"] = "starting"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse{Order: o, StatusLabel: o.Status.Label()})
}

// GetOrderMessage returns the rendered staff message of an order.
func (h *OrderHandler) GetOrderMessage(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.String(http.StatusOK, order.Render(o))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	id := c.Param("id")
	if err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, h.now()); err != nil {
		h.writeError(c, err)
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", string(o.Status)))
	c.JSON(http.StatusOK, orderResponse{Order: o, StatusLabel: o.Status.Label()})
}

func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	orders, err := h.orders.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
