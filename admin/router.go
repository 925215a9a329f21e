package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with the /api/v1 routes.
func NewRouter(h *OrderHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health)
		v1.GET("/orders/:id", h.GetOrder)
		v1.GET("/orders/:id/message", h.GetOrderMessage)
		v1.PUT("/orders/:id/status", h.UpdateStatus)
		v1.GET("/users/:uid/orders", h.ListUserOrders)
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
