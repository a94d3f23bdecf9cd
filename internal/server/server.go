package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/orderdesk/internal/app"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/transfer"
	"github.com/sirupsen/logrus"
)

const (
	// maxImportBytes caps the body of an import request (10MB).
	maxImportBytes = 10 << 20

	shutdownTimeout = 10 * time.Second
)

type Server struct {
	router *gin.Engine
	app    *app.App
	logger *logrus.Logger

	maxImportBytes int64
}

// NewServer creates a new server instance
func NewServer(a *app.App, logger *logrus.Logger) *Server {
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery())

	server := &Server{
		router:         router,
		app:            a,
		logger:         logger,
		maxImportBytes: maxImportBytes,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		customers := api.Group("/customers")
		customers.GET("", s.listCustomers)
		customers.POST("", s.createCustomer)
		customers.GET("/:id", s.getCustomer)
		customers.PATCH("/:id", s.updateCustomer)
		customers.DELETE("/:id", s.deleteCustomer)

		products := api.Group("/products")
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.GET("/:id", s.getProduct)
		products.PATCH("/:id", s.updateProduct)
		products.DELETE("/:id", s.deleteProduct)

		orders := api.Group("/orders")
		orders.GET("", s.listOrders)
		orders.POST("", s.createOrder)
		orders.GET("/:id", s.getOrder)
		orders.PATCH("/:id", s.updateOrder)
		orders.POST("/:id/cancel", s.cancelOrder)
		orders.DELETE("/:id", s.deleteOrder)

		api.GET("/analytics", s.analytics)
		api.GET("/analytics/:kind", s.analyticsSection)

		api.GET("/export/:entity", s.exportEntity)
		api.POST("/import/:entity", s.importEntity)
	}
}

// ServeHTTP lets the server be used as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves HTTP on addr until ctx is done, then shuts down gracefully,
// letting in-flight requests finish.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.app.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "orderdesk",
	})
}

func statusFor(err error) int {
	var (
		verr    *models.ValidationError
		cerr    *models.ConstraintError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &cerr):
		return http.StatusConflict
	case errors.Is(err, transfer.ErrInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the user message for err, with per-field problems for
// validation failures.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": app.Message(err)}
	if fields := app.FieldErrors(err); fields != nil {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(statusFor(err), body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
