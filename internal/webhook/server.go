// Package webhook exposes the HTTP update endpoint plus a lightweight health
// endpoint for container probes.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tg_shift_bot/internal/command"
	"tg_shift_bot/internal/config"
	"tg_shift_bot/internal/logging"
	"tg_shift_bot/internal/telegram"
)

const readHeaderTimeout = 2 * time.Second

// Server hosts the webhook and health endpoints and owns the underlying HTTP
// server. Updates are accepted with HTTP 200 unconditionally; dispatch
// failures are logged through the classifier and never surface in the
// response code.
type Server struct {
	server *http.Server
	router *telegram.Router
	client command.Client
	logger *logrus.Entry
}

// NewServer constructs the server: POST / receives updates, GET /bot and
// GET /healthz answer liveness probes.
func NewServer(cfg config.Config, router *telegram.Router, client command.Client, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logging.Logger()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		router: router,
		client: client,
		logger: logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/", srv.handleUpdate)
	engine.GET("/bot", srv.handleProbe)
	engine.GET("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv
}

// ListenAndServe starts the server and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.WithFields(logging.Fields{
		"event": "webhook_listen",
		"addr":  s.server.Addr,
	}).Info("starting webhook server")

	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.WithField("event", "webhook_stopped").Info("webhook server stopped")
			return nil
		}

		return fmt.Errorf("webhook server listen: %w", err)
	}

	s.logger.WithField("event", "webhook_stopped").Info("webhook server stopped")
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *Server) handleUpdate(c *gin.Context) {
	// The response is 200 no matter what happens below; Telegram retries
	// non-200 deliveries and a broken handler must not cause a redelivery
	// storm.
	defer c.Status(http.StatusOK)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.WithField("event", "webhook_read_error").WithError(err).Warn("failed to read webhook body")
		return
	}

	var upd models.Update
	if err := sonic.Unmarshal(body, &upd); err != nil {
		s.logger.WithField("event", "webhook_decode_error").WithError(err).Warn("failed to decode webhook update")
		return
	}

	if err := s.router.Route(c.Request.Context(), s.client, &upd); err != nil {
		telegram.ReportFailure(s.logger, err)
	}
}

func (s *Server) handleProbe(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
