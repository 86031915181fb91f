package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"arena/internal/dto"
	"arena/internal/httpio"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	db      Pinger
	logger  *zap.Logger
	timeout time.Duration
}

func NewController(db Pinger, logger *zap.Logger) *Controller {
	return &Controller{
		db:      db,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

func (c *Controller) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{OK: true, Timestamp: time.Now().UTC(), DB: "connected"}
	status := http.StatusOK

	if err := c.ping(r.Context()); err != nil {
		c.logger.Warn("database ping failed", zap.Error(err))
		resp.OK = false
		resp.DB = "error"
		resp.DBMessage = err.Error()
		status = http.StatusServiceUnavailable
	}

	httpio.WriteJSON(w, status, resp, c.logger)
}

func (c *Controller) Database(w http.ResponseWriter, r *http.Request) {
	if err := c.ping(r.Context()); err != nil {
		c.logger.Error("database ping failed", zap.Error(err))
		httpio.WriteJSON(w, http.StatusInternalServerError, dto.DBStatusResponse{DB: "error", Message: err.Error()}, c.logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.DBStatusResponse{DB: "connected"}, c.logger)
}
