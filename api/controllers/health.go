package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/storegrid/storegrid-backend/api/responses"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController exposes liveness and readiness probes.
type HealthController struct {
	db    Pinger
	redis Pinger
	logg  *logger.Logger
}

func NewHealthController(db, redis Pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, logg: logg}
}

func (c *HealthController) Live(w http.ResponseWriter, _ *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"db": "ok", "redis": "ok"}

	if err := c.db.Ping(ctx); err != nil {
		checks["db"] = err.Error()
	}
	if err := c.redis.Ping(ctx); err != nil {
		checks["redis"] = err.Error()
	}

	if checks["db"] != "ok" || checks["redis"] != "ok" {
		err := pkgerrors.New(pkgerrors.CodeDependency, "a dependency is unavailable").WithDetails(checks)
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, checks)
}
