package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"petshop-api/pkg/logger"
	"petshop-api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health serves liveness and readiness probes.
type Health struct {
	DB    *sql.DB
	Redis redis.Cmdable

	Timeout time.Duration
}

func (h Health) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until both Postgres and Redis answer a ping.
func (h Health) Ready(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	checks := gin.H{}
	ready := true

	if h.DB != nil {
		if err := utils.HealthCheck(c.Request.Context(), h.DB, timeout); err != nil {
			logger.FromGin(c).Warn("readiness: postgres unavailable", "err", err)
			checks["postgres"] = "unavailable"
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		err := h.Redis.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.FromGin(c).Warn("readiness: redis unavailable", "err", err)
			checks["redis"] = "unavailable"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
