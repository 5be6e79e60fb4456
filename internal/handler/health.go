package handler

import (
	"context"
	"net/http"
	"time"

	"systmix/internal/connectivity"
	"systmix/internal/infra"
	"systmix/internal/remote"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports the bridge's own health: the local mirror must be usable
// for the bridge to work at all; remote reachability is informational (the
// whole point is surviving without it).
func Health(db *gorm.DB, rem remote.API, monitor *connectivity.Monitor, breaker *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		localStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			localStatus = "error"
		}

		remoteStatus := "reachable"
		if err := rem.Health(ctx); err != nil {
			remoteStatus = "unreachable"
		}

		status := http.StatusOK
		if localStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":              status == http.StatusOK,
			"local_db":        localStatus,
			"remote":          remoteStatus,
			"online":          monitor.IsOnline(),
			"circuit_breaker": breaker.State().String(),
		})
	}
}
