package handler

import (
	"context"
	"net/http"
	"time"

	"steelpricing/internal/infra"
	"steelpricing/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the FX circuit breaker state;
// never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, fx *infra.FXClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		// Informational only: an open breaker or parked jobs degrade a
		// feature, the core API stays healthy.
		deadJobs := int64(0)
		for _, q := range []string{worker.QueueHistoryExport, worker.QueueEmail} {
			if n, err := worker.DeadJobCount(ctx, rdb, q); err == nil {
				deadJobs += n
			}
		}

		c.JSON(status, gin.H{
			"ok":         status == http.StatusOK,
			"db":         dbStatus,
			"redis":      redisStatus,
			"fx_breaker": fx.BreakerState().String(),
			"dead_jobs":  deadJobs,
		})
	}
}
