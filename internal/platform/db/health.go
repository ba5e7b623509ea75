package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// Pinger is any store that can verify its connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider is implemented by stores backed by a pgx pool.
type StatsProvider interface {
	Stats() *PoolStats
}

// HealthResponse is the body of the database health endpoint.
type HealthResponse struct {
	Status  string     `json:"status"`
	Backend string     `json:"backend"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// HealthHandler returns a handler for the database health check endpoint.
// Connection errors are not echoed to the caller.
func HealthHandler(store Pinger, backend string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := store.Ping(ctx)
		resp := HealthResponse{Status: "healthy", Backend: backend}
		if sp, ok := store.(StatsProvider); ok {
			resp.Pool = sp.Stats()
		}

		if err != nil {
			resp.Status = "unhealthy"
			if resp.Pool != nil {
				resp.Pool.Healthy = false
			}
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}
