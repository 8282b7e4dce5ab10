package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// HealthHandler reports process and database health
type HealthHandler struct {
	db    *gorm.DB
	build BuildInfo
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, build BuildInfo) *HealthHandler {
	return &HealthHandler{db: db, build: build}
}

// Health pings the database and reports build info
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "ok"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		database = err.Error()
	}

	c.JSON(code, gin.H{
		"status":     status,
		"database":   database,
		"version":    h.build.Version,
		"commit":     h.build.Commit,
		"build_time": h.build.BuildTime,
		"time":       time.Now().Unix(),
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
