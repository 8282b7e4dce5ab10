package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/crowdfund-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// ContextKeyRequestID is the key for the request id in gin context
	ContextKeyRequestID = "request_id"
	// HeaderRequestID carries the request id in both directions
	HeaderRequestID = "X-Request-ID"
)

var appLogger atomic.Pointer[slog.Logger]

// InitLogger initializes the structured logger. Records go to stdout and to
// a rotating app.log under cfg.Dir; an empty Dir logs to stdout only.
func InitLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var out io.Writer = os.Stdout

	if cfg.Dir != "" {
		// Get absolute path for log directory
		absLogDir, err := filepath.Abs(cfg.Dir)
		if err != nil {
			absLogDir = cfg.Dir
		}

		if err := os.MkdirAll(absLogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
		}

		appLogFile := &lumberjack.Logger{
			Filename:   filepath.Join(absLogDir, "app.log"),
			MaxSize:    10, // 10 MB
			MaxBackups: 30, // Keep 30 old files
			MaxAge:     30, // 30 days
			Compress:   true,
			LocalTime:  true,
		}
		out = io.MultiWriter(os.Stdout, appLogFile)
	}

	logger := NewLogger(out, cfg.Level, cfg.Format)
	SetLogger(logger)

	logger.Info("logger initialized", slog.String("dir", cfg.Dir), slog.String("level", cfg.Level))
	return logger, nil
}

// NewLogger builds a slog.Logger writing to w
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// SetLogger replaces the logger used by the middleware and slog's default
func SetLogger(logger *slog.Logger) {
	appLogger.Store(logger)
	slog.SetDefault(logger)
}

// Logger returns the application logger
func Logger() *slog.Logger {
	if l := appLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestLoggerMiddleware tags each request with an id and logs it on completion
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		// Build full URL
		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		// Process request
		c.Next()

		statusCode := c.Writer.Status()
		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("url", fullURL),
			slog.Int("status", statusCode),
			slog.Duration("latency", time.Since(startTime)),
		}
		if userID := GetUserID(c); userID != 0 {
			attrs = append(attrs, slog.Uint64("user_id", uint64(userID)))
		}

		if statusCode >= 400 {
			Logger().Error("request", attrs...)
		} else {
			Logger().Info("request", attrs...)
		}
	}
}

// GetRequestID gets the request id from the gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
