package log

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HTTPLogEntry represents an HTTP request/response log entry
type HTTPLogEntry struct {
	Method     string
	Path       string
	Query      string
	Status     int
	Duration   time.Duration
	Size       int
	RemoteAddr string
	UserAgent  string
}

// level is Debug for successful requests, Info for client errors and Error
// for server errors.
func (e HTTPLogEntry) level() zapcore.Level {
	switch {
	case e.Status >= 500:
		return zapcore.ErrorLevel
	case e.Status >= 400:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LogHTTPRequest writes an access log entry for one request
func LogHTTPRequest(e HTTPLogEntry) {
	logger := GetZapLogger()
	if ce := logger.Check(e.level(), "http request"); ce != nil {
		ce.Write(
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.String("query", e.Query),
			zap.Int("status", e.Status),
			zap.Duration("duration", e.Duration),
			zap.Int("size", e.Size),
			zap.String("remote_addr", e.RemoteAddr),
			zap.String("user_agent", e.UserAgent),
		)
	}
}
