package logger

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// New builds the service logger from the log_config section. format is
// either "json" or "console".
func New(level, format string) (*zap.SugaredLogger, error) {
	logLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var config zap.Config
	if format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = logLevel

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return log.Sugar(), nil
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{w, http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Infow("request handled",
				"method", r.Method,
				"uri", r.RequestURI,
				"status", wrapped.statusCode,
				"duration", time.Since(start),
			)
		})
	}
}
