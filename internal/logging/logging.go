package logging

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dailyyield/apiserver/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// New builds the process logger from config. Output goes to stderr.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	return newWithOutput(cfg, os.Stderr)
}

func newWithOutput(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}

// RequestLogger logs one entry per request. It must run after middleware.RequestID.
func RequestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"remote":     r.RemoteAddr,
			})
			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("request completed")
			case status >= http.StatusBadRequest:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
		})
	}
}
