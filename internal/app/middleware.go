package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/pkg/timing"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Use(requestLogging)
	r.Use(editorSession)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}

// editorSession propagates the X-Editor-Session header into the context
func editorSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		if session := req.Header.Get(timing.SessionHeader); session != "" {
			ctx = timing.WithSession(ctx, session)
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
