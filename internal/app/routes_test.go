package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/event_bus"
	"github.com/libradesk/libradesk/internal/utils"
	"github.com/libradesk/libradesk/pkg/branch"
	"github.com/libradesk/libradesk/pkg/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter wires the real handlers over in-memory repositories.
func setupRouter(t *testing.T, checks ...HealthCheck) *mux.Router {
	t.Helper()
	deps := &Dependencies{
		EventBus: event_bus.NewEventBus(),
		Clock:    &utils.SystemClock{},
	}
	deps.BranchRepo = branch.NewRepositoryStub()
	deps.BranchService = branch.NewService(deps.BranchRepo, deps.EventBus)
	deps.BranchHandler = branch.NewHandler(deps.BranchService)
	deps.TimingRepo = timing.NewRepositoryStub()
	deps.TimingService = timing.NewService(deps.TimingRepo, deps.BranchService, deps.EventBus, false)
	deps.TimingRegistry = timing.NewRegistry(deps.TimingService, deps.BranchService, deps.Clock, nil, deps.EventBus)
	deps.TimingHandler = timing.NewHandler(deps.TimingRegistry, deps.TimingService)
	deps.Health = NewHealthHandler(checks...)

	cfg := config.Application{}
	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)
	return r
}

func serve(r http.Handler, method string, target string, body string, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if session != "" {
		req.Header.Set(timing.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	t.Run("should edit and save branch hours end to end", func(t *testing.T) {
		// given
		r := setupRouter(t)
		w := serve(r, http.MethodPost, "/api/branches", `{"name":"Central","address":"1 Main St"}`, "")
		require.Equal(t, http.StatusCreated, w.Code)

		// when
		w = serve(r, http.MethodPut, "/api/branches/1/timings/weekly/6", `{"isClosed":true}`, "desk-1")
		require.Equal(t, http.StatusOK, w.Code)
		w = serve(r, http.MethodPost, "/api/branches/1/timings/overrides", "", "desk-1")
		require.Equal(t, http.StatusCreated, w.Code)
		w = serve(r, http.MethodPost, "/api/branches/1/timings/save", "", "desk-1")

		// then
		require.Equal(t, http.StatusOK, w.Code)
		var state timing.BranchTimingStateDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
		assert.False(t, state.Dirty)
		assert.True(t, state.Timings.Weekly[6].IsClosed)
		assert.Len(t, state.Timings.Overrides, 1)
	})

	t.Run("should keep unsaved edits per editor session", func(t *testing.T) {
		r := setupRouter(t)
		serve(r, http.MethodPost, "/api/branches", `{"name":"Central"}`, "")
		serve(r, http.MethodPut, "/api/branches/1/timings/weekly/0", `{"open":"06:00"}`, "desk-1")

		w := serve(r, http.MethodGet, "/api/branches/1/timings", "", "desk-2")

		require.Equal(t, http.StatusOK, w.Code)
		var state timing.BranchTimingStateDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
		assert.False(t, state.Dirty)
		assert.Equal(t, "09:00", state.Timings.Weekly[0].Open)
	})

	t.Run("should reject unsupported method", func(t *testing.T) {
		r := setupRouter(t)

		w := serve(r, http.MethodDelete, "/api/branches", "", "")

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("should report health", func(t *testing.T) {
		r := setupRouter(t, HealthCheck{Name: "database", Ping: func(ctx context.Context) error { return nil }})

		w := serve(r, http.MethodGet, "/healthz", "", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should report failing dependency", func(t *testing.T) {
		r := setupRouter(t,
			HealthCheck{Name: "database", Ping: func(ctx context.Context) error { return nil }},
			HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("connection refused") }},
		)

		w := serve(r, http.MethodGet, "/healthz", "", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "redis not ready")
	})
}
