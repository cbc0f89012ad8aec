package app

import (
	"github.com/gorilla/mux"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Branches
	r.HandleFunc("/api/branches", deps.BranchHandler.ListBranches).Methods("GET")
	r.HandleFunc("/api/branches", deps.BranchHandler.CreateBranch).Methods("POST")

	// Branch timings
	r.HandleFunc("/api/branches/{branchId}/timings", deps.TimingHandler.GetTimings).Methods("GET")
	r.HandleFunc("/api/branches/{branchId}/timings/weekly/{index}", deps.TimingHandler.ChangeWeekday).Methods("PUT")
	r.HandleFunc("/api/branches/{branchId}/timings/overrides", deps.TimingHandler.AddOverride).Methods("POST")
	r.HandleFunc("/api/branches/{branchId}/timings/overrides/{overrideId}", deps.TimingHandler.ChangeOverride).Methods("PATCH")
	r.HandleFunc("/api/branches/{branchId}/timings/overrides/{overrideId}", deps.TimingHandler.DeleteOverride).Methods("DELETE")
	r.HandleFunc("/api/branches/{branchId}/timings/save", deps.TimingHandler.SaveTimings).Methods("POST")
	r.HandleFunc("/api/branches/{branchId}/hours", deps.TimingHandler.GetHours).Methods("GET")

	// Operations
	r.HandleFunc("/healthz", deps.Health.Healthz).Methods("GET")
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
}
