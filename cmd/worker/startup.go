package main

import (
	"net/http"

	"shop-backend/pkg/logger"
)

// startHealthCheckServer exposes liveness/readiness probes for the
// worker process, which has no API port of its own.
func startHealthCheckServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"UP","service":"shop-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"READY"}`))
	})

	logger.Info("worker health endpoint starting", map[string]interface{}{
		"port": 9999,
	})
	if err := http.ListenAndServe(":9999", mux); err != nil {
		logger.Error("worker health endpoint failed", err)
	}
}
