package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/segyhp/emi-tracker/internal/repository"
	"github.com/segyhp/emi-tracker/pkg/response"
)

type HealthHandler struct {
	store   repository.RecordStore
	backend string
	timeout time.Duration
}

func NewHealthHandler(store repository.RecordStore, backend string, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		store:   store,
		backend: backend,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready checks the record store is reachable
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		status.Status = "error"
		status.Checks[h.backend] = "failed: " + err.Error()
	} else {
		status.Checks[h.backend] = "ok"
	}

	if status.Status == "error" {
		response.ServiceUnavailable(w, status)
		return
	}

	response.Success(w, status)
}
