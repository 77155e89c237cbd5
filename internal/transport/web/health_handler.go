package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status    string            `json:"status"` // "ok" or "error"
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Jobs      []string          `json:"jobs,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
}

var startTime = time.Now()

// HealthCheck handles the /health endpoint / Sonde de vivacité
// It always answers 200 while the process serves requests and never touches
// the database. Use /readiness for dependency checks.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    formatUptime(time.Since(startTime)),
	})
}

// ReadinessCheck handles the /readiness endpoint / Sonde de disponibilité
// Returns 503 when the database cannot be queried.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": h.checkDatabase(r.Context())}

	var scheduled []string
	if s := h.container.Scheduler; s != nil {
		scheduled = s.Jobs()
		checks["scheduler"] = "ok"
	} else {
		checks["scheduler"] = "disabled"
	}

	status, code := "ok", http.StatusOK
	if checks["database"] != "ok" {
		status, code = "error", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
		Jobs:      scheduled,
	})
}

// checkDatabase pings the database and refreshes the connection gauge.
func (h *Handler) checkDatabase(parent context.Context) string {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	var one int
	if err := h.container.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return "error"
	}
	h.container.UpdateDatabaseMetrics()
	return "ok"
}

// formatUptime renders d with its two or three most significant units,
// e.g. "1d 5h 23m", "2h 15m 30s" or "45s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	units := []struct {
		v int
		u string
	}{
		{days, "d"},
		{int(d.Hours()) % 24, "h"},
		{int(d.Minutes()) % 60, "m"},
		{int(d.Seconds()) % 60, "s"},
	}
	if days > 0 {
		units = units[:3]
	}

	parts := make([]string, 0, len(units))
	for _, unit := range units {
		if unit.v > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", unit.v, unit.u))
		}
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
