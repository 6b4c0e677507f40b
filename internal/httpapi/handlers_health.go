package httpapi

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts a go-redis client, whose Ping returns a command.
type RedisPinger func(ctx context.Context) error

func (f RedisPinger) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	DB    Pinger
	Redis Pinger
}

type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
	Time   string `json:"time"`
}

// Get Health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status: "ok",
		DB:     probe(ctx, h.DB),
		Redis:  probe(ctx, h.Redis),
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if resp.DB == "down" || resp.Redis == "down" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
