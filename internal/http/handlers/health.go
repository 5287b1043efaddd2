package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

type depStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status string      `json:"status"`
	Deps   []depStatus `json:"deps"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Deps: make([]depStatus, 0, len(a.Checks))}
	code := http.StatusOK
	for _, check := range a.Checks {
		dep := depStatus{Name: check.Name, Status: "ok"}
		if err := check.Ping(ctx); err != nil {
			dep.Status = "down"
			dep.Message = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		resp.Deps = append(resp.Deps, dep)
	}
	a.json(w, code, resp)
}
