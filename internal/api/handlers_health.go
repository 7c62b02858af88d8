// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status    string  `json:"status"`
	Version   string  `json:"version,omitempty"`
	Books     int     `json:"books"`
	Items     int     `json:"items"`
	Analytics string  `json:"analytics"`
	Uptime    float64 `json:"uptime_seconds"`
}

// HealthLive reports that the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]string{"status": "alive"})
}

// HealthReady reports 200 once the catalog and recommendation matrix are
// built and the analytics store, when enabled, answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ready",
		Version:   h.cfg.Version,
		Books:     h.catalog.Len(),
		Items:     h.engine.Status().Items,
		Analytics: "disabled",
		Uptime:    time.Since(h.started).Seconds(),
	}

	ready := status.Books > 0 && status.Items > 0
	if h.store != nil {
		status.Analytics = "ok"
		if err := h.store.Ping(r.Context()); err != nil {
			status.Analytics = "unavailable"
			ready = false
		}
	}

	if !ready {
		status.Status = "not_ready"
		respondErrorWithData(w, r, http.StatusServiceUnavailable, CodeNotReady, "Service is not ready", nil, status)
		return
	}
	respondSuccess(w, r, status)
}
