// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-quorum.
//
// go-quorum is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Response is the JSON body served by the probe endpoints.
type Response struct {
	Status Status        `json:"status"`
	Uptime string        `json:"uptime"`
	Checks []CheckResult `json:"checks"`
}

// Router serves the probes:
//
//	GET /         readiness summary
//	GET /live     liveness
//	GET /ready    readiness
//	GET /startup  startup
//
// Unhealthy results are served with 503.
func Router(c *Checker) chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.serveReady)
	r.Get("/ready", c.serveReady)
	r.Get("/live", func(w http.ResponseWriter, req *http.Request) {
		c.write(w, []CheckResult{c.Live(req.Context())})
	})
	r.Get("/startup", func(w http.ResponseWriter, req *http.Request) {
		c.write(w, []CheckResult{c.Startup(req.Context())})
	})
	return r
}

func (c *Checker) serveReady(w http.ResponseWriter, req *http.Request) {
	c.write(w, c.Ready(req.Context()))
}

func (c *Checker) write(w http.ResponseWriter, results []CheckResult) {
	resp := Response{
		Status: AggregateStatus(results),
		Uptime: c.Uptime().Round(time.Second).String(),
		Checks: results,
	}

	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
