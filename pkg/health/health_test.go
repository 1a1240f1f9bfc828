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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(name string) CheckFunc {
	return func(ctx context.Context) CheckResult {
		return CheckResult{Name: name, Status: StatusHealthy}
	}
}

func TestRegisterCheck(t *testing.T) {
	c := NewChecker()
	assert.Empty(t, c.GetAllChecks())

	c.RegisterCheck("grpc", healthy("grpc"))
	c.RegisterCheck("listener", healthy("listener"))
	c.RegisterCheck("ignored", nil)
	assert.Equal(t, []string{"grpc", "listener"}, c.GetAllChecks())
}

func TestReady(t *testing.T) {
	ctx := context.Background()
	c := NewChecker()

	results := c.Ready(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, "node", results[0].Name)
	assert.False(t, c.IsHealthy(ctx), "not ready before MarkStarted")

	c.MarkStarted()
	assert.Empty(t, c.Ready(ctx))
	assert.True(t, c.IsHealthy(ctx))

	c.RegisterCheck("b", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "refused"}
	})
	c.RegisterCheck("a", healthy("a"))

	results = c.Ready(ctx)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, "b", results[1].Name, "name filled in from registration")
	assert.False(t, c.IsHealthy(ctx))

	c.MarkNotStarted()
	results = c.Ready(ctx)
	require.Len(t, results, 3)
	assert.Equal(t, "node", results[0].Name)
}

func TestStartup(t *testing.T) {
	c := NewChecker()
	assert.Equal(t, StatusUnhealthy, c.Startup(context.Background()).Status)
	assert.False(t, c.IsStarted())

	c.MarkStarted()
	assert.True(t, c.IsStarted())
	assert.Equal(t, StatusHealthy, c.Startup(context.Background()).Status)

	c.MarkNotStarted()
	assert.Equal(t, StatusUnhealthy, c.Startup(context.Background()).Status)
}

func TestLiveAndUptime(t *testing.T) {
	c := NewChecker()
	assert.Equal(t, StatusHealthy, c.Live(context.Background()).Status)
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, c.Uptime(), time.Duration(0))
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"unhealthy wins", []Status{StatusHealthy, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
		{"unknown status", []Status{StatusHealthy, Status("stale")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = CheckResult{Status: s}
			}
			assert.Equal(t, tt.want, AggregateStatus(results))
		})
	}
}

func TestWithTimeout(t *testing.T) {
	ok := WithTimeout("store", time.Second, func(ctx context.Context) error { return nil })
	assert.Equal(t, StatusHealthy, ok(context.Background()).Status)

	failing := WithTimeout("store", time.Second, func(ctx context.Context) error { return errors.New("locked") })
	res := failing(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "locked", res.Error)

	slow := WithTimeout("store", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	res = slow(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "timeout", res.Error)
}

func TestConcurrency(t *testing.T) {
	c := NewChecker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.RegisterCheck("check", healthy("check"))
		}()
		go func() {
			defer wg.Done()
			_ = c.Ready(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"check"}, c.GetAllChecks())
}

func TestRouter(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("grpc", healthy("grpc"))
	router := Router(c)

	get := func(path string) (int, Response) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec.Code, resp
	}

	tests := []struct {
		path    string
		started bool
		code    int
		want    Status
	}{
		{"/live", false, http.StatusOK, StatusHealthy},
		{"/ready", false, http.StatusServiceUnavailable, StatusUnhealthy},
		{"/startup", false, http.StatusServiceUnavailable, StatusUnhealthy},
		{"/", true, http.StatusOK, StatusHealthy},
		{"/ready", true, http.StatusOK, StatusHealthy},
		{"/startup", true, http.StatusOK, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s started=%t", tt.path, tt.started), func(t *testing.T) {
			if tt.started {
				c.MarkStarted()
			} else {
				c.MarkNotStarted()
			}
			code, resp := get(tt.path)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.want, resp.Status)
			assert.NotEmpty(t, resp.Checks)
		})
	}

	c.MarkStarted()
	c.RegisterCheck("grpc", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "not serving"}
	})
	code, _ := get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
