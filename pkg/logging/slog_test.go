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

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-quorum/pkg/correlation"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogAdapter(&SlogConfig{Level: LevelInfo, Format: "json", Output: &buf})

	log.Debug("hidden")
	log.With(String("node_id", "node-50051")).Info("share stored",
		String("ceremony_id", "ceremony-001"),
		Uint32("assigned_index", 3),
		Error(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "share stored", entry["msg"])
	assert.Equal(t, "node-50051", entry["node_id"])
	assert.Equal(t, "ceremony-001", entry["ceremony_id"])
	assert.Equal(t, float64(3), entry["assigned_index"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSlogAdapter_Context(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogAdapter(&SlogConfig{Level: LevelDebug, Output: &buf})

	ctx := correlation.WithCorrelationID(context.Background(), "trace-1")
	InfoContext(ctx, log, "join", String("node_id", "n1"))
	assert.Contains(t, buf.String(), "correlation_id=trace-1")
	assert.Contains(t, buf.String(), "node_id=n1")

	buf.Reset()
	log.DebugContext(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "correlation_id")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestContextHelpersFallBack(t *testing.T) {
	ctx := correlation.WithCorrelationID(context.Background(), "x")
	log := Nop()

	assert.NotPanics(t, func() {
		DebugContext(ctx, log, "debug")
		InfoContext(ctx, log, "info")
		WarnContext(ctx, log, "warn")
		ErrorContext(ctx, log, "error")
		log.With(String("k", "v")).Info("child")
	})
}
