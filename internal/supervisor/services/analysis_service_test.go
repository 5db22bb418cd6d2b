// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/horus/internal/detection"
)

type fakeTrigger struct {
	calls atomic.Int32
	err   error
}

func (f *fakeTrigger) Trigger(context.Context) (*detection.PassResult, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if n%2 == 0 {
		return nil, nil // queued
	}
	return &detection.PassResult{PassID: "p", Events: 3, Inserted: 1}, nil
}

func serveFor(t *testing.T, svc interface {
	Serve(context.Context) error
}, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestAnalysisScheduler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		interval   time.Duration
		runOnStart bool
		err        error
		minCalls   int32
		maxCalls   int32
	}{
		{name: "run on start", interval: time.Hour, runOnStart: true, minCalls: 1, maxCalls: 1},
		{name: "waits for first tick", interval: time.Hour, minCalls: 0, maxCalls: 0},
		{name: "ticks repeatedly", interval: 10 * time.Millisecond, minCalls: 3, maxCalls: 100},
		{name: "pass in progress keeps running", interval: 10 * time.Millisecond, err: detection.ErrPassInProgress, minCalls: 3, maxCalls: 100},
		{name: "failed pass keeps running", interval: 10 * time.Millisecond, err: detection.ErrStorageUnavailable, minCalls: 3, maxCalls: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			trigger := &fakeTrigger{err: tt.err}
			svc := NewAnalysisSchedulerService(trigger, tt.interval, tt.runOnStart)

			serveFor(t, svc, 100*time.Millisecond)

			calls := trigger.calls.Load()
			if calls < tt.minCalls || calls > tt.maxCalls {
				t.Errorf("Trigger calls = %d, want [%d, %d]", calls, tt.minCalls, tt.maxCalls)
			}
		})
	}
}

func TestNewAnalysisSchedulerService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewAnalysisSchedulerService(&fakeTrigger{}, 0, false)
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
	if svc.String() != "analysis-scheduler" {
		t.Errorf("String() = %q", svc.String())
	}
}
