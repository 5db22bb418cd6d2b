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

	"github.com/tomtom215/horus/internal/wal"
)

type fakeRecoverer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRecoverer) Recover(context.Context) (*wal.RecoveryResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &wal.RecoveryResult{TotalPending: 2, Recovered: 1, Skipped: 1}, nil
}

func TestWALRecoveryService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval time.Duration
		err      error
		minCalls int32
		maxCalls int32
	}{
		{name: "recovers on start", interval: time.Hour, minCalls: 1, maxCalls: 1},
		{name: "recovers every interval", interval: 10 * time.Millisecond, minCalls: 3, maxCalls: 100},
		{name: "errors do not stop the loop", interval: 10 * time.Millisecond, err: errors.New("badger closed"), minCalls: 3, maxCalls: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &fakeRecoverer{err: tt.err}
			serveFor(t, NewWALRecoveryService(rec, tt.interval), 100*time.Millisecond)

			calls := rec.calls.Load()
			if calls < tt.minCalls || calls > tt.maxCalls {
				t.Errorf("Recover calls = %d, want [%d, %d]", calls, tt.minCalls, tt.maxCalls)
			}
		})
	}
}

func TestNewWALRecoveryService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewWALRecoveryService(&fakeRecoverer{}, 0)
	if svc.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", svc.interval)
	}
	if svc.String() != "wal-recovery" {
		t.Errorf("String() = %q", svc.String())
	}
}
