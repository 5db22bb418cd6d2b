// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package wal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type testBatch struct {
	IDs []string `json:"ids"`
}

func createTestConfig(t *testing.T, onDisk bool) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SyncWrites = false
	cfg.MaxRetries = 3
	cfg.EntryTTL = time.Hour
	cfg.CloseTimeout = 10 * time.Second
	cfg.Path = ""
	if onDisk {
		cfg.Path = filepath.Join(t.TempDir(), "wal")
	}
	return cfg
}

func openTestWAL(t *testing.T) *BadgerWAL {
	t.Helper()
	cfg := createTestConfig(t, false)
	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "MaxRetries"},
		{"short ttl", func(c *Config) { c.EntryTTL = time.Second }, "EntryTTL"},
		{"tiny memtable", func(c *Config) { c.MemTableSize = 1024 }, "MemTableSize"},
		{"bad gc ratio", func(c *Config) { c.GCRatio = 1 }, "GCRatio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("Validate() = %v, want ConfigError on %s", err, tt.field)
			}
		})
	}
}

func TestWriteConfirmLifecycle(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, testBatch{IDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("pending = %+v, want entry %s", pending, id)
	}
	var got testBatch
	if err := pending[0].UnmarshalPayload(&got); err != nil {
		t.Fatalf("UnmarshalPayload: %v", err)
	}
	if len(got.IDs) != 2 || got.IDs[1] != "b" {
		t.Errorf("payload = %+v", got)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := w.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Confirm = %v, want ErrEntryNotFound", err)
	}

	stats := w.Stats()
	if stats.PendingCount != 0 || stats.ConfirmedCount != 1 {
		t.Errorf("stats = %+v, want 0 pending / 1 confirmed", stats)
	}
	if stats.TotalWrites != 1 || stats.TotalConfirms != 1 {
		t.Errorf("counters = %+v", stats)
	}

	removed, err := w.Compact()
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if removed != 1 {
		t.Errorf("Compact removed %d, want 1", removed)
	}
	if stats := w.Stats(); stats.ConfirmedCount != 0 {
		t.Errorf("confirmed after compaction = %d, want 0", stats.ConfirmedCount)
	}
}

func TestWriteRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t)
	ctx := context.Background()

	if _, err := w.Write(ctx, nil); !errors.Is(err, ErrNilEvent) {
		t.Errorf("Write(nil) = %v, want ErrNilEvent", err)
	}
	if err := w.Confirm(ctx, ""); !errors.Is(err, ErrEmptyEntryID) {
		t.Errorf("Confirm(\"\") = %v, want ErrEmptyEntryID", err)
	}
}

func TestClosedWAL(t *testing.T) {
	t.Parallel()
	cfg := createTestConfig(t, false)
	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if _, err := w.Write(context.Background(), testBatch{}); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Write after close = %v, want ErrWALClosed", err)
	}
	if stats := w.Stats(); stats != (Stats{}) {
		t.Errorf("Stats after close = %+v, want zero", stats)
	}
}

func TestPendingSurvivesReopen(t *testing.T) {
	t.Parallel()
	cfg := createTestConfig(t, true)
	ctx := context.Background()

	w, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := w.Write(ctx, testBatch{IDs: []string{"x"}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	w, err = Open(&cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = w.Close() }()

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Errorf("pending after reopen = %+v, want %s", pending, id)
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	ids  []string
	fail error
}

func (p *recordingPublisher) PublishEntry(_ context.Context, entry *Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.ids = append(p.ids, entry.ID)
	return nil
}

func TestRecoverPending(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t)
	ctx := context.Background()

	first, _ := w.Write(ctx, testBatch{IDs: []string{"1"}})
	second, _ := w.Write(ctx, testBatch{IDs: []string{"2"}})
	if err := w.Confirm(ctx, second); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	pub := &recordingPublisher{}
	result, err := w.RecoverPending(ctx, pub, 0)
	if err != nil {
		t.Fatalf("RecoverPending: %v", err)
	}
	if result.TotalPending != 1 || result.Recovered != 1 {
		t.Errorf("result = %+v, want 1 pending / 1 recovered", result)
	}
	if len(pub.ids) != 1 || pub.ids[0] != first {
		t.Errorf("published = %v, want [%s]", pub.ids, first)
	}

	// Publishing does not confirm; the entry is still pending.
	pending, _ := w.GetPending(ctx)
	if len(pending) != 1 {
		t.Errorf("pending after recovery = %d, want 1", len(pending))
	}
}

func TestRecoverPendingSkipsYoungEntries(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t)
	ctx := context.Background()

	if _, err := w.Write(ctx, testBatch{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	pub := &recordingPublisher{}
	result, err := w.RecoverPending(ctx, pub, time.Hour)
	if err != nil {
		t.Fatalf("RecoverPending: %v", err)
	}
	if result.Skipped != 1 || len(pub.ids) != 0 {
		t.Errorf("result = %+v, published = %v; want one skipped entry", result, pub.ids)
	}
}

func TestRecoverPendingDropsAfterMaxRetries(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t)
	ctx := context.Background()

	id, _ := w.Write(ctx, testBatch{})
	pub := &recordingPublisher{fail: errors.New("bus down")}

	// MaxRetries is 3: three failed attempts, then the entry is dropped.
	for i := 0; i < 3; i++ {
		result, err := w.RecoverPending(ctx, pub, 0)
		if err != nil {
			t.Fatalf("RecoverPending #%d: %v", i, err)
		}
		if result.Failed != 1 {
			t.Fatalf("attempt %d: result = %+v", i, result)
		}
	}
	pending, _ := w.GetPending(ctx)
	if len(pending) != 1 || pending[0].Attempts != 3 || pending[0].LastError != "bus down" {
		t.Fatalf("pending = %+v, want entry %s with 3 attempts", pending, id)
	}

	if _, err := w.RecoverPending(ctx, pub, 0); err != nil {
		t.Fatalf("RecoverPending: %v", err)
	}
	pending, _ = w.GetPending(ctx)
	if len(pending) != 0 {
		t.Errorf("pending after max retries = %d, want 0", len(pending))
	}
}

func TestRecoverPendingNilPublisher(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t)
	if _, err := w.RecoverPending(context.Background(), nil, 0); err == nil {
		t.Error("RecoverPending(nil) should fail")
	}
}
