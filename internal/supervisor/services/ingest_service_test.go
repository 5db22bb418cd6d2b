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
)

type fakeConsumer struct {
	runErr  error
	block   bool
	started chan struct{}
	closed  atomic.Int32
}

func (f *fakeConsumer) Run(ctx context.Context) error {
	close(f.started)
	if f.block {
		<-ctx.Done()
		return nil
	}
	return f.runErr
}

func (f *fakeConsumer) Close() error {
	f.closed.Add(1)
	return nil
}

func TestIngestConsumerService(t *testing.T) {
	t.Parallel()

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()
		consumer := &fakeConsumer{block: true, started: make(chan struct{})}
		svc := NewIngestConsumerService(consumer)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		waitStarted(t, consumer.started)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return")
		}
		if consumer.closed.Load() != 1 {
			t.Errorf("Close calls = %d, want 1", consumer.closed.Load())
		}
	})

	t.Run("router failure is returned", func(t *testing.T) {
		t.Parallel()
		routerErr := errors.New("subscribe failed")
		svc := NewIngestConsumerService(&fakeConsumer{runErr: routerErr, started: make(chan struct{})})

		if err := svc.Serve(context.Background()); !errors.Is(err, routerErr) {
			t.Errorf("Serve() = %v, want %v", err, routerErr)
		}
	})

	t.Run("early clean exit is a failure", func(t *testing.T) {
		t.Parallel()
		svc := NewIngestConsumerService(&fakeConsumer{started: make(chan struct{})})

		if err := svc.Serve(context.Background()); err == nil {
			t.Error("Serve() = nil, want error so the supervisor restarts")
		}
	})
}
