// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/horus/internal/logging"
)

func serveWithRequestID(t *testing.T, header string) (responseID, contextID, loggingID string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = GetRequestID(r.Context())
		loggingID = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec.Header().Get(RequestIDHeader), contextID, loggingID
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()

	responseID, contextID, loggingID := serveWithRequestID(t, "")

	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("response X-Request-ID %q is not a UUID: %v", responseID, err)
	}
	if contextID != responseID {
		t.Errorf("context ID = %q, want %q", contextID, responseID)
	}
	if loggingID != responseID {
		t.Errorf("logging context ID = %q, want %q", loggingID, responseID)
	}
}

func TestRequestID_PreservesUpstreamID(t *testing.T) {
	t.Parallel()

	const upstream = "nginx-7f3a9c"
	responseID, contextID, loggingID := serveWithRequestID(t, upstream)

	if responseID != upstream || contextID != upstream || loggingID != upstream {
		t.Errorf("IDs = (%q, %q, %q), want %q everywhere", responseID, contextID, loggingID, upstream)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _, _ := serveWithRequestID(t, "")
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"missing", context.Background(), ""},
		{"present", context.WithValue(context.Background(), RequestIDKey, "abc"), "abc"},
		{"wrong type", context.WithValue(context.Background(), RequestIDKey, 42), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetRequestID(tt.ctx); got != tt.want {
				t.Errorf("GetRequestID() = %q, want %q", got, tt.want)
			}
		})
	}
}
