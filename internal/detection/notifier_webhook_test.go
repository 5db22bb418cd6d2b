// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/horus/internal/models"
)

func testAnomaly() models.Anomaly {
	from, to := at(0), at(7*time.Second)
	return models.Anomaly{
		ID:       models.AnomalyID(models.KindBruteForce, from, to, "/login"),
		From:     from,
		To:       to,
		Endpoint: "/login",
		Hits:     10,
		Severity: models.SeverityHigh,
		Kind:     models.KindBruteForce,
	}
}

func TestNewWebhookNotifier(t *testing.T) {
	t.Parallel()

	notifier := NewWebhookNotifier(WebhookConfig{
		WebhookURL:  "https://example.com/webhook",
		Headers:     map[string]string{"Authorization": "Bearer token"},
		Enabled:     true,
		RateLimitMs: 500,
	})

	if notifier.Name() != "webhook" {
		t.Errorf("Name() = %q, want %q", notifier.Name(), "webhook")
	}
	if !notifier.Enabled() {
		t.Error("notifier should be enabled")
	}
	if notifier.client.Timeout != 10*time.Second {
		t.Errorf("client timeout = %v, want 10s", notifier.client.Timeout)
	}
}

func TestWebhookNotifier_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   WebhookConfig
		expected bool
	}{
		{"enabled with URL", WebhookConfig{WebhookURL: "https://example.com/webhook", Enabled: true}, true},
		{"disabled", WebhookConfig{WebhookURL: "https://example.com/webhook"}, false},
		{"enabled but no URL", WebhookConfig{Enabled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewWebhookNotifier(tt.config).Enabled(); got != tt.expected {
				t.Errorf("Enabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWebhookNotifier_SetEnabledAndURL(t *testing.T) {
	t.Parallel()

	notifier := NewWebhookNotifier(WebhookConfig{WebhookURL: "https://example.com/old", Enabled: true})

	notifier.SetEnabled(false)
	if notifier.Enabled() {
		t.Error("should be disabled after SetEnabled(false)")
	}
	notifier.SetEnabled(true)
	notifier.SetWebhookURL("https://example.com/new")
	if notifier.webhookURL != "https://example.com/new" {
		t.Errorf("webhookURL = %q", notifier.webhookURL)
	}
}

func TestWebhookNotifier_NotifyDisabled(t *testing.T) {
	t.Parallel()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookConfig{WebhookURL: server.URL})
	if err := notifier.Notify(context.Background(), []models.Anomaly{testAnomaly()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Error("disabled notifier should not send")
	}
}

func TestWebhookNotifier_NotifySuccess(t *testing.T) {
	t.Parallel()

	var (
		received WebhookPayload
		headers  http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookConfig{
		WebhookURL: server.URL,
		Headers:    map[string]string{"Authorization": "Bearer test-token"},
		Enabled:    true,
	})
	notifier.now = fixedClock(at(time.Minute))

	anomaly := testAnomaly()
	if err := notifier.Notify(context.Background(), []models.Anomaly{anomaly}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", headers.Get("Content-Type"))
	}
	if headers.Get("Authorization") != "Bearer test-token" {
		t.Errorf("Authorization = %q", headers.Get("Authorization"))
	}
	if received.EventType != "anomaly_detected" || received.Source != "horus" {
		t.Errorf("payload envelope = %s/%s", received.EventType, received.Source)
	}
	if !received.Timestamp.Equal(at(time.Minute)) {
		t.Errorf("Timestamp = %v", received.Timestamp)
	}
	if len(received.Anomalies) != 1 || received.Anomalies[0].ID != anomaly.ID {
		t.Errorf("anomalies = %+v", received.Anomalies)
	}
}

func TestWebhookNotifier_NotifyErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookConfig{WebhookURL: server.URL, Enabled: true})
	if err := notifier.Notify(context.Background(), []models.Anomaly{testAnomaly()}); err == nil {
		t.Error("expected error for 502 response")
	}
}

func TestWebhookNotifier_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookConfig{WebhookURL: server.URL, Enabled: true, RateLimitMs: 60000})
	if err := notifier.Notify(context.Background(), []models.Anomaly{testAnomaly()}); err != nil {
		t.Fatalf("first Notify() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := notifier.Notify(ctx, []models.Anomaly{testAnomaly()}); err == nil {
		t.Error("second Notify() inside the rate limit should fail on the context")
	}
}
