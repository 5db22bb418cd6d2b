// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func validEvent() models.Event {
	return models.Event{
		SourceIP:      "203.0.113.7",
		Timestamp:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Method:        "POST",
		Endpoint:      "/login",
		Protocol:      "HTTP/1.1",
		StatusCode:    401,
		BytesSent:     512,
		UserAgent:     "Mozilla/5.0",
		RequestLength: 300,
	}
}

func TestValidateStruct_Event(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*models.Event)
		wantField string
		wantTag   string
	}{
		{"valid", func(*models.Event) {}, "", ""},
		{"ipv6 source", func(e *models.Event) { e.SourceIP = "2001:db8::1" }, "", ""},
		{"missing source", func(e *models.Event) { e.SourceIP = "" }, "source_ip", "required"},
		{"bad source", func(e *models.Event) { e.SourceIP = "not-an-ip" }, "source_ip", "ip"},
		{"zero timestamp", func(e *models.Event) { e.Timestamp = time.Time{} }, "timestamp", "required"},
		{"unknown method", func(e *models.Event) { e.Method = "BREW" }, "method", "http_method"},
		{"missing endpoint", func(e *models.Event) { e.Endpoint = "" }, "endpoint", "required"},
		{"status too low", func(e *models.Event) { e.StatusCode = 42 }, "status_code", "min"},
		{"status too high", func(e *models.Event) { e.StatusCode = 600 }, "status_code", "max"},
		{"negative bytes", func(e *models.Event) { e.BytesSent = -1 }, "bytes_sent", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := validEvent()
			tt.modify(&e)

			err := ValidateStruct(&e)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, fe := range err.Errors() {
				if fe.Field() == tt.wantField && fe.Tag() == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on %s/%s, got: %v", tt.wantField, tt.wantTag, err.Errors())
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	t.Parallel()

	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name    string
		from    *time.Time
		to      *time.Time
		wantErr bool
	}{
		{"both nil", nil, nil, false},
		{"only from", &early, nil, false},
		{"only to", nil, &late, false},
		{"ordered", &early, &late, false},
		{"equal", &early, &early, false},
		{"reversed", &late, &early, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRange(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRange() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				fe := err.Errors()[0]
				if fe.Field() != "to" || fe.Tag() != "after_from" {
					t.Errorf("error = %s/%s, want to/after_from", fe.Field(), fe.Tag())
				}
				if !strings.Contains(err.Error(), "must not be before from") {
					t.Errorf("message = %q", err.Error())
				}
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Endpoint = ""
	verr := ValidateStruct(&e)
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "endpoint is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "endpoint" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Endpoint = ""
	e.Method = "BREW"
	verr := ValidateStruct(&e)
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details = %v, want two fields", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "endpoint is required") ||
		!strings.Contains(apiErr.Message, "method must be a valid HTTP method") {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestRequestValidationError_EmptyMessage(t *testing.T) {
	t.Parallel()

	verr := &RequestValidationError{}
	if verr.Error() != "validation failed" {
		t.Errorf("Error() = %q", verr.Error())
	}
	if verr.ToAPIError().Message != "Validation failed" {
		t.Errorf("ToAPIError().Message = %q", verr.ToAPIError().Message)
	}
}
