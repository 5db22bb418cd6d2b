// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/horus/internal/ingest"
	"github.com/tomtom215/horus/internal/simulator"
)

// execute runs the root command. Commands re-initialise the global logger,
// so tests that call it do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_BackfillCombined(t *testing.T) {
	out, err := execute(t, "--batches", "2", "--seed", "9", "--format", "combined",
		"--campaign-chance", "0", "--start", "2026-03-14T09:00:00Z", "--log-level", "disabled")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Two quiet batches of 40-69 events each.
	if len(lines) < 80 || len(lines) > 138 {
		t.Fatalf("lines = %d, want 80..138", len(lines))
	}
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, line := range lines {
		e, err := ingest.ParseLine(line)
		if err != nil {
			t.Fatalf("line %d does not parse: %v", i+1, err)
		}
		if e.Timestamp.Before(start) || !e.Timestamp.Before(start.Add(time.Minute)) {
			t.Errorf("line %d timestamp %v outside the two batch windows", i+1, e.Timestamp)
		}
	}
}

func TestRootCommand_SeedIsReproducible(t *testing.T) {
	args := []string{"-n", "3", "--seed", "42", "--start", "2026-03-14T09:00:00Z", "--log-level", "disabled"}
	first, err := execute(t, args...)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	second, err := execute(t, args...)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if first == "" || first != second {
		t.Error("same seed and start produced different output")
	}
}

func TestRootCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"endless backfill", []string{"--batches", "0"}, "requires --interval"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
		{"unknown campaign", []string{"--campaigns", "DDoS,Meteor"}, "Meteor"},
		{"unknown output", []string{"--output", "kafka"}, "kafka"},
		{"unknown format", []string{"--format", "xml"}, "xml"},
		{"bad start", []string{"--start", "yesterday"}, "--start"},
		{"bad log level", []string{"--log-level", "loud"}, "loud"},
		{"positional argument", []string{"extra"}, "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("Execute() succeeded, want an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCampaignsCommand(t *testing.T) {
	out, err := execute(t, "campaigns", "--log-level", "disabled")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got := strings.Fields(out)
	if len(got) != len(simulator.AllCampaigns) {
		t.Fatalf("campaigns = %v", got)
	}
	for i, c := range simulator.AllCampaigns {
		if got[i] != string(c) {
			t.Errorf("campaign %d = %s, want %s", i, got[i], c)
		}
	}
}

func TestGeneratorConfig(t *testing.T) {
	t.Parallel()

	o := &options{window: 10 * time.Second, chance: 0.5, seed: 3, campaigns: []string{"DDoS", "Bot"}}
	cfg, err := o.generatorConfig()
	if err != nil {
		t.Fatalf("generatorConfig() error = %v", err)
	}
	if len(cfg.Campaigns) != 2 || cfg.Campaigns[0] != simulator.CampaignDDoS || cfg.Campaigns[1] != simulator.CampaignBot {
		t.Errorf("Campaigns = %v", cfg.Campaigns)
	}
	if cfg.BatchWindow != 10*time.Second || cfg.StartChance != 0.5 || cfg.Seed != 3 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestSinkSelection(t *testing.T) {
	t.Parallel()

	for _, output := range []string{"stdout", "http"} {
		o := &options{output: output, format: simulator.FormatCombined, url: "http://localhost:1/api/v1/log"}
		if _, err := o.sink(io.Discard); err != nil {
			t.Errorf("sink(%s) error = %v", output, err)
		}
	}
}
