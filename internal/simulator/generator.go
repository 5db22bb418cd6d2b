// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package simulator

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/models"
)

// Campaign is a kind of injected attack traffic.
type Campaign string

// Campaigns.
const (
	CampaignDDoS                Campaign = "DDoS"
	CampaignHighUniqueEndpoints Campaign = "HighUniqueEndpoints"
	CampaignBruteForce          Campaign = "BruteForce"
	CampaignLargePost           Campaign = "LargePost"
	CampaignLargeDownload       Campaign = "LargeDownload"
	CampaignSuspiciousCountry   Campaign = "SuspiciousCountry"
	CampaignBot                 Campaign = "Bot"
)

// AllCampaigns lists every campaign in a fixed order.
var AllCampaigns = []Campaign{
	CampaignDDoS,
	CampaignHighUniqueEndpoints,
	CampaignBruteForce,
	CampaignLargePost,
	CampaignLargeDownload,
	CampaignSuspiciousCountry,
	CampaignBot,
}

// BotUserAgent is the user agent of the Bot campaign.
const BotUserAgent = "BotAgent/1.0"

// ParseCampaign returns the campaign named s.
func ParseCampaign(s string) (Campaign, error) {
	for _, c := range AllCampaigns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown campaign %q", s)
}

// Config controls the generator.
type Config struct {
	// BatchWindow is the span one batch's timestamps are spread over.
	BatchWindow time.Duration

	// MinNormal and MaxNormal bound the normal events per batch; the count
	// is drawn from [MinNormal, MaxNormal).
	MinNormal int
	MaxNormal int

	// StartChance is the probability per batch that a new campaign starts.
	StartChance float64

	// Campaigns restricts which campaigns may start. Empty means all.
	Campaigns []Campaign

	// Seed makes the output reproducible. Zero seeds from the clock.
	Seed uint64
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		BatchWindow: 30 * time.Second,
		MinNormal:   40,
		MaxNormal:   70,
		StartChance: 0.15,
	}
}

// ActiveCampaign is a campaign in progress. It persists across batches
// until it stops.
type ActiveCampaign struct {
	Campaign        Campaign
	SourceIP        string
	StopProbability float64
	Since           time.Time
}

// Generator produces batches of synthetic access-log events. It is not safe
// for concurrent use.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	geo    *GeoIP
	active []ActiveCampaign
}

// NewGenerator returns a generator. geo may be nil.
func NewGenerator(cfg Config, geo *GeoIP) *Generator {
	def := DefaultConfig()
	if cfg.BatchWindow <= 0 {
		cfg.BatchWindow = def.BatchWindow
	}
	if cfg.MaxNormal <= cfg.MinNormal {
		cfg.MinNormal, cfg.MaxNormal = def.MinNormal, def.MaxNormal
	}
	if len(cfg.Campaigns) == 0 {
		cfg.Campaigns = AllCampaigns
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		geo: geo,
	}
}

// Active returns the campaigns currently in progress.
func (g *Generator) Active() []ActiveCampaign {
	return slices.Clone(g.active)
}

// Start begins campaign c now unless it is already active.
func (g *Generator) Start(c Campaign, now time.Time) ActiveCampaign {
	for _, a := range g.active {
		if a.Campaign == c {
			return a
		}
	}
	a := ActiveCampaign{
		Campaign:        c,
		SourceIP:        g.sourceIP(c),
		StopProbability: stopProbability(c),
		Since:           now,
	}
	g.active = append(g.active, a)
	logging.Info().Str("campaign", string(c)).Str("source_ip", a.SourceIP).Msg("Campaign started")
	return a
}

// Batch advances the campaign lifecycle and returns one batch of events
// with timestamps in [start, start+BatchWindow), ordered by time. Events
// carry no ID; ingestion assigns one.
func (g *Generator) Batch(start time.Time) []models.Event {
	g.stopCampaigns(start)
	if len(g.active) < len(g.cfg.Campaigns) && g.rng.Float64() < g.cfg.StartChance {
		g.startRandom(start)
	}

	// A running bot needs a quiet tail to look periodic.
	normalSpan := g.cfg.BatchWindow
	if g.isActive(CampaignBot) {
		normalSpan /= 2
	}

	n := g.between(g.cfg.MinNormal, g.cfg.MaxNormal)
	events := make([]models.Event, 0, n+64)
	for range n {
		events = append(events, g.normal(start.Add(g.offset(normalSpan))))
	}
	for _, a := range g.active {
		events = append(events, g.campaignTraffic(a, start)...)
	}

	slices.SortStableFunc(events, func(a, b models.Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	for i := range events {
		events[i].Message = events[i].FormatMessage()
	}
	return events
}

// stopCampaigns ends campaigns by their stop probability. A campaign
// started at or after start has not produced a batch yet and keeps running.
func (g *Generator) stopCampaigns(start time.Time) {
	g.active = slices.DeleteFunc(g.active, func(a ActiveCampaign) bool {
		if !a.Since.Before(start) {
			return false
		}
		if g.rng.Float64() < a.StopProbability {
			logging.Info().Str("campaign", string(a.Campaign)).Str("source_ip", a.SourceIP).Msg("Campaign stopped")
			return true
		}
		return false
	})
}

func (g *Generator) startRandom(now time.Time) {
	var idle []Campaign
	for _, c := range g.cfg.Campaigns {
		if !g.isActive(c) {
			idle = append(idle, c)
		}
	}
	if len(idle) > 0 {
		g.Start(idle[g.rng.IntN(len(idle))], now)
	}
}

func (g *Generator) isActive(c Campaign) bool {
	return slices.ContainsFunc(g.active, func(a ActiveCampaign) bool { return a.Campaign == c })
}

func (g *Generator) sourceIP(c Campaign) string {
	if c == CampaignSuspiciousCountry {
		country := SuspiciousCountries[g.rng.IntN(len(SuspiciousCountries))]
		if ip, err := g.geo.RandomIPByCountry(g.rng, country); err == nil {
			return ip
		}
	}
	return g.geo.RandomIP(g.rng)
}

func stopProbability(c Campaign) float64 {
	switch c {
	case CampaignDDoS:
		return 0.20
	case CampaignLargeDownload:
		return 0.50
	default:
		return 0.30
	}
}

func (g *Generator) normal(ts time.Time) models.Event {
	return models.Event{
		SourceIP:      g.geo.RandomIP(g.rng),
		User:          g.user(),
		Timestamp:     ts,
		Method:        pick(g.rng, methods),
		Endpoint:      pick(g.rng, endpoints),
		Protocol:      "HTTP/1.1",
		StatusCode:    g.status(),
		BytesSent:     int64(g.between(500, 20000)),
		Referer:       g.referer(),
		UserAgent:     pick(g.rng, userAgents),
		RequestLength: int64(g.between(200, 2000)),
	}
}

// campaignTraffic renders one batch worth of attack traffic for a.
func (g *Generator) campaignTraffic(a ActiveCampaign, start time.Time) []models.Event {
	var out []models.Event
	add := func(n int, span time.Duration, fill func(e *models.Event)) {
		for range n {
			e := g.normal(start.Add(g.offset(span)))
			e.SourceIP = a.SourceIP
			fill(&e)
			out = append(out, e)
		}
	}

	window := g.cfg.BatchWindow
	switch a.Campaign {
	case CampaignDDoS:
		add(50, window/6, func(e *models.Event) {
			e.StatusCode = 200
			if g.rng.Float64() < 0.1 {
				e.StatusCode = 404
			}
			e.BytesSent = int64(g.between(500, 5000))
			e.RequestLength = int64(g.between(300, 500))
		})
	case CampaignHighUniqueEndpoints:
		add(30, window, func(e *models.Event) {
			e.Method = "GET"
			e.Endpoint = fmt.Sprintf("/secure/%d", g.between(1, 500))
			e.StatusCode = 401
			if g.rng.Float64() >= 0.5 {
				e.StatusCode = 403
			}
			e.BytesSent = int64(g.between(500, 1500))
			e.RequestLength = int64(g.between(200, 600))
		})
	case CampaignBruteForce:
		add(20, window/5, func(e *models.Event) {
			e.Method = "POST"
			e.Endpoint = "/admin"
			if g.rng.IntN(2) == 0 {
				e.Endpoint = "/login"
			}
			e.StatusCode = 401
			if g.rng.Float64() >= 0.7 {
				e.StatusCode = 403
			}
			e.BytesSent = int64(g.between(300, 800))
			e.RequestLength = int64(g.between(500, 2000))
		})
	case CampaignLargePost:
		add(10, window, func(e *models.Event) {
			e.Method = "POST"
			e.Endpoint = "/upload/data"
			e.StatusCode = 200
			e.BytesSent = int64(g.between(1000, 5000))
			e.RequestLength = int64(g.between(2_000_001, 4_000_000))
		})
	case CampaignLargeDownload:
		add(10, window, func(e *models.Event) {
			e.Method = "GET"
			e.Endpoint = fmt.Sprintf("/files/hugefile-%d.bin", g.rng.IntN(1000))
			e.StatusCode = 200
			e.BytesSent = int64(g.between(10_000_001, 20_000_000))
			e.RequestLength = int64(g.between(300, 800))
		})
	case CampaignSuspiciousCountry:
		add(30, window, func(e *models.Event) {
			e.RequestLength = int64(g.between(300, 2000))
		})
	case CampaignBot:
		out = g.botTraffic(a, start)
	}
	return out
}

// botTraffic emits evenly spaced requests over the second half of the batch
// window, one per second, from a single client.
func (g *Generator) botTraffic(a ActiveCampaign, start time.Time) []models.Event {
	half := g.cfg.BatchWindow / 2
	n := int(half / time.Second)
	endpoint := pick(g.rng, endpoints)

	out := make([]models.Event, 0, n)
	for i := range n {
		out = append(out, models.Event{
			SourceIP:      a.SourceIP,
			Timestamp:     start.Add(half + time.Duration(i)*time.Second),
			Method:        "GET",
			Endpoint:      endpoint,
			Protocol:      "HTTP/1.1",
			StatusCode:    200,
			BytesSent:     int64(g.between(500, 2000)),
			UserAgent:     BotUserAgent,
			RequestLength: 250,
		})
	}
	return out
}

var (
	methods    = []string{"GET", "POST", "PUT", "DELETE"}
	endpoints  = []string{"/home", "/products", "/api/items", "/contact", "/about"}
	referers   = []string{"https://www.google.com", "https://www.bing.com", "https://example.com/home", "https://mysite.com/landing"}
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		"curl/7.64.1",
		"PostmanRuntime/7.28.4",
	}
	users = []string{"alice", "bob", "charlie", "david", ""}
)

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

// between returns an int in [lo, hi).
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo)
}

// offset returns a millisecond-aligned duration in [0, span).
func (g *Generator) offset(span time.Duration) time.Duration {
	ms := int64(span / time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return time.Duration(g.rng.Int64N(ms)) * time.Millisecond
}

// status is 200 80% of the time, otherwise mostly 404 with some 500s.
func (g *Generator) status() int {
	switch {
	case g.rng.Float64() < 0.8:
		return 200
	case g.rng.Float64() < 0.9:
		return 404
	default:
		return 500
	}
}

func (g *Generator) referer() string {
	if g.rng.Float64() < 0.2 {
		return ""
	}
	return pick(g.rng, referers)
}

func (g *Generator) user() string {
	return pick(g.rng, users)
}
