// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package simulator

import (
	"errors"
	"math/rand/v2"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const blocksCSV = `network,geoname_id,registered_country_geoname_id,represented_country_geoname_id
5.8.0.0/19,2017370,2017370,
5.9.0.0/16,2017370,2017370,
36.0.0.0/14,1814991,1814991,
2001:db8::/32,1814991,1814991,
not-a-network,1814991,1814991,
81.2.69.0/24,2635167,2635167,
`

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestReadGeoIP(t *testing.T) {
	t.Parallel()

	g, err := ReadGeoIP(strings.NewReader(blocksCSV))
	if err != nil {
		t.Fatalf("ReadGeoIP() error = %v", err)
	}
	if g.Len() != 4 {
		t.Errorf("Len() = %d, want 4 IPv4 networks", g.Len())
	}

	rng := testRNG()
	ru := map[string]bool{"5.8.0.0": true, "5.9.0.0": true}
	for range 20 {
		ip, err := g.RandomIPByCountry(rng, "RU")
		if err != nil {
			t.Fatalf("RandomIPByCountry(RU) error = %v", err)
		}
		if !ru[ip] {
			t.Fatalf("RandomIPByCountry(RU) = %s, not a RU block", ip)
		}
	}

	if ip, _ := g.RandomIPByCountry(rng, "CN"); ip != "36.0.0.0" {
		t.Errorf("RandomIPByCountry(CN) = %s, want the only IPv4 CN block", ip)
	}

	// No BR rows: falls back to public address space.
	ip, err := g.RandomIPByCountry(rng, "BR")
	if err != nil {
		t.Fatalf("RandomIPByCountry(BR) error = %v", err)
	}
	if !isPublic(netip.MustParseAddr(ip)) {
		t.Errorf("fallback %s is not public", ip)
	}

	if _, err := g.RandomIPByCountry(rng, "US"); !errors.Is(err, ErrUnsupportedCountry) {
		t.Errorf("RandomIPByCountry(US) error = %v, want ErrUnsupportedCountry", err)
	}
}

func TestReadGeoIP_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":            "",
		"missing network":  "geoname_id\n2017370\n",
		"missing geoname":  "network\n5.8.0.0/19\n",
		"no ipv4 networks": "network,geoname_id\n2001:db8::/32,1\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadGeoIP(strings.NewReader(input)); err == nil {
				t.Error("ReadGeoIP() succeeded")
			}
		})
	}
}

func TestLoadGeoIP(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "GeoLite2-City-Blocks-IPv4.csv")
	if err := os.WriteFile(path, []byte(blocksCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGeoIP(path)
	if err != nil {
		t.Fatalf("LoadGeoIP() error = %v", err)
	}
	if g.Len() != 4 {
		t.Errorf("Len() = %d", g.Len())
	}

	if _, err := LoadGeoIP(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("LoadGeoIP(missing) succeeded")
	}
}

func TestNilGeoIP(t *testing.T) {
	t.Parallel()

	var g *GeoIP
	rng := testRNG()
	if ip := g.RandomIP(rng); !isPublic(netip.MustParseAddr(ip)) {
		t.Errorf("RandomIP() = %s, not public", ip)
	}
	if ip, err := g.RandomIPByCountry(rng, "IR"); err != nil || !isPublic(netip.MustParseAddr(ip)) {
		t.Errorf("RandomIPByCountry(IR) = %s, %v", ip, err)
	}
}

func TestIsPublic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"81.2.69.160", true},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"127.0.0.1", false},
		{"169.254.1.1", false},
		{"100.64.0.1", false},
		{"224.0.0.1", false},
		{"0.1.2.3", false},
		{"198.51.100.7", false},
		{"255.255.255.255", false},
	}
	for _, tt := range tests {
		if got := isPublic(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("isPublic(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}

	rng := testRNG()
	for range 1000 {
		if ip := RandomPublicIPv4(rng); !isPublic(netip.MustParseAddr(ip)) {
			t.Fatalf("RandomPublicIPv4() = %s", ip)
		}
	}
}
