// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package simulator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/netip"
	"os"
)

// ErrUnsupportedCountry is returned for a country code without a GeoNames
// mapping.
var ErrUnsupportedCountry = errors.New("unsupported country code")

// countryGeoNameIDs maps ISO country codes to the GeoNames IDs used in the
// geoname_id column of GeoLite2 block files.
var countryGeoNameIDs = map[string]string{
	"RU": "2017370",
	"CN": "1814991",
	"BR": "3469034",
	"IR": "130758",
	"AF": "1149361",
}

// SuspiciousCountries are the countries the SuspiciousCountry campaign
// sources its traffic from.
var SuspiciousCountries = []string{"RU", "CN", "BR", "IR", "AF"}

// GeoIP samples source addresses from a GeoLite2 blocks CSV. The zero value
// and a nil *GeoIP are usable and produce random public IPv4 addresses.
type GeoIP struct {
	networks  []netip.Prefix
	byGeoName map[string][]int
}

// LoadGeoIP reads a GeoLite2-City-Blocks-IPv4 style CSV from path.
func LoadGeoIP(path string) (*GeoIP, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip csv: %w", err)
	}
	defer f.Close()
	return ReadGeoIP(f)
}

// ReadGeoIP parses a blocks CSV. The header must name a network and a
// geoname_id column; rows with an unparsable network are skipped.
func ReadGeoIP(r io.Reader) (*GeoIP, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read geoip header: %w", err)
	}
	networkIdx, geoNameIdx := -1, -1
	for i, col := range header {
		switch col {
		case "network":
			networkIdx = i
		case "geoname_id":
			geoNameIdx = i
		}
	}
	if networkIdx < 0 || geoNameIdx < 0 {
		return nil, errors.New("geoip csv: network and geoname_id columns are required")
	}

	g := &GeoIP{byGeoName: make(map[string][]int)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read geoip row: %w", err)
		}
		if len(rec) <= networkIdx || len(rec) <= geoNameIdx {
			continue
		}
		prefix, err := netip.ParsePrefix(rec[networkIdx])
		if err != nil || !prefix.Addr().Is4() {
			continue
		}
		g.byGeoName[rec[geoNameIdx]] = append(g.byGeoName[rec[geoNameIdx]], len(g.networks))
		g.networks = append(g.networks, prefix)
	}
	if len(g.networks) == 0 {
		return nil, errors.New("geoip csv: no IPv4 networks")
	}
	return g, nil
}

// Len returns the number of loaded networks.
func (g *GeoIP) Len() int {
	if g == nil {
		return 0
	}
	return len(g.networks)
}

// RandomIP returns the network address of a random block.
func (g *GeoIP) RandomIP(rng *rand.Rand) string {
	if g.Len() == 0 {
		return RandomPublicIPv4(rng)
	}
	return g.networks[rng.IntN(len(g.networks))].Addr().String()
}

// RandomIPByCountry returns the network address of a random block in
// country. When the file has no block for it, a random public address is
// returned instead.
func (g *GeoIP) RandomIPByCountry(rng *rand.Rand, country string) (string, error) {
	id, ok := countryGeoNameIDs[country]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCountry, country)
	}
	if g == nil {
		return RandomPublicIPv4(rng), nil
	}
	rows := g.byGeoName[id]
	if len(rows) == 0 {
		return RandomPublicIPv4(rng), nil
	}
	return g.networks[rows[rng.IntN(len(rows))]].Addr().String(), nil
}

// RandomPublicIPv4 returns a random globally routable unicast IPv4 address.
func RandomPublicIPv4(rng *rand.Rand) string {
	for {
		v := rng.Uint32()
		addr := netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		if isPublic(addr) {
			return addr.String()
		}
	}
}

var nonPublic = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

func isPublic(addr netip.Addr) bool {
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, p := range nonPublic {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}
