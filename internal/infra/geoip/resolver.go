package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"rainbowrise/internal/domain"
)

var (
	// ErrUnavailable is returned when the resolver is not initialized.
	ErrUnavailable = errors.New("geoip resolver unavailable")
	// ErrNoLocation is returned when the database has no coordinates for an address.
	ErrNoLocation = errors.New("geoip: no location for address")
)

// Locator resolves approximate coordinates from IP addresses.
type Locator interface {
	Locate(ip string) (domain.Coordinates, error)
}

// Resolver provides city lookups backed by a MaxMind GeoIP2/GeoLite2 City database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. When the path is empty, nil is returned.
func NewResolver(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Locate returns the city-level coordinates recorded for ip.
func (r *Resolver) Locate(ip string) (domain.Coordinates, error) {
	if r == nil || r.reader == nil {
		return domain.Coordinates{}, ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return domain.Coordinates{}, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.City(parsed)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geoip: lookup city: %w", err)
	}
	if record == nil || (record.Location.Latitude == 0 && record.Location.Longitude == 0) {
		return domain.Coordinates{}, ErrNoLocation
	}
	return domain.Coordinates{Latitude: record.Location.Latitude, Longitude: record.Location.Longitude}, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
