package facts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// ukPostcode matches a UK postcode anywhere in an address line.
var ukPostcode = regexp.MustCompile(`(?i)\b([A-Z]{1,2}[0-9][A-Z0-9]?)\s*([0-9][A-Z]{2})\b`)

// ExtractPostcode pulls a normalized UK postcode ("SW1A 1AA") out of a
// free-text address, or returns an empty string.
func ExtractPostcode(address string) string {
	m := ukPostcode.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1]) + " " + strings.ToUpper(m[2])
}

// PostcodeGeocoder resolves addresses by extracting the postcode and looking
// it up in the designation store. It stands in for an external geocoding
// service: the Geocoder interface is the seam where one would be wired.
type PostcodeGeocoder struct {
	repo domain.Repository
}

// NewPostcodeGeocoder creates a store-backed geocoder.
func NewPostcodeGeocoder(repo domain.Repository) *PostcodeGeocoder {
	return &PostcodeGeocoder{repo: repo}
}

// Geocode resolves an address to its postcode and, when the designation
// store knows the postcode, its local authority and coordinates.
func (g *PostcodeGeocoder) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	postcode := ExtractPostcode(address)
	if postcode == "" {
		return nil, fmt.Errorf("no postcode in address %q", address)
	}

	loc := &domain.Location{Postcode: postcode}

	if g.repo != nil {
		record, err := g.repo.GetDesignation(ctx, postcode)
		if err == nil {
			loc.LocalAuthority = record.LocalAuthority
			if record.Coordinates != nil {
				loc.Coordinates = *record.Coordinates
			}
		}
	}

	return loc, nil
}

// StaticGeocoder serves a fixed table of locations keyed by postcode.
// Used in tests and as a small-deployment alternative to a live service.
type StaticGeocoder struct {
	locations map[string]domain.Location
}

// NewStaticGeocoder creates a geocoder over a fixed location table.
func NewStaticGeocoder(locations map[string]domain.Location) *StaticGeocoder {
	return &StaticGeocoder{locations: locations}
}

// Geocode looks up the address's postcode in the fixed table.
func (g *StaticGeocoder) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	postcode := ExtractPostcode(address)
	if postcode == "" {
		return nil, fmt.Errorf("no postcode in address %q", address)
	}
	loc, ok := g.locations[postcode]
	if !ok {
		return nil, fmt.Errorf("unknown postcode %s", postcode)
	}
	return &loc, nil
}
