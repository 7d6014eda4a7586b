package facts

import (
	"context"
	"testing"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

func TestExtractPostcode(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"10 Downing Street, London SW1A 2AA", "SW1A 2AA"},
		{"10 Downing Street, London sw1a2aa", "SW1A 2AA"},
		{"Flat 3, 22 High Street, Manchester M1 1AE", "M1 1AE"},
		{"1 Main Road, Leeds LS27 0HL", "LS27 0HL"},
		{"no postcode in this address", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ExtractPostcode(tc.address); got != tc.want {
			t.Errorf("ExtractPostcode(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}

func TestStaticGeocoder(t *testing.T) {
	geocoder := NewStaticGeocoder(map[string]domain.Location{
		"SW1A 1AA": {
			Postcode:       "SW1A 1AA",
			LocalAuthority: "City of Westminster",
			Coordinates:    domain.Coordinates{Lat: 51.501, Lng: -0.1416},
		},
	})

	loc, err := geocoder.Geocode(context.Background(), "Buckingham Palace, London SW1A 1AA")
	if err != nil {
		t.Fatalf("geocode failed: %v", err)
	}
	if loc.LocalAuthority != "City of Westminster" {
		t.Errorf("unexpected local authority: %s", loc.LocalAuthority)
	}

	if _, err := geocoder.Geocode(context.Background(), "1 Elsewhere Road, EH1 1AA"); err == nil {
		t.Error("expected an error for an unknown postcode")
	}

	if _, err := geocoder.Geocode(context.Background(), "no postcode here"); err == nil {
		t.Error("expected an error for an address without a postcode")
	}
}

func TestInferPropertyType(t *testing.T) {
	cases := []struct {
		address string
		want    domain.PropertyType
	}{
		{"Flat 2, 10 Park Road, London SW1A 1AA", domain.PropertyFlat},
		{"Apartment 5, The Mill, Leeds LS1 4AB", domain.PropertyFlat},
		{"The Maisonette, 3 Hill Street, Bath BA1 1AA", domain.PropertyMaisonette},
		{"Unit 7, Riverside Business Park, M1 1AE", domain.PropertyCommercial},
		{"42 Acacia Avenue, Manchester M1 1AE", domain.PropertyHouse},
	}

	for _, tc := range cases {
		if got := InferPropertyType(tc.address); got != tc.want {
			t.Errorf("InferPropertyType(%q) = %s, want %s", tc.address, got, tc.want)
		}
	}
}
