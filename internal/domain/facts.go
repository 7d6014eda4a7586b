package domain

import (
	"context"
	"time"
)

// FactProvider resolves an address into a fully populated fact record.
//
// Contract: any designation that cannot be determined is reported as false,
// never omitted, and the provider lowers its reported confidence instead of
// failing. An error is returned only when the address cannot be matched to a
// property at all, in which case the facade substitutes a conservative
// fallback result.
type FactProvider interface {
	Facts(ctx context.Context, req CheckRequest) (*FactsLookup, error)
}

// FactsLookup is the provider's best-effort answer for one property.
type FactsLookup struct {
	Facts       PropertyFacts `json:"facts"`
	Coordinates *Coordinates  `json:"coordinates,omitempty"`

	// Confidence is the provider's own reliability estimate for the facts,
	// blended by the facade with the engine's score (minimum of the two).
	Confidence float64 `json:"confidence"`
}

// Location is a geocoding result.
type Location struct {
	Coordinates    Coordinates
	Postcode       string
	LocalAuthority string
}

// Geocoder resolves a free-text address to a location. Implementations live
// at the adapter boundary; the core never calls one directly.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// DesignationRecord holds the constraint flags on file for a postcode.
type DesignationRecord struct {
	Postcode       string          `json:"postcode"`
	LocalAuthority string          `json:"localAuthority"`
	Coordinates    *Coordinates    `json:"coordinates,omitempty"`
	Flags          ConstraintFlags `json:"flags"`

	// Source names the dataset the record came from (e.g. "planning-data-gov").
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
}
