// Package facts resolves addresses into normalized property fact records.
package facts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// ErrUnresolvable is returned when an address cannot be matched to a
// property at all. The facade turns this into a conservative fallback
// result rather than surfacing an error to the caller.
var ErrUnresolvable = errors.New("address could not be resolved")

// Provider confidence levels. A fully resolved designation record carries no
// provider-side doubt; an unknown postcode means every flag defaulted to
// false, so the caller-visible confidence drops before the engine ever runs.
const (
	ResolvedConfidence = 99.8
	DegradedConfidence = 82.0
)

// Provider implements domain.FactProvider over a geocoder, the designation
// store, and an optional cache.
type Provider struct {
	geocoder domain.Geocoder
	repo     domain.Repository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewProvider creates a fact provider. The cache may be nil.
func NewProvider(geocoder domain.Geocoder, repo domain.Repository, cache domain.Cache, cacheTTL time.Duration) *Provider {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &Provider{
		geocoder: geocoder,
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Facts resolves the request into a fully populated fact record. Every
// constraint flag is present in the result; flags that could not be
// determined are false and the reported confidence is lowered instead.
func (p *Provider) Facts(ctx context.Context, req domain.CheckRequest) (*domain.FactsLookup, error) {
	if strings.TrimSpace(req.Address) == "" {
		return nil, fmt.Errorf("%w: empty address", ErrUnresolvable)
	}
	if p.geocoder == nil {
		return nil, fmt.Errorf("%w: no geocoder configured", ErrUnresolvable)
	}

	loc, err := p.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	lookup := &domain.FactsLookup{
		Facts: domain.PropertyFacts{
			Address:        req.Address,
			Postcode:       loc.Postcode,
			LocalAuthority: loc.LocalAuthority,
			PropertyType:   propertyType(req),
		},
		Confidence: DegradedConfidence,
	}

	record, err := p.designation(ctx, loc.Postcode)
	if err == nil && record != nil {
		lookup.Facts.Constraints = record.Flags
		lookup.Confidence = ResolvedConfidence
		if record.LocalAuthority != "" {
			lookup.Facts.LocalAuthority = record.LocalAuthority
		}
		if record.Coordinates != nil {
			lookup.Coordinates = record.Coordinates
		}
	} else if err != nil {
		// Constraint flags stay false: absence of evidence is not evidence
		// of restriction, only of reduced confidence.
		slog.Debug("designation lookup degraded",
			"postcode", loc.Postcode,
			"error", err,
		)
	}

	// Caller-supplied coordinates win over stored ones.
	if req.Lat != nil && req.Lng != nil {
		lookup.Coordinates = &domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	} else if lookup.Coordinates == nil {
		coords := loc.Coordinates
		if coords.Lat != 0 || coords.Lng != 0 {
			lookup.Coordinates = &coords
		}
	}

	return lookup, nil
}

// designation fetches the constraint record for a postcode: cache first,
// then the repository, populating the cache on a store hit.
func (p *Provider) designation(ctx context.Context, postcode string) (*domain.DesignationRecord, error) {
	if postcode == "" {
		return nil, fmt.Errorf("no postcode")
	}

	if p.cache != nil {
		record, err := p.cache.GetDesignation(ctx, postcode)
		if err == nil && record != nil {
			return record, nil
		}
	}

	if p.repo == nil {
		return nil, fmt.Errorf("no designation store")
	}

	record, err := p.repo.GetDesignation(ctx, postcode)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetDesignation(ctx, postcode, record, p.cacheTTL); err != nil {
			slog.Warn("failed to cache designation record",
				"postcode", postcode,
				"error", err,
			)
		}
	}

	return record, nil
}

// propertyType prefers the caller's explicit type and falls back to
// inferring one from the address text.
func propertyType(req domain.CheckRequest) domain.PropertyType {
	if req.PropertyType != "" {
		return req.PropertyType
	}
	return InferPropertyType(req.Address)
}

// InferPropertyType guesses the property type from address wording.
// Upstream sources rarely state the type explicitly, and the distinction
// matters: flats and maisonettes have no householder permitted development
// rights at all.
func InferPropertyType(address string) domain.PropertyType {
	lower := strings.ToLower(address)
	switch {
	case strings.Contains(lower, "maisonette"):
		return domain.PropertyMaisonette
	case strings.Contains(lower, "flat"), strings.Contains(lower, "apartment"):
		return domain.PropertyFlat
	case strings.Contains(lower, "unit "), strings.Contains(lower, "suite "):
		return domain.PropertyCommercial
	default:
		return domain.PropertyHouse
	}
}
