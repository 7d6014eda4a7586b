package facts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/cache"
	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// stubRepo serves a fixed designation table; only the designation methods
// are exercised by the provider.
type stubRepo struct {
	domain.Repository
	records map[string]*domain.DesignationRecord
	calls   int
}

func (r *stubRepo) GetDesignation(ctx context.Context, postcode string) (*domain.DesignationRecord, error) {
	r.calls++
	record, ok := r.records[postcode]
	if !ok {
		return nil, errors.New("not found")
	}
	return record, nil
}

func testGeocoder() domain.Geocoder {
	return NewStaticGeocoder(map[string]domain.Location{
		"SW1A 1AA": {Postcode: "SW1A 1AA", LocalAuthority: "City of Westminster"},
		"M1 1AE":   {Postcode: "M1 1AE", LocalAuthority: "Manchester"},
	})
}

func TestProviderResolvedFacts(t *testing.T) {
	repo := &stubRepo{records: map[string]*domain.DesignationRecord{
		"SW1A 1AA": {
			Postcode:       "SW1A 1AA",
			LocalAuthority: "City of Westminster",
			Flags:          domain.ConstraintFlags{ConservationArea: true, ListedBuilding: true},
		},
	}}
	provider := NewProvider(testGeocoder(), repo, nil, time.Minute)

	lookup, err := provider.Facts(context.Background(), domain.CheckRequest{
		Address: "Buckingham Palace, London SW1A 1AA",
	})
	if err != nil {
		t.Fatalf("facts failed: %v", err)
	}

	if lookup.Confidence != ResolvedConfidence {
		t.Errorf("expected resolved confidence %.1f, got %.1f", ResolvedConfidence, lookup.Confidence)
	}
	if !lookup.Facts.Constraints.ConservationArea || !lookup.Facts.Constraints.ListedBuilding {
		t.Errorf("expected designation flags to be set: %+v", lookup.Facts.Constraints)
	}
	if lookup.Facts.PropertyType != domain.PropertyHouse {
		t.Errorf("expected inferred house, got %s", lookup.Facts.PropertyType)
	}
}

func TestProviderDegradesOnUnknownPostcode(t *testing.T) {
	repo := &stubRepo{records: map[string]*domain.DesignationRecord{}}
	provider := NewProvider(testGeocoder(), repo, nil, time.Minute)

	lookup, err := provider.Facts(context.Background(), domain.CheckRequest{
		Address: "5 Deansgate, Manchester M1 1AE",
	})
	if err != nil {
		t.Fatalf("facts failed: %v", err)
	}

	if lookup.Confidence != DegradedConfidence {
		t.Errorf("expected degraded confidence %.1f, got %.1f", DegradedConfidence, lookup.Confidence)
	}
	// Missing designation data means false flags, never an error.
	if lookup.Facts.Constraints != (domain.ConstraintFlags{}) {
		t.Errorf("expected all flags false, got %+v", lookup.Facts.Constraints)
	}
}

func TestProviderUnresolvableAddress(t *testing.T) {
	provider := NewProvider(testGeocoder(), &stubRepo{}, nil, time.Minute)

	_, err := provider.Facts(context.Background(), domain.CheckRequest{Address: "no postcode here"})
	if !errors.Is(err, ErrUnresolvable) {
		t.Errorf("expected ErrUnresolvable, got %v", err)
	}

	_, err = provider.Facts(context.Background(), domain.CheckRequest{Address: "   "})
	if !errors.Is(err, ErrUnresolvable) {
		t.Errorf("expected ErrUnresolvable for empty address, got %v", err)
	}
}

func TestProviderUsesCache(t *testing.T) {
	repo := &stubRepo{records: map[string]*domain.DesignationRecord{
		"SW1A 1AA": {Postcode: "SW1A 1AA", Flags: domain.ConstraintFlags{WorldHeritage: true}},
	}}
	lru := cache.NewLRUCache(10)
	provider := NewProvider(testGeocoder(), repo, lru, time.Minute)

	req := domain.CheckRequest{Address: "1 The Mall, London SW1A 1AA"}

	if _, err := provider.Facts(context.Background(), req); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	before := repo.calls

	lookup, err := provider.Facts(context.Background(), req)
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}

	// The geocoder path may hit the repo; the designation path must not.
	if repo.calls > before+1 {
		t.Errorf("expected cached designation, repo calls went %d -> %d", before, repo.calls)
	}
	if !lookup.Facts.Constraints.WorldHeritage {
		t.Error("expected cached flags to match the stored record")
	}
}

func TestProviderCallerCoordinatesWin(t *testing.T) {
	repo := &stubRepo{records: map[string]*domain.DesignationRecord{
		"SW1A 1AA": {
			Postcode:    "SW1A 1AA",
			Coordinates: &domain.Coordinates{Lat: 51.5, Lng: -0.14},
		},
	}}
	provider := NewProvider(testGeocoder(), repo, nil, time.Minute)

	lat, lng := 51.9, -0.2
	lookup, err := provider.Facts(context.Background(), domain.CheckRequest{
		Address: "1 The Mall, London SW1A 1AA",
		Lat:     &lat,
		Lng:     &lng,
	})
	if err != nil {
		t.Fatalf("facts failed: %v", err)
	}

	if lookup.Coordinates == nil || lookup.Coordinates.Lat != lat || lookup.Coordinates.Lng != lng {
		t.Errorf("expected caller coordinates, got %+v", lookup.Coordinates)
	}
}

func TestProviderExplicitPropertyType(t *testing.T) {
	provider := NewProvider(testGeocoder(), &stubRepo{records: map[string]*domain.DesignationRecord{}}, nil, time.Minute)

	lookup, err := provider.Facts(context.Background(), domain.CheckRequest{
		Address:      "Flat 2, 1 The Mall, London SW1A 1AA",
		PropertyType: domain.PropertyHouse,
	})
	if err != nil {
		t.Fatalf("facts failed: %v", err)
	}
	if lookup.Facts.PropertyType != domain.PropertyHouse {
		t.Errorf("explicit type must win over inference, got %s", lookup.Facts.PropertyType)
	}
}
