// Seed tool for loading designation reference data into pdcheck.
//
// Usage:
//   go run cmd/seed/main.go -csv /path/to/designations.csv
//   go run cmd/seed/main.go -sample
//
// CSV columns:
//   postcode,local_authority,lat,lng,article4,conservation_area,listed_building,
//   national_park,aonb,world_heritage,tpo,flood_zone,source
//
// The -sample flag loads a handful of well-known postcodes instead, useful
// for trying the service out without a dataset.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/domain"
	"github.com/naxonsolutions/pdcheck/internal/facts"
	"github.com/naxonsolutions/pdcheck/internal/repository"
)

func main() {
	csvPath := flag.String("csv", "", "Path to designation CSV file")
	dbPath := flag.String("db", "./pdcheck.db", "Path to SQLite database")
	sample := flag.Bool("sample", false, "Load built-in sample records instead of a CSV")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *csvPath == "" && !*sample {
		fmt.Fprintln(os.Stderr, "either -csv or -sample is required")
		flag.Usage()
		os.Exit(1)
	}

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: *dbPath,
	})
	if err != nil {
		slog.Error("failed to open repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	var loaded int
	if *sample {
		loaded, err = loadSamples(ctx, repo)
	} else {
		loaded, err = loadCSV(ctx, repo, *csvPath)
	}
	if err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	slog.Info("seeding complete", "records", loaded, "db", *dbPath)
}

func loadCSV(ctx context.Context, repo domain.Repository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 13

	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read row %d: %w", count+1, err)
		}

		record, err := parseRow(row)
		if err != nil {
			slog.Warn("skipping invalid row", "row", count+1, "error", err)
			continue
		}

		if err := repo.SaveDesignation(ctx, record); err != nil {
			return count, fmt.Errorf("failed to save %s: %w", record.Postcode, err)
		}
		count++
	}

	return count, nil
}

func parseRow(row []string) (*domain.DesignationRecord, error) {
	postcode := facts.ExtractPostcode(row[0])
	if postcode == "" {
		return nil, fmt.Errorf("invalid postcode %q", row[0])
	}

	record := &domain.DesignationRecord{
		Postcode:       postcode,
		LocalAuthority: row[1],
		Source:         row[12],
		UpdatedAt:      time.Now().UTC(),
	}

	lat, latErr := strconv.ParseFloat(row[2], 64)
	lng, lngErr := strconv.ParseFloat(row[3], 64)
	if latErr == nil && lngErr == nil {
		record.Coordinates = &domain.Coordinates{Lat: lat, Lng: lng}
	}

	flags := []*bool{
		&record.Flags.Article4Direction,
		&record.Flags.ConservationArea,
		&record.Flags.ListedBuilding,
		&record.Flags.NationalPark,
		&record.Flags.AONB,
		&record.Flags.WorldHeritage,
		&record.Flags.TPO,
		&record.Flags.FloodZone,
	}
	for i, target := range flags {
		v, err := strconv.ParseBool(row[4+i])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", 4+i, err)
		}
		*target = v
	}

	return record, nil
}

func loadSamples(ctx context.Context, repo domain.Repository) (int, error) {
	now := time.Now().UTC()
	samples := []*domain.DesignationRecord{
		{
			Postcode:       "SW1A 1AA",
			LocalAuthority: "City of Westminster",
			Coordinates:    &domain.Coordinates{Lat: 51.501, Lng: -0.1416},
			Flags: domain.ConstraintFlags{
				ConservationArea: true,
				ListedBuilding:   true,
				WorldHeritage:    true,
			},
			Source:    "sample",
			UpdatedAt: now,
		},
		{
			Postcode:       "YO62 5BP",
			LocalAuthority: "North Yorkshire",
			Coordinates:    &domain.Coordinates{Lat: 54.246, Lng: -0.954},
			Flags: domain.ConstraintFlags{
				NationalPark: true,
			},
			Source:    "sample",
			UpdatedAt: now,
		},
		{
			Postcode:       "GL54 1AA",
			LocalAuthority: "Cotswold",
			Flags: domain.ConstraintFlags{
				AONB: true,
				TPO:  true,
			},
			Source:    "sample",
			UpdatedAt: now,
		},
		{
			Postcode:       "M1 1AE",
			LocalAuthority: "Manchester",
			Coordinates:    &domain.Coordinates{Lat: 53.478, Lng: -2.235},
			Flags:          domain.ConstraintFlags{},
			Source:         "sample",
			UpdatedAt:      now,
		},
		{
			Postcode:       "BA2 4DB",
			LocalAuthority: "Bath and North East Somerset",
			Flags: domain.ConstraintFlags{
				Article4Direction: true,
				ConservationArea:  true,
				WorldHeritage:     true,
			},
			Source:    "sample",
			UpdatedAt: now,
		},
	}

	for _, record := range samples {
		if err := repo.SaveDesignation(ctx, record); err != nil {
			return 0, fmt.Errorf("failed to save %s: %w", record.Postcode, err)
		}
	}

	return len(samples), nil
}
