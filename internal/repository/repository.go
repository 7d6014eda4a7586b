// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveCheck stores a completed planning rights check.
func (r *SQLRepository) SaveCheck(ctx context.Context, result *domain.PlanningResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("%w: check id is required", ErrInvalidInput)
	}

	reasons, _ := json.Marshal(result.PrimaryReasons)
	checks, _ := json.Marshal(result.Checks)

	var coordinates any
	if result.Coordinates != nil {
		data, _ := json.Marshal(result.Coordinates)
		coordinates = string(data)
	}

	query := `
		INSERT INTO property_checks (
			id, address, postcode, local_authority, property_type,
			has_pd_rights, confidence, primary_reasons, checks, summary,
			coordinates, fallback, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		result.ID, result.Address, result.Postcode, result.LocalAuthority,
		string(result.PropertyType),
		boolToInt(result.HasPermittedDevelopmentRights), result.Confidence,
		string(reasons), string(checks), result.Summary,
		coordinates, boolToInt(result.Fallback), result.CheckedAt,
	)
	return err
}

// GetCheck retrieves a completed check by ID.
func (r *SQLRepository) GetCheck(ctx context.Context, checkID string) (*domain.PlanningResult, error) {
	if checkID == "" {
		return nil, fmt.Errorf("%w: check id is required", ErrInvalidInput)
	}

	query := `
		SELECT id, address, postcode, local_authority, property_type,
			   has_pd_rights, confidence, primary_reasons, checks, summary,
			   coordinates, fallback, checked_at
		FROM property_checks
		WHERE id = ?
	`

	return r.scanCheck(r.db.QueryRowContext(ctx, r.rebind(query), checkID))
}

// ListChecksByPostcode retrieves recent checks for a postcode, newest first.
func (r *SQLRepository) ListChecksByPostcode(ctx context.Context, postcode string, limit int) ([]*domain.PlanningResult, error) {
	if postcode == "" {
		return nil, fmt.Errorf("%w: postcode is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, address, postcode, local_authority, property_type,
			   has_pd_rights, confidence, primary_reasons, checks, summary,
			   coordinates, fallback, checked_at
		FROM property_checks
		WHERE postcode = ?
		ORDER BY checked_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), postcode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.PlanningResult
	for rows.Next() {
		result, err := r.scanCheck(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanCheck(row rowScanner) (*domain.PlanningResult, error) {
	var result domain.PlanningResult
	var propertyType string
	var hasPDRights, fallback int
	var reasons, checks string
	var coordinates sql.NullString

	err := row.Scan(
		&result.ID, &result.Address, &result.Postcode, &result.LocalAuthority,
		&propertyType,
		&hasPDRights, &result.Confidence,
		&reasons, &checks, &result.Summary,
		&coordinates, &fallback, &result.CheckedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result.PropertyType = domain.PropertyType(propertyType)
	result.HasPermittedDevelopmentRights = hasPDRights == 1
	result.Fallback = fallback == 1
	json.Unmarshal([]byte(reasons), &result.PrimaryReasons)
	json.Unmarshal([]byte(checks), &result.Checks)
	if coordinates.Valid && coordinates.String != "" {
		var c domain.Coordinates
		if err := json.Unmarshal([]byte(coordinates.String), &c); err == nil {
			result.Coordinates = &c
		}
	}

	return &result, nil
}

// SaveDesignation upserts the constraint record for a postcode.
func (r *SQLRepository) SaveDesignation(ctx context.Context, record *domain.DesignationRecord) error {
	if record == nil || record.Postcode == "" {
		return fmt.Errorf("%w: postcode is required", ErrInvalidInput)
	}

	var lat, lng any
	if record.Coordinates != nil {
		lat, lng = record.Coordinates.Lat, record.Coordinates.Lng
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO designations (
			postcode, local_authority, lat, lng,
			article4_direction, conservation_area, listed_building,
			national_park, aonb, world_heritage, tpo, flood_zone,
			source, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(postcode) DO UPDATE SET
			local_authority = excluded.local_authority,
			lat = excluded.lat,
			lng = excluded.lng,
			article4_direction = excluded.article4_direction,
			conservation_area = excluded.conservation_area,
			listed_building = excluded.listed_building,
			national_park = excluded.national_park,
			aonb = excluded.aonb,
			world_heritage = excluded.world_heritage,
			tpo = excluded.tpo,
			flood_zone = excluded.flood_zone,
			source = excluded.source,
			updated_at = excluded.updated_at
	`

	f := record.Flags
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		record.Postcode, record.LocalAuthority, lat, lng,
		boolToInt(f.Article4Direction), boolToInt(f.ConservationArea), boolToInt(f.ListedBuilding),
		boolToInt(f.NationalPark), boolToInt(f.AONB), boolToInt(f.WorldHeritage),
		boolToInt(f.TPO), boolToInt(f.FloodZone),
		record.Source, updatedAt,
	)
	return err
}

// GetDesignation retrieves the constraint record for a postcode.
func (r *SQLRepository) GetDesignation(ctx context.Context, postcode string) (*domain.DesignationRecord, error) {
	if postcode == "" {
		return nil, fmt.Errorf("%w: postcode is required", ErrInvalidInput)
	}

	query := `
		SELECT postcode, local_authority, lat, lng,
			   article4_direction, conservation_area, listed_building,
			   national_park, aonb, world_heritage, tpo, flood_zone,
			   source, updated_at
		FROM designations
		WHERE postcode = ?
	`

	var record domain.DesignationRecord
	var lat, lng sql.NullFloat64
	var source sql.NullString
	var a4, ca, lb, np, aonb, wh, tpo, fz int

	err := r.db.QueryRowContext(ctx, r.rebind(query), postcode).Scan(
		&record.Postcode, &record.LocalAuthority, &lat, &lng,
		&a4, &ca, &lb, &np, &aonb, &wh, &tpo, &fz,
		&source, &record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record.Flags = domain.ConstraintFlags{
		Article4Direction: a4 == 1,
		ConservationArea:  ca == 1,
		ListedBuilding:    lb == 1,
		NationalPark:      np == 1,
		AONB:              aonb == 1,
		WorldHeritage:     wh == 1,
		TPO:               tpo == 1,
		FloodZone:         fz == 1,
	}
	if lat.Valid && lng.Valid {
		record.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	record.Source = source.String

	return &record, nil
}

// SaveRuleConfig upserts an operator-authored rule configuration.
func (r *SQLRepository) SaveRuleConfig(ctx context.Context, rule *domain.RuleConfig) error {
	if rule == nil || rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO rule_configs (
			id, name, description, severity, priority, expression,
			applies_message, clear_message, details,
			applies_impact, clear_impact, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			severity = excluded.severity,
			priority = excluded.priority,
			expression = excluded.expression,
			applies_message = excluded.applies_message,
			clear_message = excluded.clear_message,
			details = excluded.details,
			applies_impact = excluded.applies_impact,
			clear_impact = excluded.clear_impact,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.Description, string(rule.Severity), rule.Priority,
		rule.Expression, rule.AppliesMessage, rule.ClearMessage, rule.Details,
		rule.AppliesImpact, rule.ClearImpact, boolToInt(rule.Enabled),
		now, now,
	)
	return err
}

// GetRuleConfig retrieves a rule configuration by ID.
func (r *SQLRepository) GetRuleConfig(ctx context.Context, ruleID string) (*domain.RuleConfig, error) {
	if ruleID == "" {
		return nil, fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	query := `
		SELECT id, name, description, severity, priority, expression,
			   applies_message, clear_message, details,
			   applies_impact, clear_impact, enabled
		FROM rule_configs
		WHERE id = ?
	`

	cfg, err := r.scanRuleConfig(r.db.QueryRowContext(ctx, r.rebind(query), ruleID))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListRuleConfigs retrieves all enabled rule configurations.
func (r *SQLRepository) ListRuleConfigs(ctx context.Context) ([]*domain.RuleConfig, error) {
	query := `
		SELECT id, name, description, severity, priority, expression,
			   applies_message, clear_message, details,
			   applies_impact, clear_impact, enabled
		FROM rule_configs
		WHERE enabled = 1
		ORDER BY priority DESC, id
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.RuleConfig
	for rows.Next() {
		cfg, err := r.scanRuleConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

func (r *SQLRepository) scanRuleConfig(row rowScanner) (*domain.RuleConfig, error) {
	var cfg domain.RuleConfig
	var severity string
	var description, details sql.NullString
	var enabled int

	err := row.Scan(
		&cfg.ID, &cfg.Name, &description, &severity, &cfg.Priority, &cfg.Expression,
		&cfg.AppliesMessage, &cfg.ClearMessage, &details,
		&cfg.AppliesImpact, &cfg.ClearImpact, &enabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Description = description.String
	cfg.Details = details.String
	cfg.Severity = domain.Severity(severity)
	cfg.Enabled = enabled == 1

	return &cfg, nil
}

// DeleteRuleConfig soft-deletes a rule configuration by setting enabled = 0.
func (r *SQLRepository) DeleteRuleConfig(ctx context.Context, ruleID string) error {
	if ruleID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	query := `
		UPDATE rule_configs
		SET enabled = 0, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), ruleID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
