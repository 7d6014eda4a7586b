package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Completed check operations
	SaveCheck(ctx context.Context, result *PlanningResult) error
	GetCheck(ctx context.Context, checkID string) (*PlanningResult, error)
	ListChecksByPostcode(ctx context.Context, postcode string, limit int) ([]*PlanningResult, error)

	// Designation reference data
	SaveDesignation(ctx context.Context, record *DesignationRecord) error
	GetDesignation(ctx context.Context, postcode string) (*DesignationRecord, error)

	// Operator-authored rule configurations
	SaveRuleConfig(ctx context.Context, rule *RuleConfig) error
	GetRuleConfig(ctx context.Context, ruleID string) (*RuleConfig, error)
	ListRuleConfigs(ctx context.Context) ([]*RuleConfig, error)
	DeleteRuleConfig(ctx context.Context, ruleID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
