package repository

// Schema definitions for the pdcheck database.
// Compatible with both SQLite and PostgreSQL.

const schemaChecks = `
CREATE TABLE IF NOT EXISTS property_checks (
    id TEXT PRIMARY KEY,
    address TEXT NOT NULL,
    postcode TEXT NOT NULL,
    local_authority TEXT,
    property_type TEXT NOT NULL,
    has_pd_rights INTEGER NOT NULL,
    confidence REAL NOT NULL,
    primary_reasons TEXT NOT NULL,
    checks TEXT NOT NULL,
    summary TEXT NOT NULL,
    coordinates TEXT,
    fallback INTEGER NOT NULL DEFAULT 0,
    checked_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checks_postcode ON property_checks(postcode);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON property_checks(checked_at);
`

const schemaDesignations = `
CREATE TABLE IF NOT EXISTS designations (
    postcode TEXT PRIMARY KEY,
    local_authority TEXT,
    lat REAL,
    lng REAL,
    article4_direction INTEGER NOT NULL DEFAULT 0,
    conservation_area INTEGER NOT NULL DEFAULT 0,
    listed_building INTEGER NOT NULL DEFAULT 0,
    national_park INTEGER NOT NULL DEFAULT 0,
    aonb INTEGER NOT NULL DEFAULT 0,
    world_heritage INTEGER NOT NULL DEFAULT 0,
    tpo INTEGER NOT NULL DEFAULT 0,
    flood_zone INTEGER NOT NULL DEFAULT 0,
    source TEXT,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_designations_authority ON designations(local_authority);
`

const schemaRuleConfigs = `
CREATE TABLE IF NOT EXISTS rule_configs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    severity TEXT NOT NULL,
    priority INTEGER NOT NULL,
    expression TEXT NOT NULL,
    applies_message TEXT NOT NULL,
    clear_message TEXT NOT NULL,
    details TEXT,
    applies_impact REAL NOT NULL DEFAULT 0,
    clear_impact REAL NOT NULL DEFAULT 0,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rule_configs_enabled ON rule_configs(enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaChecks,
		schemaDesignations,
		schemaRuleConfigs,
	}
}
