package load

import (
	"context"
	"fmt"
)

// Schema statements, in dependency order. Geometry columns are WGS84.
var schema_statements = []string{

	`CREATE EXTENSION IF NOT EXISTS postgis`,

	`CREATE TABLE IF NOT EXISTS provinces (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		geometry geometry(MultiPolygon, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS departments (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		province_code TEXT NOT NULL REFERENCES provinces (code) ON DELETE CASCADE,
		source TEXT NOT NULL,
		geometry geometry(MultiPolygon, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS municipalities (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		province_code TEXT NOT NULL REFERENCES provinces (code) ON DELETE CASCADE,
		department_code TEXT REFERENCES departments (code) ON DELETE CASCADE,
		source TEXT NOT NULL,
		geometry geometry(MultiPolygon, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS localities (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		department_code TEXT NOT NULL REFERENCES departments (code) ON DELETE CASCADE,
		source TEXT NOT NULL,
		geometry geometry(Geometry, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS streets (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		locality_code TEXT NOT NULL REFERENCES localities (code) ON DELETE CASCADE,
		source TEXT NOT NULL,
		start_left BIGINT NOT NULL DEFAULT 0,
		start_right BIGINT NOT NULL DEFAULT 0,
		end_left BIGINT NOT NULL DEFAULT 0,
		end_right BIGINT NOT NULL DEFAULT 0,
		geometry geometry(MultiLineString, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS intersections (
		code TEXT PRIMARY KEY,
		street_a_code TEXT NOT NULL REFERENCES streets (code) ON DELETE CASCADE,
		street_b_code TEXT NOT NULL REFERENCES streets (code) ON DELETE CASCADE,
		geometry geometry(Point, 4326) NOT NULL,
		CHECK (street_a_code < street_b_code)
	)`,

	`CREATE TABLE IF NOT EXISTS blocks (
		code TEXT PRIMARY KEY,
		street_code TEXT NOT NULL REFERENCES streets (code) ON DELETE CASCADE,
		from_intersection_code TEXT REFERENCES intersections (code) ON DELETE CASCADE,
		to_intersection_code TEXT REFERENCES intersections (code) ON DELETE CASCADE,
		start_left BIGINT NOT NULL DEFAULT 0,
		start_right BIGINT NOT NULL DEFAULT 0,
		end_left BIGINT NOT NULL DEFAULT 0,
		end_right BIGINT NOT NULL DEFAULT 0,
		geometry geometry(MultiLineString, 4326) NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS provinces_geometry_idx ON provinces USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS departments_geometry_idx ON departments USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS municipalities_geometry_idx ON municipalities USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS localities_geometry_idx ON localities USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS streets_geometry_idx ON streets USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS intersections_geometry_idx ON intersections USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS blocks_geometry_idx ON blocks USING GIST (geometry)`,

	`CREATE INDEX IF NOT EXISTS departments_province_idx ON departments (province_code)`,
	`CREATE INDEX IF NOT EXISTS localities_department_idx ON localities (department_code)`,
	`CREATE INDEX IF NOT EXISTS streets_locality_idx ON streets (locality_code)`,
	`CREATE INDEX IF NOT EXISTS blocks_street_idx ON blocks (street_code)`,
}

// MigrateSchema creates the persistent schema. It is idempotent and runs in
// a single transaction.
func (m *Manager) MigrateSchema(ctx context.Context) error {

	tx, err := m.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("Failed to begin transaction, %w", err)
	}

	for _, stmt := range schema_statements {

		_, err := tx.ExecContext(ctx, stmt)

		if err != nil {
			tx.Rollback()
			return fmt.Errorf("Failed to execute schema statement, %w", err)
		}
	}

	return tx.Commit()
}
