// Package db provides embedded database schema and seed files.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Seed contains the default catalog, customers, and tax brackets used by the
// seed-db command.
//
//go:embed seed/seed.json
var Seed []byte
