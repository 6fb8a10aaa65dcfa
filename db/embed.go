// Package db holds the SQL migrations for the postgres store.
package db

import "embed"

// Migrations contains the golang-migrate migration files
//
//go:embed migrations/*.sql
var Migrations embed.FS
