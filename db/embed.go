// Package db holds the embedded database schema applied at startup.
package db

import _ "embed"

// Schema contains the DDL for every table the storefront uses.
//
//go:embed migrations/001_schema.sql
var Schema string
