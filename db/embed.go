// Package db ships the SQL migration files inside the binary so the server
// and the one-shot commands can bootstrap a database without external files.
package db

import "embed"

// Migrations holds every migration file. Files apply in lexical order, so
// the numeric prefix of the filename decides sequencing.
//
//go:embed migrations/*.sql
var Migrations embed.FS
