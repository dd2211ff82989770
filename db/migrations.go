// Package db embeds the SQL migrations so a deployed binary can bring its
// schema up to date without shipping files alongside it.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
