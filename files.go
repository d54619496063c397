package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS exposes the embedded schema migrations for the users,
// refresh_sessions, password_resets, login_attempts, and activity_logs
// tables, so the hosting application can feed them to its migrator.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
