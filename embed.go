package watchhub

import (
	"embed"
	"io/fs"
)

//go:embed db/migrations
var migrationFiles embed.FS

// GetMigrationsFS returns the embedded migrations filesystem
func GetMigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationFiles, "db/migrations")
}
