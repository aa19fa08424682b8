// Package reliability covers backup and restore of the on-disk databases:
// consistent SQLite snapshots, tar.gz archives with checksummed metadata,
// upload to S3-compatible storage, and staged restores applied at startup.
package reliability

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/database"
)

// BackupService produces consistent snapshots of the live databases.
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a backup service over the given databases,
// keyed by name (e.g. "jobs", "cache").
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// GetDatabaseNames returns database names in deterministic order.
// The cache database is rebuilt from the remote service on demand, so
// callers can exclude it from archives.
func (s *BackupService) GetDatabaseNames(includeCache bool) []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		if !includeCache && name == "cache" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent snapshot of a database to destPath
// using VACUUM INTO, which is safe against a live WAL-mode database.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database: %s", name)
	}

	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear destination: %w", err)
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", name, err)
	}

	s.log.Debug().Str("database", name).Str("dest", destPath).Msg("Database snapshot written")
	return nil
}
