package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// restoreStagingDirName is where a downloaded backup waits until the next
// startup. Restores are staged rather than applied live because the
// databases cannot be swapped under open connections.
const restoreStagingDirName = "restore-staging"

// RestoreService downloads backup archives and stages them for the next
// startup. ApplyStagedRestore runs before any database is opened.
type RestoreService struct {
	s3Client *S3Client
	dataDir  string
	log      zerolog.Logger
}

// NewRestoreService creates a new restore service.
func NewRestoreService(s3Client *S3Client, dataDir string, log zerolog.Logger) *RestoreService {
	return &RestoreService{
		s3Client: s3Client,
		dataDir:  dataDir,
		log:      log.With().Str("service", "restore").Logger(),
	}
}

// StageRestore downloads an archive, verifies its checksums, and extracts
// it into the staging directory. The restore takes effect on next startup.
func (s *RestoreService) StageRestore(ctx context.Context, archiveName string) error {
	s.log.Info().Str("archive", archiveName).Msg("Staging restore")

	stagingDir := filepath.Join(s.dataDir, restoreStagingDirName)
	if err := os.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	// Download the archive
	archivePath := filepath.Join(stagingDir, archiveName)
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	if err := s.s3Client.Download(ctx, archiveName, archiveFile); err != nil {
		archiveFile.Close()
		os.RemoveAll(stagingDir)
		return err
	}
	archiveFile.Close()

	// Extract
	if err := extractArchive(archivePath, stagingDir); err != nil {
		os.RemoveAll(stagingDir)
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	if err := os.Remove(archivePath); err != nil {
		return fmt.Errorf("failed to remove downloaded archive: %w", err)
	}

	// Verify checksums against the embedded metadata
	metadata, err := readMetadata(filepath.Join(stagingDir, "backup-metadata.json"))
	if err != nil {
		os.RemoveAll(stagingDir)
		return fmt.Errorf("failed to read backup metadata: %w", err)
	}

	for _, db := range metadata.Databases {
		path := filepath.Join(stagingDir, db.Filename)
		checksum, err := calculateChecksum(path)
		if err != nil {
			os.RemoveAll(stagingDir)
			return fmt.Errorf("failed to checksum %s: %w", db.Filename, err)
		}
		if checksum != db.Checksum {
			os.RemoveAll(stagingDir)
			return fmt.Errorf("checksum mismatch for %s", db.Filename)
		}
	}

	s.log.Info().
		Str("archive", archiveName).
		Int("databases", len(metadata.Databases)).
		Msg("Restore staged, takes effect on next startup")

	return nil
}

// HasStagedRestore reports whether a staged restore is waiting in dataDir.
func HasStagedRestore(dataDir string) bool {
	info, err := os.Stat(filepath.Join(dataDir, restoreStagingDirName, "backup-metadata.json"))
	return err == nil && !info.IsDir()
}

// ApplyStagedRestore moves staged database files into place. Must be
// called before any database is opened. The current files are kept as
// .pre-restore copies until the next restore.
func ApplyStagedRestore(dataDir string, log zerolog.Logger) error {
	stagingDir := filepath.Join(dataDir, restoreStagingDirName)

	metadata, err := readMetadata(filepath.Join(stagingDir, "backup-metadata.json"))
	if err != nil {
		return fmt.Errorf("failed to read staged metadata: %w", err)
	}

	for _, db := range metadata.Databases {
		staged := filepath.Join(stagingDir, db.Filename)
		target := filepath.Join(dataDir, db.Filename)

		// Keep the current file around; the restore may be a mistake.
		if _, err := os.Stat(target); err == nil {
			if err := os.Rename(target, target+".pre-restore"); err != nil {
				return fmt.Errorf("failed to move aside %s: %w", db.Filename, err)
			}
		}
		// Stale WAL and SHM files must not outlive the main file.
		os.Remove(target + "-wal")
		os.Remove(target + "-shm")

		if err := os.Rename(staged, target); err != nil {
			return fmt.Errorf("failed to restore %s: %w", db.Filename, err)
		}

		log.Info().Str("database", db.Name).Msg("Database restored from backup")
	}

	if err := os.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}

	return nil
}

// readMetadata reads backup metadata from a JSON file.
func readMetadata(path string) (*BackupMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var metadata BackupMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// extractArchive unpacks a tar.gz archive into destDir. Entries with path
// separators are rejected; archives only ever contain flat files.
func extractArchive(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return err
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if strings.Contains(header.Name, "/") || strings.Contains(header.Name, "..") {
			return fmt.Errorf("unexpected path in archive: %s", header.Name)
		}

		out, err := os.Create(filepath.Join(destDir, header.Name))
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tarReader); err != nil {
			out.Close()
			return err
		}
		out.Close()
	}

	return nil
}
