package state

import (
	"database/sql"
	"fmt"
	"time"
)

// UpsertManifestFile records or refreshes a manifest fingerprint.
func (s *Store) UpsertManifestFile(mf *ManifestFile) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	mf.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO manifest_files (path, content_hash, output_path, entry_count, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		     content_hash = excluded.content_hash,
		     output_path = excluded.output_path,
		     entry_count = excluded.entry_count,
		     updated_at = excluded.updated_at`,
		mf.Path, mf.ContentHash, mf.OutputPath, mf.EntryCount, mf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert manifest file: %w", err)
	}
	return nil
}

// GetManifestFile returns the stored fingerprint for path, or nil when the
// manifest has never been recorded.
func (s *Store) GetManifestFile(path string) (*ManifestFile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	mf := &ManifestFile{}
	err := s.db.QueryRow(
		`SELECT path, content_hash, output_path, entry_count, updated_at
		 FROM manifest_files WHERE path = ?`, path,
	).Scan(&mf.Path, &mf.ContentHash, &mf.OutputPath, &mf.EntryCount, &mf.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest file: %w", err)
	}
	return mf, nil
}

// ListManifestFiles returns every recorded fingerprint ordered by path.
func (s *Store) ListManifestFiles() ([]*ManifestFile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT path, content_hash, output_path, entry_count, updated_at
		 FROM manifest_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifest files: %w", err)
	}
	defer rows.Close()

	var out []*ManifestFile
	for rows.Next() {
		mf := &ManifestFile{}
		if err := rows.Scan(&mf.Path, &mf.ContentHash, &mf.OutputPath, &mf.EntryCount, &mf.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan manifest file: %w", err)
		}
		out = append(out, mf)
	}
	return out, rows.Err()
}

// DeleteManifestFile drops the fingerprint for a manifest that no longer
// exists on disk.
func (s *Store) DeleteManifestFile(path string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(`DELETE FROM manifest_files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete manifest file: %w", err)
	}
	return nil
}
