package state

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateRun opens a new generation run in the running state.
func (s *Store) CreateRun() (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// CompleteRun finalizes a run with its status and counts.
func (s *Store) CompleteRun(id string, status RunStatus, sum RunSummary) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errMsg *string
	if sum.Error != "" {
		errMsg = &sum.Error
	}

	result, err := s.db.Exec(
		`UPDATE runs
		 SET completed_at = ?, status = ?, files_total = ?, files_written = ?,
		     files_skipped = ?, files_failed = ?, error = ?
		 WHERE id = ?`,
		time.Now().UTC(), status, sum.Total, sum.Written, sum.Skipped, sum.Failed, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check run update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, started_at, completed_at, status, files_total, files_written,
		        files_skipped, files_failed, error
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, completed_at, status, files_total, files_written,
		        files_skipped, files_failed, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run, or nil when none exist.
func (s *Store) LatestRun() (*Run, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// RecordFileRun stores one manifest outcome. The ID is assigned here.
func (s *Store) RecordFileRun(fr *FileRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	fr.ID = generateID()
	_, err := s.db.Exec(
		`INSERT INTO file_runs (id, run_id, path, status, message, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fr.ID, fr.RunID, fr.Path, fr.Status, fr.Message, fr.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record file run: %w", err)
	}
	return nil
}

// ListFileRuns returns the per-file outcomes of a run in insertion order.
func (s *Store) ListFileRuns(runID string) ([]*FileRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, path, status, message, duration_ms
		 FROM file_runs WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file runs: %w", err)
	}
	defer rows.Close()

	var out []*FileRun
	for rows.Next() {
		fr := &FileRun{}
		var msg sql.NullString
		var durationMS int64
		if err := rows.Scan(&fr.ID, &fr.RunID, &fr.Path, &fr.Status, &msg, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan file run: %w", err)
		}
		fr.Message = msg.String
		fr.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, fr)
	}
	return out, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&run.ID, &run.StartedAt, &completedAt, &run.Status,
		&run.FilesTotal, &run.FilesWritten, &run.FilesSkipped, &run.FilesFailed, &errMsg)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	run.Error = errMsg.String
	return run, nil
}
