// Package state tracks generation runs and manifest file hashes in SQLite.
// The engine uses it to skip unchanged manifests and the CLI to report run
// history.
package state

import "time"

// RunStatus is the lifecycle state of a generation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the generator over a literals tree.
type Run struct {
	ID           string
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       RunStatus
	FilesTotal   int
	FilesWritten int
	FilesSkipped int
	FilesFailed  int
	Error        string
}

// RunSummary carries the final counts for a completed run.
type RunSummary struct {
	Total   int
	Written int
	Skipped int
	Failed  int
	Error   string
}

// FileStatus is the outcome of one manifest within a run.
type FileStatus string

const (
	// FileStatusWritten means the output file was regenerated.
	FileStatusWritten FileStatus = "written"
	// FileStatusSkipped means the manifest was unchanged since its last run.
	FileStatusSkipped FileStatus = "skipped"
	// FileStatusFailed means the output carries a compile diagnostic.
	FileStatusFailed FileStatus = "failed"
)

// FileRun is one manifest's outcome inside a run.
type FileRun struct {
	ID       string
	RunID    string
	Path     string
	Status   FileStatus
	Message  string
	Duration time.Duration
}

// ManifestFile is the persisted fingerprint of a manifest, used to decide
// whether regeneration is needed.
type ManifestFile struct {
	Path        string
	ContentHash string
	OutputPath  string
	EntryCount  int
	UpdatedAt   time.Time
}
