package engine

// run.go - Generation orchestration for manifest files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hexlit-dev/hexlit/internal/gen"
	"github.com/hexlit-dev/hexlit/internal/manifest"
	"github.com/hexlit-dev/hexlit/internal/state"
)

// RunOptions configures a generation run.
type RunOptions struct {
	// Force regenerates every manifest regardless of content hashes
	Force bool
	// Paths restricts the run to specific manifests, given as absolute
	// paths or paths relative to the literals directory. Empty runs all.
	Paths []string
}

// FileResult describes the outcome for a single manifest.
type FileResult struct {
	Path       string
	OutputPath string
	Status     state.FileStatus
	Message    string
	Entries    int
	Duration   time.Duration

	hash string
}

// RunResult summarizes a generation run.
type RunResult struct {
	RunID    string
	Total    int
	Written  int
	Skipped  int
	Failed   int
	Pruned   int
	Duration time.Duration
	Files    []FileResult
}

// HasFailures returns true if any manifest failed to generate.
func (r *RunResult) HasFailures() bool {
	return r.Failed > 0
}

// Summary returns a human-readable summary.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("Manifests: %d total (%d written, %d skipped, %d failed) | Pruned: %d | Duration: %s",
		r.Total, r.Written, r.Skipped, r.Failed, r.Pruned, r.Duration.Round(time.Millisecond))
}

// Run generates Go source for every manifest using a bounded worker pool.
// Manifests whose content is unchanged since the last successful run are
// skipped unless opts.Force is set. A manifest that fails to expand still
// produces output: the generated file carries a compile error pinned to the
// failing manifest position, and the manifest counts as failed.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	start := time.Now()

	e.logger.Info("starting run", "literals_dir", e.literalsDir, "force", opts.Force)

	absDir, err := filepath.Abs(e.literalsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve literals directory: %w", err)
	}

	discovered, err := listManifests(absDir)
	if err != nil {
		return nil, err
	}

	paths := discovered
	if len(opts.Paths) > 0 {
		paths, err = filterPaths(discovered, opts.Paths, absDir)
		if err != nil {
			return nil, err
		}
	}

	run, err := e.store.CreateRun()
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	e.logger.Debug("created run", "run_id", run.ID, "manifests", len(paths))

	// Generate in parallel. Workers only touch disjoint files; all state
	// store writes happen sequentially afterwards.
	results := make([]FileResult, len(paths))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			results[i] = e.generateFile(absDir, path, opts.Force)
			return nil
		})
	}
	waitErr := eg.Wait()

	result := &RunResult{RunID: run.ID, Files: results}
	for _, fr := range results {
		result.Total++
		switch fr.Status {
		case state.FileStatusWritten:
			result.Written++
		case state.FileStatusSkipped:
			result.Skipped++
		case state.FileStatusFailed:
			result.Failed++
		}
	}

	if waitErr != nil {
		summary := state.RunSummary{
			Total:   result.Total,
			Written: result.Written,
			Skipped: result.Skipped,
			Failed:  result.Failed,
			Error:   waitErr.Error(),
		}
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, summary)
		e.logger.Error("run aborted", "run_id", run.ID, "error", waitErr)
		return result, waitErr
	}

	e.recordResults(run.ID, results)

	// Prune manifests that disappeared from disk. The full discovered set
	// is used here, not the selection, so a selective run never prunes
	// manifests it merely did not touch.
	result.Pruned = e.pruneDeleted(discovered)

	status := state.RunStatusCompleted
	summary := state.RunSummary{
		Total:   result.Total,
		Written: result.Written,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	}
	if result.Failed > 0 {
		status = state.RunStatusFailed
		summary.Error = fmt.Sprintf("%d manifest(s) failed to generate", result.Failed)
	}
	_ = e.store.CompleteRun(run.ID, status, summary)

	result.Duration = time.Since(start)

	e.logger.Info("run completed",
		"run_id", run.ID,
		"written", result.Written,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"pruned", result.Pruned,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// generateFile expands a single manifest and writes its output file.
func (e *Engine) generateFile(literalsDir, path string, force bool) FileResult {
	start := time.Now()
	fr := FileResult{Path: path, OutputPath: e.outputPathFor(literalsDir, path)}

	content, err := os.ReadFile(path)
	if err != nil {
		return e.failFile(fr, start, fmt.Sprintf("failed to read manifest: %v", err))
	}
	fr.hash = computeHash(content)

	if !force {
		if known, lookupErr := e.store.GetManifestFile(path); lookupErr == nil && known != nil &&
			known.ContentHash == fr.hash &&
			known.OutputPath == fr.OutputPath &&
			outputExists(known.OutputPath) {
			e.logger.Debug("skipping unchanged manifest", "path", path)
			fr.Status = state.FileStatusSkipped
			fr.Entries = known.EntryCount
			fr.Duration = time.Since(start)
			return fr
		}
	}

	var result *gen.Result
	m, parseErr := manifest.Parse(string(content), path)
	if parseErr != nil {
		result = e.generator.ErrorFile(path, parseErr)
	} else {
		fr.Entries = len(m.Entries)
		result = e.generator.File(m)
	}

	if err := os.MkdirAll(filepath.Dir(fr.OutputPath), 0o750); err != nil {
		return e.failFile(fr, start, fmt.Sprintf("failed to create output directory: %v", err))
	}
	if err := os.WriteFile(fr.OutputPath, result.Code, 0o644); err != nil {
		return e.failFile(fr, start, fmt.Sprintf("failed to write output: %v", err))
	}

	fr.Duration = time.Since(start)
	if result.Diag != nil {
		e.logger.Debug("manifest failed to expand", "path", path, "error", result.Diag.Error())
		fr.Status = state.FileStatusFailed
		fr.Message = result.Diag.Error()
		return fr
	}

	e.logger.Debug("manifest generated",
		"path", path, "output", fr.OutputPath, "entries", fr.Entries)
	fr.Status = state.FileStatusWritten
	return fr
}

// failFile marks a result as failed without output.
func (e *Engine) failFile(fr FileResult, start time.Time, msg string) FileResult {
	e.logger.Warn("manifest generation failed", "path", fr.Path, "error", msg)
	fr.Status = state.FileStatusFailed
	fr.Message = msg
	fr.Duration = time.Since(start)
	return fr
}

// recordResults persists per-file outcomes. Only successfully written files
// update the manifest fingerprint, so failing manifests are retried on every
// run until they are fixed.
func (e *Engine) recordResults(runID string, results []FileResult) {
	for _, fr := range results {
		rec := &state.FileRun{
			RunID:    runID,
			Path:     fr.Path,
			Status:   fr.Status,
			Message:  fr.Message,
			Duration: fr.Duration,
		}
		if err := e.store.RecordFileRun(rec); err != nil {
			e.logger.Error("failed to record file run", "path", fr.Path, "error", err)
		}

		if fr.Status != state.FileStatusWritten {
			continue
		}
		mf := &state.ManifestFile{
			Path:        fr.Path,
			ContentHash: fr.hash,
			OutputPath:  fr.OutputPath,
			EntryCount:  fr.Entries,
		}
		if err := e.store.UpsertManifestFile(mf); err != nil {
			e.logger.Error("failed to record manifest", "path", fr.Path, "error", err)
		}
	}
}

// pruneDeleted drops state rows and generated output for manifests that no
// longer exist on disk. Returns the number of manifests pruned.
func (e *Engine) pruneDeleted(existing []string) int {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p] = true
	}

	known, err := e.store.ListManifestFiles()
	if err != nil {
		e.logger.Error("failed to list tracked manifests", "error", err)
		return 0
	}

	pruned := 0
	for _, mf := range known {
		if seen[mf.Path] {
			continue
		}

		e.logger.Debug("pruning deleted manifest", "path", mf.Path)
		if err := e.store.DeleteManifestFile(mf.Path); err != nil {
			e.logger.Error("failed to prune manifest", "path", mf.Path, "error", err)
			continue
		}
		if mf.OutputPath != "" {
			_ = os.Remove(mf.OutputPath)
			_ = os.Remove(filepath.Dir(mf.OutputPath)) // drops the package dir when empty
		}
		pruned++
	}
	return pruned
}

// filterPaths narrows the discovered manifests to an explicit selection.
func filterPaths(discovered, selected []string, literalsDir string) ([]string, error) {
	matched := make(map[string]bool, len(selected))
	for _, s := range selected {
		p := s
		if !filepath.IsAbs(p) {
			p = filepath.Join(literalsDir, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve selection %q: %w", s, err)
		}
		matched[abs] = false
	}

	var out []string
	for _, d := range discovered {
		if _, ok := matched[d]; ok {
			matched[d] = true
			out = append(out, d)
		}
	}

	for p, ok := range matched {
		if !ok {
			return nil, fmt.Errorf("selected manifest not found: %s", p)
		}
	}
	return out, nil
}

// outputExists reports whether a previously generated file is still on disk.
func outputExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
