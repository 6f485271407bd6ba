// Package engine orchestrates manifest discovery and Go code generation.
// It handles incremental regeneration, bounded parallel workers, and run
// bookkeeping in the state store.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/hexlit-dev/hexlit/internal/gen"
	"github.com/hexlit-dev/hexlit/internal/state"
)

// Engine turns .hexlit manifests into generated Go source files.
type Engine struct {
	// Structured logger
	logger *slog.Logger

	store       *state.Store
	generator   *gen.Generator
	literalsDir string
	outDir      string
	workers     int
}

// Config holds engine configuration.
type Config struct {
	// LiteralsDir is the directory scanned for .hexlit manifests
	LiteralsDir string
	// OutDir is the root directory for generated Go packages
	OutDir string
	// StatePath is the path to the SQLite state database
	StatePath string
	// Workers bounds concurrent file generation (defaults to NumCPU)
	Workers int
	// Codegen holds the generator options applied to every manifest
	Codegen gen.Options
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine and opens the state store.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logger.Debug("initializing engine", "literals_dir", cfg.LiteralsDir, "out_dir", cfg.OutDir)

	// Create state store (always needed)
	store := state.New(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	return &Engine{
		logger:      logger,
		store:       store,
		generator:   gen.New(cfg.Codegen, logger),
		literalsDir: cfg.LiteralsDir,
		outDir:      cfg.OutDir,
		workers:     workers,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %v", errs)
	}
	return nil
}

// --- Getters (public accessors) ---

// GetStateStore returns the state store.
func (e *Engine) GetStateStore() *state.Store {
	return e.store
}

// GetLiteralsDir returns the manifest directory scanned by discovery.
func (e *Engine) GetLiteralsDir() string {
	return e.literalsDir
}

// GetOutDir returns the root directory for generated packages.
func (e *Engine) GetOutDir() string {
	return e.outDir
}
