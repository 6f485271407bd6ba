package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hexlit-dev/hexlit/internal/cli/config"
	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/hexlit-dev/hexlit/internal/engine"
	"github.com/hexlit-dev/hexlit/internal/gen"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the state store.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	literalsDir := getEnvOrDefault("HEXLIT_LITERALS_DIR", config.DefaultLiteralsDir)
	outDir := getEnvOrDefault("HEXLIT_OUT_DIR", config.DefaultOutDir)
	statePath := getEnvOrDefault("HEXLIT_STATE_PATH", config.DefaultStateFile)
	workers := config.DefaultWorkers
	if v := os.Getenv("HEXLIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}
	verbose := os.Getenv("HEXLIT_VERBOSE") == "true"
	outputFormat := os.Getenv("HEXLIT_OUTPUT")

	return &config.Config{
		LiteralsDir:  literalsDir,
		OutDir:       outDir,
		StatePath:    statePath,
		Workers:      workers,
		Verbose:      verbose,
		OutputFormat: outputFormat,
		Codegen:      config.DefaultCodegenConfig(),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	cg := cfg.GetCodegenConfig()
	engineCfg := engine.Config{
		LiteralsDir: cfg.LiteralsDir,
		OutDir:      cfg.OutDir,
		StatePath:   cfg.StatePath,
		Workers:     cfg.Workers,
		Codegen: gen.Options{
			ImportPath:     cg.ImportPath,
			Qualifier:      cg.Qualifier,
			LineDirectives: cg.LineDirectives,
			Goimports:      cg.Goimports,
		},
		Logger: logger,
	}

	return engine.New(engineCfg)
}
