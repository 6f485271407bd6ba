// Package config provides configuration management for the hexlit CLI.
//
// Configuration is resolved from four layers with increasing precedence:
// built-in defaults, a hexlit.yaml project file, HEXLIT_* environment
// variables, and command-line flags.
package config

import (
	"github.com/hexlit-dev/hexlit/internal/gen"
	"github.com/hexlit-dev/hexlit/pkg/expand"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string         `koanf:"-"`
	LiteralsDir  string         `koanf:"literals_dir"`
	OutDir       string         `koanf:"out_dir"`
	StatePath    string         `koanf:"state_path"`
	Workers      int            `koanf:"workers"`
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`
	Codegen      *CodegenConfig `koanf:"codegen"`
}

// CodegenConfig holds settings for the generated Go source files.
type CodegenConfig struct {
	ImportPath     string `koanf:"import_path"`
	Qualifier      string `koanf:"qualifier"`
	LineDirectives bool   `koanf:"line_directives"`
	Goimports      bool   `koanf:"goimports"`
}

// DefaultCodegenConfig returns a CodegenConfig with default values.
func DefaultCodegenConfig() *CodegenConfig {
	return &CodegenConfig{
		ImportPath:     gen.DefaultImportPath,
		Qualifier:      expand.DefaultQualifier,
		LineDirectives: true,
		Goimports:      true,
	}
}

// GetCodegenConfig returns the codegen config with defaults applied for any
// unset values.
func (c *Config) GetCodegenConfig() *CodegenConfig {
	if c.Codegen == nil {
		return DefaultCodegenConfig()
	}
	cg := c.Codegen
	if cg.ImportPath == "" {
		cg.ImportPath = gen.DefaultImportPath
	}
	if cg.Qualifier == "" {
		cg.Qualifier = expand.DefaultQualifier
	}
	return cg
}

// Default configuration values.
const (
	DefaultLiteralsDir = "literals"
	DefaultOutDir      = "gen"
	DefaultStateFile   = ".hexlit/state.db"
	DefaultWorkers     = 4
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
