package config

import (
	"fmt"
	gotoken "go/token"
	"os"
	"slices"
)

// ValidOutputFormats lists the accepted values for the output setting.
var ValidOutputFormats = []string{"auto", "text", "json", "markdown"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LiteralsDir == "" {
		return fmt.Errorf("literals_dir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if !slices.Contains(ValidOutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (valid: auto, text, json, markdown)", c.OutputFormat)
	}

	// Only validate directory existence if we're running a command that needs it
	// This allows help commands to work without a valid directory
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.LiteralsDir); os.IsNotExist(err) {
		return fmt.Errorf("literals directory does not exist: %s\nHint: Create the directory or use --literals-dir to specify a different path", c.LiteralsDir)
	}
	return nil
}

// ValidateCodegen checks that codegen settings would produce valid Go source.
func ValidateCodegen(cg *CodegenConfig) error {
	if cg == nil {
		return nil
	}
	if cg.ImportPath == "" {
		return fmt.Errorf("import_path is required")
	}
	if cg.Qualifier != "" && !gotoken.IsIdentifier(cg.Qualifier) {
		return fmt.Errorf("invalid qualifier %q: must be a Go identifier", cg.Qualifier)
	}
	return nil
}
