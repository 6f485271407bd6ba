package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new hexlit project",
		Long: `Initialize a new hexlit project with default directory structure and configuration.

This creates:
  - literals/ directory for .hexlit manifests
  - hexlit.yaml configuration file
  - .gitignore covering generated output and local state

Use --example to scaffold sample manifests demonstrating headers, doc
comments, and list values.`,
		Example: `  # Initialize in current directory
  hexlit init

  # Initialize with sample manifests
  hexlit init --example

  # Initialize in a new directory
  hexlit init my-ids --example

  # Force overwrite existing config
  hexlit init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cc := NewCommandContextWithoutEngine(cmd)

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(cc.Renderer, template, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Scaffold sample manifests")

	return cmd
}

func runInit(r *output.Renderer, template, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "hexlit.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("hexlit.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// List created files by category
	files, _ := listTemplateFiles(template)
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	if len(groups["literals"]) > 0 {
		r.Println("")
		r.Header(2, "Literals")
		for _, f := range groups["literals"] {
			r.StatusLine(f, "success", "")
		}
	}

	r.Println("")
	r.Success("hexlit project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add .hexlit manifests to literals/")
	r.Println("  2. Run 'hexlit expand' to generate Go files")
	r.Println("  3. Run 'hexlit scan' to inspect what will be generated")

	return nil
}
