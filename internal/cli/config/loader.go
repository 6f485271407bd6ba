package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hexlit-dev/hexlit/internal/gen"
	"github.com/hexlit-dev/hexlit/pkg/expand"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > hexlit.yaml > hexlit.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("hexlit.yaml"); err == nil {
		return "hexlit.yaml"
	}
	if _, err := os.Stat("hexlit.yml"); err == nil {
		return "hexlit.yml"
	}
	return ""
}

// configExistsIn checks if a hexlit config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{"hexlit.yaml", "hexlit.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a hexlit config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --project-dir flag
//  2. Infer from --literals-dir (parent if contains config or named "literals")
//  3. Search upward from CWD for hexlit.yaml
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	// 1. Check explicit --project-dir
	if flags != nil {
		if projectDir, _ := flags.GetString("project-dir"); projectDir != "" && flags.Changed("project-dir") {
			abs, err := filepath.Abs(projectDir)
			if err == nil {
				return abs
			}
			return filepath.Clean(projectDir)
		}
	}

	// 2. Infer from --literals-dir
	if flags != nil {
		if literalsDir, _ := flags.GetString("literals-dir"); literalsDir != "" && flags.Changed("literals-dir") {
			absLiterals, err := filepath.Abs(literalsDir)
			if err == nil {
				parent := filepath.Dir(absLiterals)

				// If parent has a config file, it's the project root
				if configExistsIn(parent) {
					return parent
				}

				// If folder is named "literals", assume parent is root
				if filepath.Base(absLiterals) == "literals" {
					return parent
				}
			}
		}
	}

	// 3. Search upward from CWD for hexlit.yaml
	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	// 4. Default to CWD
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// Infer project root from flags before loading config
	// This enables the "anchor pattern" where --literals-dir testdata/literals
	// implies project root is testdata/
	projectRoot := inferProjectRoot(flags)

	// Track paths that were explicitly provided as flags (already relative to CWD).
	// These will be converted to absolute paths before the normal resolution step,
	// to prevent double-resolution when project root was inferred from them.
	var flagLiteralsDir, flagOutDir, flagStatePath string
	if flags != nil {
		if flags.Changed("literals-dir") {
			if v, _ := flags.GetString("literals-dir"); v != "" {
				flagLiteralsDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("out-dir") {
			if v, _ := flags.GetString("out-dir"); v != "" {
				flagOutDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("state") {
			if v, _ := flags.GetString("state"); v != "" {
				flagStatePath, _ = filepath.Abs(v)
			}
		}
	}

	// If an explicit config file is provided, use its directory as project root
	// (unless a more specific hint was given via flags)
	if cfgFile != "" && projectRoot == inferProjectRoot(nil) {
		// No flag-based inference happened, use config file's directory
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"literals_dir":            DefaultLiteralsDir,
		"out_dir":                 DefaultOutDir,
		"state_path":              DefaultStateFile,
		"workers":                 DefaultWorkers,
		"verbose":                 false,
		"output":                  DefaultOutput,
		"codegen.import_path":     gen.DefaultImportPath,
		"codegen.qualifier":       expand.DefaultQualifier,
		"codegen.line_directives": true,
		"codegen.goimports":       true,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	// Search in project root if no explicit config file provided
	if cfgFile == "" {
		// Look for config in inferred project root
		for _, name := range []string{"hexlit.yaml", "hexlit.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (HEXLIT_ prefix)
	// Transform: HEXLIT_LITERALS_DIR -> literals_dir
	if err := k.Load(env.Provider("HEXLIT_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "HEXLIT_"))

		// Codegen keys arrive flattened: HEXLIT_CODEGEN_QUALIFIER -> codegen.qualifier
		if rest, ok := strings.CutPrefix(key, "codegen_"); ok {
			return "codegen." + rest
		}

		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: Bridge the gap between --state flag and state_path config key
			// The CLI uses --state for brevity, but the config struct uses state_path for clarity
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}

			// EXPLICIT MAPPING: --qualifier is a top-level flag but a nested config key
			if key == "qualifier" {
				return "codegen.qualifier", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct.
	// WeaklyTypedInput lets env var strings decode into ints and bools.
	// ErrorUnused makes unknown keys fail the load so config typos surface
	// immediately instead of being silently ignored.
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Set project root and resolve relative paths
	// Use project root as base for all path resolution (not config file directory)
	// This implements the "anchor pattern" for intuitive path resolution
	cfg.ProjectRoot = projectRoot

	// Expand ${VAR} references before resolving, so paths like
	// ${HOME}/ids/literals work in config files
	cfg.LiteralsDir = expandEnvVars(cfg.LiteralsDir)
	cfg.OutDir = expandEnvVars(cfg.OutDir)
	cfg.StatePath = expandEnvVars(cfg.StatePath)

	// For paths explicitly provided via flags, use the pre-computed absolute paths
	// (already computed relative to CWD at flag parse time).
	// For paths from config file or defaults, resolve relative to project root.
	if flagLiteralsDir != "" {
		cfg.LiteralsDir = flagLiteralsDir
	} else {
		cfg.LiteralsDir = resolvePathRelativeTo(cfg.LiteralsDir, projectRoot)
	}
	if flagOutDir != "" {
		cfg.OutDir = flagOutDir
	} else {
		cfg.OutDir = resolvePathRelativeTo(cfg.OutDir, projectRoot)
	}
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	// Materialize codegen defaults and validate the result
	cfg.Codegen = cfg.GetCodegenConfig()
	if err := ValidateCodegen(cfg.Codegen); err != nil {
		return nil, fmt.Errorf("invalid codegen configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	// Match ${VAR} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
