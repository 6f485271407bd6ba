// Package engine orchestrates manifest discovery and Go code generation.
// discovery.go contains the manifest scanning and parsing pass.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hexlit-dev/hexlit/internal/gen"
	"github.com/hexlit-dev/hexlit/internal/manifest"
)

// DiscoveryOptions configures the discovery process.
type DiscoveryOptions struct {
	LiteralsDir string // Override default literals directory
}

// ManifestInfo describes one discovered manifest.
type ManifestInfo struct {
	Path        string // absolute path to the .hexlit file
	RelPath     string // path relative to the literals directory
	Package     string // package the manifest generates into
	Qualifier   string // qualifier override from the header, if any
	Description string
	Entries     int
	OutputPath  string
	Err         string // parse error, empty when the manifest is valid
}

// DiscoveryError represents a non-fatal error during discovery.
type DiscoveryError struct {
	Path    string
	Message string
}

// DiscoveryResult contains statistics about the discovery run.
type DiscoveryResult struct {
	Manifests []ManifestInfo

	Total  int
	Parsed int
	Failed int

	// Errors (non-fatal)
	Errors []DiscoveryError

	// Timing
	Duration time.Duration
}

// HasErrors returns true if any errors occurred.
func (r *DiscoveryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a human-readable summary.
func (r *DiscoveryResult) Summary() string {
	return fmt.Sprintf("Manifests: %d total (%d parsed, %d failed) | Duration: %s",
		r.Total, r.Parsed, r.Failed, r.Duration.Round(time.Millisecond))
}

// Discover scans the literals directory and parses every manifest it finds.
// Parse failures are collected, not fatal, so one broken manifest never
// hides the rest of the project.
func (e *Engine) Discover(opts DiscoveryOptions) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	dir := e.literalsDir
	if opts.LiteralsDir != "" {
		dir = opts.LiteralsDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return result, fmt.Errorf("failed to resolve literals directory: %w", err)
	}

	e.logger.Info("starting discovery", "literals_dir", absDir)

	paths, err := listManifests(absDir)
	if err != nil {
		return result, err
	}

	for _, path := range paths {
		result.Total++

		rel, relErr := filepath.Rel(absDir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		info := ManifestInfo{
			Path:       path,
			RelPath:    rel,
			OutputPath: e.outputPathFor(absDir, path),
		}

		m, parseErr := manifest.Load(path)
		if parseErr != nil {
			e.logger.Debug("manifest parse error", "path", path, "error", parseErr.Error())
			info.Err = parseErr.Error()
			result.Failed++
			result.Errors = append(result.Errors, DiscoveryError{Path: path, Message: parseErr.Error()})
		} else {
			info.Package = gen.PackageName(m)
			info.Qualifier = m.Qualifier
			info.Description = m.Description
			info.Entries = len(m.Entries)
			result.Parsed++
		}

		result.Manifests = append(result.Manifests, info)
	}

	result.Duration = time.Since(start)

	e.logger.Info("discovery completed",
		"total", result.Total,
		"parsed", result.Parsed,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// listManifests returns the absolute paths of all .hexlit files under dir,
// sorted for deterministic processing.
func listManifests(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("literals directory does not exist: %s", dir)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".hexlit") {
			return nil
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return absErr
		}
		paths = append(paths, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("manifest scan failed: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// outputPathFor maps a manifest into the output tree. Each manifest gets its
// own package directory so sibling manifests never collide on package names:
//
//	<literals>/sui/world.hexlit -> <out>/sui/world/world.hexlit.go
func (e *Engine) outputPathFor(literalsDir, path string) string {
	rel, err := filepath.Rel(literalsDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	base := strings.TrimSuffix(filepath.Base(rel), ".hexlit")
	return filepath.Join(e.outDir, filepath.Dir(rel), base, gen.OutputName(path))
}

// computeHash generates a SHA256 hash of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:8]) // Use first 8 bytes for brevity
}
