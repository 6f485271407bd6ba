package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/hexlit-dev/hexlit/internal/engine"
	"github.com/hexlit-dev/hexlit/internal/state"
	"github.com/spf13/cobra"
)

// ExpandOptions holds options for the expand command.
type ExpandOptions struct {
	Force  bool
	Watch  bool
	Select []string
}

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand manifests into generated Go files",
		Long: `Expand every .hexlit manifest in the literals directory into a generated
Go source file.

Manifests whose content is unchanged since the last successful run are
skipped. A manifest that fails to expand still produces a generated file
carrying a compile error pinned to the failing position, so stale output
never survives next to a broken manifest.

Output adapts to environment:
  - Terminal: Styled progress with per-file status
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Expand all manifests
  hexlit expand

  # Regenerate everything, ignoring stored fingerprints
  hexlit expand --force

  # Expand specific manifests
  hexlit expand --select world.hexlit --select sui/tokens.hexlit

  # Re-expand on every manifest change
  hexlit expand --watch`,
		Aliases: []string{"generate", "gen"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExpand(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Regenerate all manifests, ignoring stored fingerprints")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch the literals directory and re-expand on change")
	cmd.Flags().StringSliceVarP(&opts.Select, "select", "s", nil, "Manifests to expand, relative to the literals directory (repeatable)")

	return cmd
}

func runExpand(cmd *cobra.Command, opts *ExpandOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Watch {
		return watchExpand(cc, opts)
	}

	res, err := expandOnce(cmd.Context(), cc, opts)
	if err != nil {
		return err
	}
	if err := renderExpand(cc.Renderer, cc.Engine.GetLiteralsDir(), res); err != nil {
		return err
	}
	if res.HasFailures() {
		return fmt.Errorf("%d manifest(s) failed to expand", res.Failed)
	}
	return nil
}

// expandOnce performs a single generation run with spinner feedback on TTYs.
func expandOnce(ctx context.Context, cc *CommandContext, opts *ExpandOptions) (*engine.RunResult, error) {
	r := cc.Renderer

	var spinner *output.Spinner
	if r.EffectiveMode() == output.ModeText {
		spinner = r.NewSpinner("Expanding manifests...")
		spinner.Start()
	}

	res, err := cc.Engine.Run(ctx, engine.RunOptions{Force: opts.Force, Paths: opts.Select})
	if err != nil {
		if spinner != nil {
			spinner.Fail("Expansion failed")
		}
		return nil, err
	}

	if spinner != nil {
		if res.HasFailures() {
			spinner.Fail(fmt.Sprintf("%d of %d manifests failed", res.Failed, res.Total))
		} else {
			spinner.Success(fmt.Sprintf("Expanded %d manifests (%d written, %d skipped)",
				res.Total, res.Written, res.Skipped))
		}
	}

	return res, nil
}

// renderExpand dispatches run results to the effective output mode.
func renderExpand(r *output.Renderer, literalsDir string, res *engine.RunResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return expandJSON(r, res)
	case output.ModeMarkdown:
		return expandMarkdown(r, literalsDir, res)
	default:
		return expandText(r, literalsDir, res)
	}
}

// expandText outputs run results in styled text format.
func expandText(r *output.Renderer, literalsDir string, res *engine.RunResult) error {
	if len(res.Files) > 0 {
		r.Println("")
		r.Header(2, "Manifests")
		for _, f := range res.Files {
			r.StatusLine(displayPath(literalsDir, f.Path), string(f.Status), fileDetail(f))
		}
	}

	r.Println("")
	r.Muted(res.Summary())
	return nil
}

// expandMarkdown outputs run results in markdown format.
func expandMarkdown(r *output.Renderer, literalsDir string, res *engine.RunResult) error {
	r.Println(output.FormatHeader(1, "Expansion Results"))
	r.Println("")
	r.Println(output.FormatKeyValue("Run ID", res.RunID))
	r.Println(output.FormatKeyValue("Manifests", fmt.Sprintf("%d", res.Total)))
	r.Println(output.FormatKeyValue("Written", fmt.Sprintf("%d", res.Written)))
	r.Println(output.FormatKeyValue("Skipped", fmt.Sprintf("%d", res.Skipped)))
	r.Println(output.FormatKeyValue("Failed", fmt.Sprintf("%d", res.Failed)))
	r.Println(output.FormatKeyValue("Pruned", fmt.Sprintf("%d", res.Pruned)))

	if len(res.Files) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Manifests"))
		for _, f := range res.Files {
			r.StatusLine(displayPath(literalsDir, f.Path), string(f.Status), fileDetail(f))
		}
	}

	return nil
}

// expandJSON outputs run results in JSON format.
func expandJSON(r *output.Renderer, res *engine.RunResult) error {
	files := make([]output.FileDetail, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, output.FileDetail{
			Path:       f.Path,
			OutputPath: f.OutputPath,
			Status:     string(f.Status),
			Message:    f.Message,
			Entries:    f.Entries,
			DurationMS: f.Duration.Milliseconds(),
		})
	}

	return r.JSON(output.ExpandOutput{
		RunID: res.RunID,
		Files: files,
		Summary: output.ExpandSummary{
			Total:      res.Total,
			Written:    res.Written,
			Skipped:    res.Skipped,
			Failed:     res.Failed,
			Pruned:     res.Pruned,
			DurationMS: res.Duration.Milliseconds(),
		},
	})
}

// fileDetail summarizes a per-file result for status lines.
func fileDetail(f engine.FileResult) string {
	if f.Status == state.FileStatusFailed && f.Message != "" {
		return f.Message
	}
	if f.Entries == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", f.Entries)
}

// displayPath shortens an absolute manifest path to its literals-relative form.
func displayPath(literalsDir, path string) string {
	if rel, err := filepath.Rel(literalsDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// watchExpand re-expands whenever a manifest changes. The first run happens
// immediately; later runs are debounced so editor save bursts collapse into
// a single regeneration.
func watchExpand(cc *CommandContext, opts *ExpandOptions) error {
	r := cc.Renderer
	literalsDir := cc.Engine.GetLiteralsDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	runOnce := func() {
		res, err := cc.Engine.Run(ctx, engine.RunOptions{Force: opts.Force, Paths: opts.Select})
		if err != nil {
			if ctx.Err() == nil {
				r.Error(err.Error())
			}
			return
		}
		_ = renderExpand(r, literalsDir, res)
	}

	runOnce()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, literalsDir); err != nil {
		return fmt.Errorf("failed to watch literals directory: %w", err)
	}

	r.Println("")
	r.Muted(fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", literalsDir))

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// New directories need to join the watch set before their
			// first manifest event can be seen.
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watchDirRecursive(watcher, event.Name)
				}
			}

			if filepath.Ext(event.Name) != ".hexlit" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			name := filepath.Base(event.Name)
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				r.Println("")
				r.Muted(fmt.Sprintf("Change detected: %s", name))
				runOnce()
			})
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Error(fmt.Sprintf("watch error: %v", werr))
		}
	}
}

// watchDirRecursive adds dir and every non-hidden subdirectory to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
