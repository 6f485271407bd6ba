package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/hexlit-dev/hexlit/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recent generation runs",
		Long: `Show generation runs recorded in the state store, newest first.

With a run ID argument, shows the per-manifest outcomes of that run
instead of the run list.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the 10 most recent runs
  hexlit runs

  # Show more history
  hexlit runs --limit 50

  # Inspect one run's per-manifest outcomes
  hexlit runs 1a2b3c4d

  # JSON for tooling
  hexlit runs --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runRunDetail(cmd, args[0])
			}
			return runRunsList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Maximum number of runs to show")

	return cmd
}

func runRunsList(cmd *cobra.Command, opts *RunsOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cc.Engine.GetStateStore().ListRuns(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	details := make([]output.RunDetail, 0, len(runs))
	for _, run := range runs {
		details = append(details, runDetail(run))
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.RunsOutput{Runs: details})
	case output.ModeMarkdown:
		return runsMarkdown(r, details)
	default:
		return runsText(r, details)
	}
}

func runRunDetail(cmd *cobra.Command, id string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cc.Engine.GetStateStore()
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	fileRuns, err := store.ListFileRuns(id)
	if err != nil {
		return fmt.Errorf("failed to list file runs: %w", err)
	}

	detail := runDetail(run)
	for _, fr := range fileRuns {
		detail.Files = append(detail.Files, output.FileDetail{
			Path:       fr.Path,
			Status:     string(fr.Status),
			Message:    fr.Message,
			DurationMS: fr.Duration.Milliseconds(),
		})
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(detail)
	case output.ModeMarkdown:
		return runDetailMarkdown(r, detail)
	default:
		return runDetailText(r, detail)
	}
}

// runDetail converts a stored run into its output form.
func runDetail(run *state.Run) output.RunDetail {
	d := output.RunDetail{
		ID:        run.ID,
		StartedAt: run.StartedAt.Format(time.RFC3339),
		Status:    string(run.Status),
		Total:     run.FilesTotal,
		Written:   run.FilesWritten,
		Skipped:   run.FilesSkipped,
		Failed:    run.FilesFailed,
		Error:     run.Error,
	}
	if run.CompletedAt != nil {
		d.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return d
}

// runsText outputs the run list as a styled table.
func runsText(r *output.Renderer, runs []output.RunDetail) error {
	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))

	if len(runs) == 0 {
		r.Muted("No runs recorded yet. Run `hexlit expand` to create one.")
		return nil
	}

	r.Println("")
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Status", "Total", "Written", "Skipped", "Failed"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			displayTime(run.StartedAt),
			run.Status,
			run.Total,
			run.Written,
			run.Skipped,
			run.Failed,
		})
	}
	t.Render()
	return nil
}

// runsMarkdown outputs the run list in markdown format.
func runsMarkdown(r *output.Renderer, runs []output.RunDetail) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Runs (%d)", len(runs))))
	r.Println("")

	if len(runs) == 0 {
		r.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		r.Println(output.FormatHeader(2, run.ID))
		r.Println(output.FormatKeyValue("Started", run.StartedAt))
		r.Println(output.FormatKeyValue("Status", run.Status))
		r.Println(output.FormatKeyValue("Manifests", fmt.Sprintf("%d written, %d skipped, %d failed of %d",
			run.Written, run.Skipped, run.Failed, run.Total)))
		if run.Error != "" {
			r.Println(output.FormatKeyValue("Error", run.Error))
		}
		r.Println("")
	}
	return nil
}

// runDetailText outputs one run's outcomes in styled text format.
func runDetailText(r *output.Renderer, run output.RunDetail) error {
	r.Header(1, fmt.Sprintf("Run %s", run.ID))
	r.Println("")
	r.Printf("  Started:  %s\n", displayTime(run.StartedAt))
	r.Printf("  Status:   %s\n", run.Status)
	r.Printf("  Files:    %d written, %d skipped, %d failed of %d\n",
		run.Written, run.Skipped, run.Failed, run.Total)
	if run.Error != "" {
		r.Printf("  Error:    %s\n", run.Error)
	}

	if len(run.Files) > 0 {
		r.Println("")
		r.Header(2, "Manifests")
		for _, f := range run.Files {
			r.StatusLine(f.Path, f.Status, f.Message)
		}
	}
	return nil
}

// runDetailMarkdown outputs one run's outcomes in markdown format.
func runDetailMarkdown(r *output.Renderer, run output.RunDetail) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Run %s", run.ID)))
	r.Println("")
	r.Println(output.FormatKeyValue("Started", run.StartedAt))
	if run.CompletedAt != "" {
		r.Println(output.FormatKeyValue("Completed", run.CompletedAt))
	}
	r.Println(output.FormatKeyValue("Status", run.Status))
	r.Println(output.FormatKeyValue("Manifests", fmt.Sprintf("%d written, %d skipped, %d failed of %d",
		run.Written, run.Skipped, run.Failed, run.Total)))
	if run.Error != "" {
		r.Println(output.FormatKeyValue("Error", run.Error))
	}

	if len(run.Files) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Manifests"))
		for _, f := range run.Files {
			r.StatusLine(f.Path, f.Status, f.Message)
		}
	}
	return nil
}

// displayTime reformats an RFC3339 timestamp for terminal display.
func displayTime(ts string) string {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}
