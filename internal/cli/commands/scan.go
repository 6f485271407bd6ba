package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/hexlit-dev/hexlit/internal/engine"
	"github.com/hexlit-dev/hexlit/internal/manifest"
	"github.com/hexlit-dev/hexlit/pkg/expand"
)

// titleCaser capitalizes literal kinds for display ("object" -> "Object").
var titleCaser = cases.Title(language.English)

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover and inspect manifests without generating",
		Long: `Scan the literals directory, parse every manifest, and report the tagged
literals each entry carries. Nothing is generated and no fingerprints are
updated.

Output adapts to environment:
  - Terminal: Styled table of entries and literals
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Scan all manifests
  hexlit scan

  # Scan as JSON for tooling
  hexlit scan --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd)
		},
	}

	return cmd
}

func runScan(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cc.Engine.Discover(engine.DiscoveryOptions{})
	if err != nil {
		return fmt.Errorf("failed to scan literals directory: %w", err)
	}

	details := collectScanDetails(res)

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return scanJSON(r, res, details)
	case output.ModeMarkdown:
		return scanMarkdown(r, res, details)
	default:
		return scanText(r, res, details)
	}
}

// collectScanDetails re-reads parsed manifests to inspect their entries.
// Discovery only counts entries; the per-literal breakdown needs the token
// streams, which are not retained in the discovery result.
func collectScanDetails(res *engine.DiscoveryResult) []output.ManifestDetail {
	details := make([]output.ManifestDetail, 0, len(res.Manifests))
	for _, info := range res.Manifests {
		d := output.ManifestDetail{
			Path:        info.RelPath,
			Package:     info.Package,
			Qualifier:   info.Qualifier,
			Description: info.Description,
			OutputPath:  info.OutputPath,
			Error:       info.Err,
		}
		if info.Err == "" {
			m, err := manifest.Load(info.Path)
			if err != nil {
				d.Error = err.Error()
			} else {
				d.Entries = entryDetails(m)
			}
		}
		details = append(details, d)
	}
	return details
}

// entryDetails inspects each entry's token stream for tagged literals.
func entryDetails(m *manifest.Manifest) []output.EntryDetail {
	entries := make([]output.EntryDetail, 0, len(m.Entries))
	for _, e := range m.Entries {
		ed := output.EntryDetail{Name: e.Name, Line: e.Pos.Line}
		infos, err := expand.Inspect(e.Value)
		if err != nil {
			ed.Error = err.Error()
		}
		for _, li := range infos {
			ed.Literals = append(ed.Literals, output.LiteralDetail{
				Text:      li.Text,
				Kind:      li.Target.String(),
				Payload:   li.Payload,
				Line:      li.Pos.Line,
				Column:    li.Pos.Column,
				EndColumn: li.Span.End.Column,
			})
		}
		entries = append(entries, ed)
	}
	return entries
}

// scanText outputs scan results as a styled table.
func scanText(r *output.Renderer, res *engine.DiscoveryResult, details []output.ManifestDetail) error {
	r.Header(1, fmt.Sprintf("Manifests (%d total)", res.Total))
	r.Println("")

	rows, literals := scanTableRows(details)
	if len(rows) == 0 {
		r.Muted("No literals found")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Manifest", "Entry", "Kind", "Payload", "Position"})
		t.AppendRows(rows)
		t.Render()
		r.Printf("(%d literals)\n", literals)
	}

	if failed := failedManifests(details); len(failed) > 0 {
		r.Println("")
		r.Header(2, "Parse Errors")
		for _, d := range failed {
			r.StatusLine(d.Path, "failed", d.Error)
		}
	}

	r.Println("")
	r.Muted(res.Summary())
	return nil
}

// scanTableRows flattens literal details into table rows.
func scanTableRows(details []output.ManifestDetail) ([]table.Row, int) {
	var rows []table.Row
	literals := 0
	for _, d := range details {
		if d.Error != "" {
			continue
		}
		for _, e := range d.Entries {
			if e.Error != "" {
				rows = append(rows, table.Row{d.Path, e.Name, "", "", e.Error})
				continue
			}
			for _, li := range e.Literals {
				rows = append(rows, table.Row{
					d.Path,
					e.Name,
					titleCaser.String(li.Kind),
					fmt.Sprintf("%d bytes", li.Payload),
					fmt.Sprintf("%d:%d", li.Line, li.Column),
				})
				literals++
			}
		}
	}
	return rows, literals
}

// scanMarkdown outputs scan results in markdown format.
func scanMarkdown(r *output.Renderer, res *engine.DiscoveryResult, details []output.ManifestDetail) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Manifests (%d total)", res.Total)))
	r.Println("")

	for _, d := range details {
		r.Println(output.FormatHeader(2, d.Path))
		if d.Error != "" {
			r.Println(output.FormatKeyValue("Error", d.Error))
			r.Println("")
			continue
		}

		r.Println(output.FormatKeyValue("Package", d.Package))
		if d.Qualifier != "" {
			r.Println(output.FormatKeyValue("Qualifier", d.Qualifier))
		}
		if d.Description != "" {
			r.Println(output.FormatKeyValue("Description", d.Description))
		}
		r.Println(output.FormatKeyValue("Output", d.OutputPath))

		if len(d.Entries) > 0 {
			r.Println("")
			for _, e := range d.Entries {
				if e.Error != "" {
					r.Printf("- %s: %s\n", e.Name, e.Error)
					continue
				}
				for _, li := range e.Literals {
					r.Printf("- %s: %s, %d bytes (%d:%d)\n",
						e.Name, titleCaser.String(li.Kind), li.Payload, li.Line, li.Column)
				}
			}
		}
		r.Println("")
	}

	r.Println(output.FormatKeyValue("Summary", res.Summary()))
	return nil
}

// scanJSON outputs scan results in JSON format.
func scanJSON(r *output.Renderer, res *engine.DiscoveryResult, details []output.ManifestDetail) error {
	return r.JSON(output.ScanOutput{
		Manifests: details,
		Summary: output.ScanSummary{
			Total:      res.Total,
			Parsed:     res.Parsed,
			Failed:     res.Failed,
			DurationMS: res.Duration.Milliseconds(),
		},
	})
}

// failedManifests returns the manifests that could not be parsed.
func failedManifests(details []output.ManifestDetail) []output.ManifestDetail {
	var failed []output.ManifestDetail
	for _, d := range details {
		if d.Error != "" {
			failed = append(failed, d)
		}
	}
	return failed
}
