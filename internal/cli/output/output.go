// Package output renders CLI results as styled text, markdown, or JSON.
//
// Mode selection is environment-aware: interactive terminals get styled
// text, pipes and scripts get markdown, and --output overrides both.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto picks text on a terminal and markdown everywhere else.
	ModeAuto Mode = "auto"
	// ModeText is styled human-readable output.
	ModeText Mode = "text"
	// ModeMarkdown is plain markdown for pipes, scripts, and agents.
	ModeMarkdown Mode = "markdown"
	// ModeJSON is machine-readable JSON.
	ModeJSON Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting terminal capability from out.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
// Tests use this to pin the auto-mode resolution.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: DefaultStyles(isTTY),
	}
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to an interactive terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Writer returns the primary output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Styles returns the style set for direct rendering.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a line to the primary output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted output to the primary output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a section header in the effective mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		switch level {
		case 1:
			r.Println(r.styles.Header1.Render(text))
		default:
			r.Println(r.styles.Header2.Render(text))
		}
		return
	}
	r.Println(FormatHeader(level, text))
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Success.Render("✓ " + msg))
		return
	}
	r.Println(msg)
}

// Error writes an error message to the error output.
func (r *Renderer) Error(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "Error: "+msg)
}

// Warning writes a warning message.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Warning.Render("! " + msg))
		return
	}
	r.Println("Warning: " + msg)
}

// Muted writes a low-emphasis message.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Muted.Render(msg))
		return
	}
	r.Println(msg)
}

// StatusLine writes one name with a status marker and an optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.EffectiveMode() == ModeText {
		marker := r.statusMarker(status)
		line := fmt.Sprintf("  %s %s", marker, name)
		if detail != "" {
			line += " " + r.styles.Muted.Render("("+detail+")")
		}
		r.Println(line)
		return
	}
	line := fmt.Sprintf("- %s: %s", name, status)
	if detail != "" {
		line += " (" + detail + ")"
	}
	r.Println(line)
}

func (r *Renderer) statusMarker(status string) string {
	switch status {
	case "success", "written":
		return r.styles.Success.Render("✓")
	case "failed", "error":
		return r.styles.Error.Render("✗")
	case "skipped":
		return r.styles.Muted.Render("-")
	default:
		return r.styles.Muted.Render("•")
	}
}

// JSON encodes v as indented JSON to the primary output.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
