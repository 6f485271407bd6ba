package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/hexlit-dev/hexlit/internal/cli/output"
	"github.com/hexlit-dev/hexlit/pkg/expand"
	"github.com/hexlit-dev/hexlit/pkg/lexer"
	"github.com/hexlit-dev/hexlit/pkg/render"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [literal]",
		Short: "Show what a tagged literal expands to",
		Long: `Expand a tagged hex literal and print the resulting Go expression.

With an argument, expands it once and exits. Without one, starts an
interactive session that expands every line you type.`,
		Example: `  # One-shot expansion
  hexlit explain 0x06_object

  # Address derivation
  hexlit explain 0xdead_address

  # Whole value shapes work too
  hexlit explain '{0x01_object, 0x02_object}'

  # Interactive session
  hexlit explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runExplainOnce(cmd, args[0])
			}
			return runExplainREPL(cmd)
		},
	}

	return cmd
}

func runExplainOnce(cmd *cobra.Command, input string) error {
	cc := NewCommandContextWithoutEngine(cmd)
	r := cc.Renderer

	res := explainInput(input, explainQualifier(cc))

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(res); err != nil {
			return err
		}
	case output.ModeMarkdown:
		explainMarkdown(r, res)
	default:
		explainText(r, res)
	}

	if res.Error != "" {
		return fmt.Errorf("expansion failed")
	}
	return nil
}

// explainInput expands one input line into a Go expression.
func explainInput(input, qualifier string) output.ExplainOutput {
	res := output.ExplainOutput{Input: input}

	stream, err := lexer.Lex(input, "explain")
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			res.Error = lexErr.Message
			res.Line = lexErr.Pos.Line
			res.Column = lexErr.Pos.Column
		} else {
			res.Error = err.Error()
		}
		return res
	}

	exp := expand.New(expand.Options{Qualifier: qualifier})
	expanded, err := exp.Transform(stream)
	if err != nil {
		var terr *expand.TransformError
		if errors.As(err, &terr) {
			res.Error = terr.Message()
			res.Line = terr.Position().Line
			res.Column = terr.Position().Column
		} else {
			res.Error = err.Error()
		}
		return res
	}

	res.Expanded = render.Render(expanded)
	return res
}

// explainText outputs one expansion in styled text format.
func explainText(r *output.Renderer, res output.ExplainOutput) {
	if res.Error != "" {
		r.Error(res.Error)
		if res.Line > 0 {
			r.Muted(fmt.Sprintf("  at %d:%d", res.Line, res.Column))
		}
		return
	}
	r.Println(res.Expanded)
}

// explainMarkdown outputs one expansion in markdown format.
func explainMarkdown(r *output.Renderer, res output.ExplainOutput) {
	r.Println(output.FormatKeyValue("Input", res.Input))
	if res.Error != "" {
		r.Println(output.FormatKeyValue("Error", res.Error))
		return
	}
	r.Println("")
	r.Println(output.FormatCodeBlock("go", res.Expanded))
}

func runExplainREPL(cmd *cobra.Command) error {
	cc := NewCommandContextWithoutEngine(cmd)
	qualifier := explainQualifier(cc)

	// Project-local history, next to the state database
	historyFile := filepath.Join(filepath.Dir(cc.Cfg.StatePath), "explain_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hexlit> ",
		HistoryFile:     historyFile,
		AutoComplete:    newExplainCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "hexlit explain (qualifier: %s)\n", qualifier)
	_, _ = fmt.Fprintln(out, "Type a tagged literal to expand it, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit, q := handleExplainDotCommand(cmd, line, qualifier)
			qualifier = q
			if quit {
				break
			}
			continue
		}

		res := explainInput(line, qualifier)
		if res.Error != "" {
			if res.Line > 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error at %d:%d: %s\n", res.Line, res.Column, res.Error)
			} else {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", res.Error)
			}
			continue
		}
		_, _ = fmt.Fprintln(out, res.Expanded)
	}

	return nil
}

func handleExplainDotCommand(cmd *cobra.Command, line, qualifier string) (quit bool, newQualifier string) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true, qualifier

	case ".help":
		printExplainHelp(cmd.OutOrStdout())

	case ".qualifier":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Qualifier: %s\n", qualifier)
		} else {
			qualifier = parts[1]
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Qualifier set to %s\n", qualifier)
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false, qualifier
}

func printExplainHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .qualifier [q]   Show or set the constructor qualifier
  .clear           Clear the screen
  .quit / .exit    Exit the session

Tips:
  - Literals end in _object or _address: 0x06_object
  - Groups expand too: {0x01_object, 0x02_object}
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newExplainCompleter completes the session's dot-commands.
func newExplainCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".qualifier"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// explainQualifier resolves the constructor qualifier from config.
func explainQualifier(cc *CommandContext) string {
	if cg := cc.Cfg.GetCodegenConfig(); cg.Qualifier != "" {
		return cg.Qualifier
	}
	return expand.DefaultQualifier
}
