package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/phplex/phplex/lexer"
	"github.com/phplex/phplex/syntax"
)

type DumpCmd struct {
	File   FileOrStdin `help:"Source filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Output string      `help:"Destination file for the JSON token stream." short:"o" required:""`
	Force  bool        `help:"Overwrite the destination without asking." short:"f"`
}

func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	source, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if _, err := os.Stat(cmd.Output); err == nil && !cmd.Force {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", cmd.Output))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			printError(ctx.Stderr, fmt.Sprintf("refusing to overwrite %s", cmd.Output))
			return NewCommandError(1)
		}
	}

	mgr := lexer.NewSourceManager()
	id := mgr.AddBuffer(cmd.File.GetAbsoluteFilename(), source)

	var tokens []tokenJSON
	lexer.Tokenize(mgr, id, func(l *lexer.Lexer, tok syntax.Token) bool {
		tokens = append(tokens, tokenJSON{
			Kind:   tok.Kind.String(),
			Start:  tok.Span.Start,
			Length: tok.Span.Length,
			Text:   tok.Text(l.Source()),
			Value:  formatValue(tok.Value),
		})
		return true
	})

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	if err := os.WriteFile(cmd.Output, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %d token(s) to %s", len(tokens), pathStyle.Render(cmd.Output)))
	return nil
}
