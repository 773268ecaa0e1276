package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kong"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/phplex/phplex/lexer"
	"github.com/phplex/phplex/output"
	"github.com/phplex/phplex/syntax"
)

type TokensCmd struct {
	File       FileOrStdin `help:"Source filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	WithTrivia bool        `help:"Print leading and trailing trivia pieces for each token."`
	JSON       bool        `help:"Emit one JSON object per token instead of styled text."`
	Stats      bool        `help:"Print a per-kind token count summary."`
}

// tokenJSON is the wire shape of one token in --json mode.
type tokenJSON struct {
	Kind   string `json:"kind"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Text   string `json:"text"`
	Value  string `json:"value,omitempty"`
}

func (cmd *TokensCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	source, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	mgr := lexer.NewSourceManager()
	id := mgr.AddBuffer(cmd.File.GetAbsoluteFilename(), source)

	styles := output.NewStyles(ctx.Stdout)
	enc := json.NewEncoder(ctx.Stdout)
	counts := map[syntax.TokenKind]int{}

	lexer.Tokenize(mgr, id, func(l *lexer.Lexer, tok syntax.Token) bool {
		counts[tok.Kind]++
		if cmd.JSON {
			_ = enc.Encode(tokenJSON{
				Kind:   tok.Kind.String(),
				Start:  tok.Span.Start,
				Length: tok.Span.Length,
				Text:   tok.Text(l.Source()),
				Value:  formatValue(tok.Value),
			})
			return true
		}

		if cmd.WithTrivia {
			for _, piece := range tok.Leading {
				_, _ = fmt.Fprintf(ctx.Stdout, "    %s\n", styles.Dim(describeTrivia(piece)))
			}
		}
		line := fmt.Sprintf("%6d..%-6d %-24s %s",
			tok.Span.Start, tok.Span.End(), tok.Kind.String(),
			styles.Token(tok.Kind, compactText(tok.Text(l.Source()))))
		if v := formatValue(tok.Value); v != "" {
			line += styles.Dim(fmt.Sprintf("  = %s", v))
		}
		_, _ = fmt.Fprintln(ctx.Stdout, line)
		if cmd.WithTrivia {
			for _, piece := range tok.Trailing {
				_, _ = fmt.Fprintf(ctx.Stdout, "    %s\n", styles.Dim(describeTrivia(piece)))
			}
		}
		return true
	}, lexer.WithTriviaRetention(lexer.WithTrivia))

	if cmd.Stats {
		kinds := maps.Keys(counts)
		slices.SortFunc(kinds, func(a, b syntax.TokenKind) int {
			return counts[b] - counts[a]
		})
		_, _ = fmt.Fprintln(ctx.Stdout)
		for _, kind := range kinds {
			_, _ = fmt.Fprintf(ctx.Stdout, "%6d  %s\n", counts[kind], kind)
		}
	}

	return nil
}

func describeTrivia(piece syntax.TriviaPiece) string {
	if piece.Text != "" {
		return fmt.Sprintf("%s %q", piece.Kind, compactText(piece.Text))
	}
	return fmt.Sprintf("%s x%d", piece.Kind, piece.Count)
}

func formatValue(v syntax.Value) string {
	switch v.Kind() {
	case syntax.ValueInt:
		return fmt.Sprintf("%d", v.Int())
	case syntax.ValueDouble:
		return fmt.Sprintf("%g", v.Double())
	case syntax.ValueString:
		return fmt.Sprintf("%q", compactText(v.Str()))
	default:
		return ""
	}
}

// compactText keeps single-line previews readable.
func compactText(s string) string {
	if len(s) > 40 {
		s = s[:40] + "…"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\n':
			out = append(out, '␤')
		case '\r', '\t':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
