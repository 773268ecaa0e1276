package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/phplex/phplex/lexer"
	"github.com/phplex/phplex/syntax"
	"github.com/phplex/phplex/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"Source filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr)
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
		defer reportTelemetry()
	}

	source, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	errs := checkSource(runCtx, cmd.File.GetAbsoluteFilename(), source)
	if len(errs) > 0 {
		renderer := NewErrorRenderer(source)
		formatted := renderer.RenderAll(errs)
		_, _ = fmt.Fprintln(ctx.Stderr, formatted)

		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d lexical error(s) found", len(errs)))

		reportTelemetry()
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "Check passed")

	return nil
}

// checkSource tokenizes the whole buffer and collects every lexical error
// and diagnostic as a positioned error.
func checkSource(ctx context.Context, filename string, source []byte) []error {
	timer := telemetry.FromContext(ctx).Start("tokenize")
	defer timer.End()

	mgr := lexer.NewSourceManager()
	id := mgr.AddBuffer(filename, source)

	var errs []error
	sink := &lexer.DiagList{}

	l := lexer.New(mgr, id,
		lexer.WithDiagnostics(sink),
		lexer.WithCheckHeredocIndentation())

	var tok syntax.Token
	for {
		l.Lex(&tok)
		if tok.Kind == syntax.Error {
			loc := mgr.LocationForOffset(id, tok.Span.Start)
			msg := l.CurrentExceptionMessage()
			if msg == "" {
				msg = "lexical error"
			}
			errs = append(errs, lexer.NewLexError(mgr, loc, msg, 0))
			l.ClearExceptionFlag()
		}
		if tok.Kind == syntax.EndOfFile {
			break
		}
	}
	if l.LexExceptionOccurred() {
		loc := mgr.LocationForOffset(id, len(source))
		errs = append(errs, lexer.NewLexError(mgr, loc, l.CurrentExceptionMessage(), 0))
	}

	for _, d := range sink.Entries {
		errs = append(errs, lexer.NewLexError(mgr, d.Loc, d.Text(), int(d.ID)))
	}
	return errs
}
