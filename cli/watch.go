package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/phplex/phplex/telemetry"
)

type WatchCmd struct {
	File string `help:"Source file to watch." arg:""`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	path, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file: editors replace files on
	// save, which drops a direct watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	printInfof(ctx.Stdout, "Watching %s", pathStyle.Render(path))
	cmd.runCheck(ctx, globals, path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			printInfof(ctx.Stdout, "Change detected")
			cmd.runCheck(ctx, globals, path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, fmt.Sprintf("watch error: %v", err))
		}
	}
}

func (cmd *WatchCmd) runCheck(ctx *kong.Context, globals *Globals, path string) {
	runCtx := context.Background()

	var collector telemetry.Collector
	if globals.Telemetry {
		c := telemetry.NewTimingCollector()
		collector = c
		runCtx = telemetry.WithCollector(runCtx, collector)
	}

	source, err := readFile(path)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return
	}

	errs := checkSource(runCtx, path, source)
	if len(errs) > 0 {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(errs))
		printError(ctx.Stderr, fmt.Sprintf("%d lexical error(s) found", len(errs)))
	} else {
		printSuccess(ctx.Stdout, "Check passed")
	}

	if collector != nil {
		_, _ = fmt.Fprintln(ctx.Stderr)
		collector.Report(ctx.Stderr)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
