package cli

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dl/fileinfo/internal/input"
	"github.com/dl/fileinfo/internal/output"
	"github.com/dl/fileinfo/internal/resolve"
	"github.com/dl/fileinfo/internal/scheduler"
	"github.com/dl/fileinfo/internal/script"
)

// Exit codes returned by Run.
const (
	ExitOK       = 0 // every path resolved
	ExitNotFound = 1 // at least one path did not resolve
	ExitError    = 2 // usage, I/O or script error
)

// Run executes the command with the given config, writing results to stdout.
func Run(cfg Config) int {
	return RunTo(cfg, output.NewWriter(), os.Stderr)
}

// RunTo is Run with explicit output and log destinations.
func RunTo(cfg Config, stdout, stderr io.Writer) int {
	logger := NewLogger(stderr, cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid arguments", "err", err)
		return ExitError
	}

	resolver := resolve.New(
		resolve.WithReader(input.NewAdaptiveReader(cfg.MmapThreshold)),
		resolve.WithLogger(logger),
	)

	if cfg.RunScripts {
		return runScripts(cfg, resolver, stdout, logger)
	}
	return runResolve(cfg, resolver, stdout, logger)
}

// NewLogger returns the stderr logger: warnings by default, debug when verbose.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "fileinfo",
	})
}

func runResolve(cfg Config, resolver *resolve.Resolver, stdout io.Writer, logger *log.Logger) int {
	var formatter output.Formatter
	if cfg.JSONOutput {
		formatter = output.NewJSONFormatter(cfg.ShowContent)
	} else {
		styles := output.NoStyles()
		if useColor(cfg.Color) {
			styles = output.NewStyles()
		}
		formatter = output.NewTextFormatter(styles, cfg.ShowContent)
	}

	sched := scheduler.New(cfg.Workers, resolver, cfg.BaseDir)
	resultCh := sched.Run(scheduler.Paths(cfg.Paths))

	code := ExitOK
	ow := output.NewOrderedWriter(stdout, formatter)
	err := ow.WriteOrdered(resultCh, func(r output.Result) {
		switch {
		case r.Found():
		case errors.Is(r.Err, resolve.ErrNotFound):
			logger.Warn("not found", "path", r.Path)
			code = max(code, ExitNotFound)
		default:
			logger.Warn("unreadable", "path", r.Path, "err", r.Err)
			code = ExitError
		}
	})
	if err != nil {
		logger.Error("write failed", "err", err)
		return ExitError
	}
	return code
}

func runScripts(cfg Config, resolver *resolve.Resolver, stdout io.Writer, logger *log.Logger) int {
	engine := script.New(script.WithResolver(resolver), script.WithLogger(logger))
	defer engine.Close()

	code := ExitOK
	for _, path := range cfg.Paths {
		exports, err := engine.RunFile(path, cfg.BaseDir)
		if errors.Is(err, resolve.ErrNotFound) {
			logger.Warn("not found", "path", path)
			code = max(code, ExitNotFound)
			continue
		}
		if err != nil {
			diag, herr := engine.HandleException(err)
			if herr != nil {
				diag = err.Error()
			}
			logger.Error("script failed", "path", path, "diagnostic", diag)
			code = ExitError
			continue
		}

		s, err := engine.Stringify(exports)
		if err != nil {
			logger.Error("cannot serialize exports", "path", path, "err", err)
			code = ExitError
			continue
		}
		if _, err := io.WriteString(stdout, s+"\n"); err != nil {
			logger.Error("write failed", "err", err)
			return ExitError
		}
	}
	return code
}

func useColor(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return output.StdoutIsTerminal()
}
