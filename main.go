package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type options struct {
	verbose bool
	logFile string
	logOut  io.Closer
}

func main() {
	cmd := newRootCommand(&options{})
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           filepath.Base(os.Args[0]),
		Short:         "CHIP-8 interpreter",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of the default output")

	cmd.AddCommand(
		newRunCommand(opts),
		newTermCommand(opts),
		newDebugCommand(opts),
		newDisasmCommand(opts),
	)

	return cmd
}

// setupLogging installs the default logger. Output goes to --log-file when
// given and to w otherwise.
func (opts *options) setupLogging(w io.Writer) error {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("unable to open log file %q: %w", opts.logFile, err)
		}
		opts.logOut = f
		w = f
	}

	loggerOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if opts.verbose {
		loggerOpts.Level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, loggerOpts)))
	return nil
}

// closeLog closes --log-file and points the default logger back at stderr.
func (opts *options) closeLog() {
	if opts.logOut == nil {
		return
	}

	if err := opts.logOut.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to close log file: %v\n", err)
	}
	opts.logOut = nil
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}
