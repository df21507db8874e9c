package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kapitanov/chip8emu/internal/term"
)

func newTermCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term PATH_TO_ROM_FILE",
		Short: "Run a program inside the terminal",
		Args:  cobra.ExactArgs(1),
	}

	var flags machineFlags
	flags.register(cmd, true)
	hold := cmd.Flags().Int("hold", term.DefaultHoldFrames, "frames a key stays pressed after the last key event")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		// The screen owns the terminal; logs only go to --log-file.
		if err := opts.setupLogging(io.Discard); err != nil {
			return err
		}
		defer opts.closeLog()

		path := args[0]
		machine, err := flags.newMachine(path)
		if err != nil {
			return err
		}

		h, err := term.New(nil, term.Config{HoldFrames: *hold})
		if err != nil {
			return fmt.Errorf("unable to initialize terminal: %w", err)
		}
		defer h.Shutdown()

		return runMachine(machine, h, path, &flags)
	}

	return cmd
}
