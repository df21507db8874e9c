package main

import (
	"github.com/spf13/cobra"

	"github.com/kapitanov/chip8emu/internal/debugger"
)

func newDebugCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug PATH_TO_ROM_FILE",
		Short: "Step through a program in an interactive debugger",
		Args:  cobra.ExactArgs(1),
	}

	var flags machineFlags
	flags.register(cmd, false)

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		d, err := newDebugger(opts, &flags, args[0])
		defer opts.closeLog()
		if err != nil {
			return err
		}

		return d.Run()
	}

	return cmd
}

// newDebugger routes logging into the log pane before the ROM is loaded, so
// nothing is written to the terminal the UI is about to take over.
func newDebugger(opts *options, flags *machineFlags, path string) (*debugger.Debugger, error) {
	machine := flags.emptyMachine()
	d := debugger.New(debugger.NewSession(machine, flags.speed))
	if err := opts.setupLogging(d.LogWriter()); err != nil {
		return nil, err
	}

	if err := loadROM(machine, path); err != nil {
		return nil, err
	}
	return d, nil
}
