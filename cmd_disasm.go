package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kapitanov/chip8emu/internal/rom"
	"github.com/kapitanov/chip8emu/internal/vm"
)

func newDisasmCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print a program listing",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := opts.setupLogging(os.Stderr); err != nil {
			return err
		}
		defer opts.closeLog()

		program, err := rom.Read(args[0])
		if err != nil {
			return err
		}

		return vm.Disassemble(cmd.OutOrStdout(), program)
	}

	return cmd
}
