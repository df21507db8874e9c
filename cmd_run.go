package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/rom"
	"github.com/kapitanov/chip8emu/internal/vm"
)

// machineFlags are shared by every command that runs a program.
type machineFlags struct {
	speed int
	seed  uint64
	watch bool
}

func (f *machineFlags) register(cmd *cobra.Command, watch bool) {
	cmd.Flags().IntVar(&f.speed, "speed", vm.DefaultStepsPerFrame, "instructions executed per frame")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for the random number instruction (0 picks a random seed)")
	if watch {
		cmd.Flags().BoolVar(&f.watch, "watch", false, "reload and reboot when the ROM file changes")
	}
}

func (f *machineFlags) newMachine(path string) (*vm.VM, error) {
	machine := f.emptyMachine()
	if err := loadROM(machine, path); err != nil {
		return nil, err
	}

	return machine, nil
}

func (f *machineFlags) emptyMachine() *vm.VM {
	var machineOpts []vm.Option
	if f.seed != 0 {
		machineOpts = append(machineOpts, vm.WithRandom(vm.NewSeededRandom(f.seed)))
	}

	return vm.New(machineOpts...)
}

func loadROM(machine *vm.VM, path string) error {
	program, err := rom.Read(path)
	if err != nil {
		return err
	}

	if err := machine.Load(program); err != nil {
		return fmt.Errorf("unable to load %q: %w", path, err)
	}

	return nil
}

func newRunCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run PATH_TO_ROM_FILE",
		Short: "Run a program in a window",
		Args:  cobra.ExactArgs(1),
	}

	var flags machineFlags
	flags.register(cmd, true)
	scale := cmd.Flags().Int("scale", hal.DefaultScale, "window pixels per CHIP-8 pixel")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		if err := opts.setupLogging(os.Stderr); err != nil {
			return err
		}
		defer opts.closeLog()

		path := args[0]
		machine, err := flags.newMachine(path)
		if err != nil {
			return err
		}

		h, err := hal.New(hal.Config{Title: path, Scale: *scale})
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		return runMachine(machine, h, path, &flags)
	}

	return cmd
}

// runMachine drives machine until the user quits. Reboot requests restart
// the program; with --watch the ROM is read from disk again first.
func runMachine(machine *vm.VM, h vm.HAL, path string, flags *machineFlags) error {
	if flags.watch {
		w, err := rom.Watch(path, rom.DefaultSettleDelay)
		if err != nil {
			return err
		}
		defer w.Close()

		h = &watchedHAL{HAL: h, changed: w.Changed()}
	}

	cfg := vm.RunConfig{StepsPerFrame: flags.speed}
	for {
		err := machine.Run(h, cfg)

		if errors.Is(err, vm.ErrQuit) {
			return nil
		}

		if errors.Is(err, vm.ErrReboot) {
			if flags.watch {
				reload(machine, path)
			}
			slog.Info("reboot")
			continue
		}

		return fmt.Errorf("program stopped: %w", err)
	}
}

// reload keeps the previous program when the file on disk cannot be loaded.
func reload(machine *vm.VM, path string) {
	if err := loadROM(machine, path); err != nil {
		slog.Error("reload failed", "err", err)
	}
}

// watchedHAL turns ROM file changes into reboot requests.
type watchedHAL struct {
	vm.HAL
	changed <-chan struct{}
}

func (h *watchedHAL) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	select {
	case <-h.changed:
		slog.Info("rom changed")
		return vm.ErrReboot
	default:
	}

	return h.HAL.ReadInput(keyDown, keyUp)
}
