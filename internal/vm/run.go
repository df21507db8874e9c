package vm

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

const (
	DefaultStepsPerFrame = 10
	FrameRate            = 60
)

// HAL is the host side of the machine: display, keyboard, tone and pacing.
type HAL interface {
	ReadInput(keyDown func(Key), keyUp func(Key)) error
	Draw(gfx []byte) error
	Beep() error
	WaitForNextFrame() error
}

type RunConfig struct {
	// StepsPerFrame is the number of instructions executed between two
	// timer ticks.
	StepsPerFrame int
}

func (cfg RunConfig) stepsPerFrame() int {
	if cfg.StepsPerFrame <= 0 {
		return DefaultStepsPerFrame
	}
	return cfg.StepsPerFrame
}

// Run reboots the machine, paints the cleared screen and drives it one frame
// at a time until the HAL or the program fails. The HAL paces frames at
// FrameRate.
func (vm *VM) Run(hal HAL, cfg RunConfig) error {
	vm.Reboot()
	if err := hal.Draw(vm.Framebuffer()); err != nil {
		return err
	}

	looped := false
	for {
		if err := hal.ReadInput(vm.KeyDown, vm.KeyUp); err != nil {
			return err
		}

		tone, err := vm.Frame(cfg.stepsPerFrame())
		if err != nil {
			return err
		}

		if tone {
			if err := hal.Beep(); err != nil {
				return err
			}
		}

		if vm.Redraw() {
			if err := hal.Draw(vm.Framebuffer()); err != nil {
				return err
			}
		}

		if vm.Looping() != looped {
			looped = !looped
			if looped {
				slog.Info("program looped", "pc", fmt.Sprintf("0x%04x", vm.pc))
			}
		}

		if err := hal.WaitForNextFrame(); err != nil {
			return err
		}
	}
}

// Frame executes steps instructions followed by one timer tick. It reports
// whether a tone is due for this tick.
func (vm *VM) Frame(steps int) (bool, error) {
	for i := 0; i < steps; i++ {
		if err := vm.Step(); err != nil {
			return false, err
		}
	}

	tone := vm.ShouldSound()
	vm.TickTimers()
	return tone, nil
}
