package debugger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kapitanov/chip8emu/internal/vm"
)

var ErrBreakpoint = errors.New("breakpoint")

// Session drives a machine under debugger control. It is not safe for
// concurrent use.
type Session struct {
	vm            *vm.VM
	stepsPerFrame int
	breakpoints   map[uint16]struct{}
}

func NewSession(machine *vm.VM, stepsPerFrame int) *Session {
	if stepsPerFrame <= 0 {
		stepsPerFrame = vm.DefaultStepsPerFrame
	}

	return &Session{
		vm:            machine,
		stepsPerFrame: stepsPerFrame,
		breakpoints:   make(map[uint16]struct{}),
	}
}

func (s *Session) VM() *vm.VM { return s.vm }

// Step executes up to n instructions. It stops early, after the instruction
// that moved the program counter onto a breakpoint, with ErrBreakpoint.
func (s *Session) Step(n int) (int, error) {
	for i := 0; i < n; i++ {
		if err := s.vm.Step(); err != nil {
			return i, err
		}

		if s.isBreakpoint(s.vm.PC()) {
			return i + 1, fmt.Errorf("%w at 0x%04x", ErrBreakpoint, s.vm.PC())
		}
	}

	return n, nil
}

// Frame runs one frame worth of instructions and ticks the timers. Timers
// do not tick when the frame is cut short.
func (s *Session) Frame() (bool, error) {
	if _, err := s.Step(s.stepsPerFrame); err != nil {
		return false, err
	}

	tone := s.vm.ShouldSound()
	s.vm.TickTimers()
	return tone, nil
}

func (s *Session) isBreakpoint(addr uint16) bool {
	_, ok := s.breakpoints[addr]
	return ok
}

// ToggleBreakpoint reports whether a breakpoint is set at addr afterwards.
func (s *Session) ToggleBreakpoint(addr uint16) bool {
	if s.isBreakpoint(addr) {
		delete(s.breakpoints, addr)
		return false
	}

	s.breakpoints[addr] = struct{}{}
	return true
}

func (s *Session) ClearBreakpoints() {
	clear(s.breakpoints)
}

func (s *Session) Breakpoints() []uint16 {
	addrs := make([]uint16, 0, len(s.breakpoints))
	for addr := range s.breakpoints {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

// ToggleKey reports whether key is pressed afterwards.
func (s *Session) ToggleKey(key vm.Key) bool {
	if s.vm.Pressed(key) {
		s.vm.KeyUp(key)
	} else {
		s.vm.KeyDown(key)
	}
	return s.vm.Pressed(key)
}

// exec runs a command that acts on the machine directly and describes the
// outcome for the log pane.
func (s *Session) exec(cmd command) (string, error) {
	switch cmd.kind {
	case cmdStep:
		n, err := s.Step(cmd.count)
		return fmt.Sprintf("stepped %d, pc 0x%04x", n, s.vm.PC()), err

	case cmdFrame:
		tone, err := s.Frame()
		if err != nil {
			return "frame interrupted", err
		}
		if tone {
			return "frame (tone)", nil
		}
		return "frame", nil

	case cmdBreak:
		if !cmd.hasAddr {
			s.ClearBreakpoints()
			return "cleared breakpoints", nil
		}
		if s.ToggleBreakpoint(cmd.addr) {
			return fmt.Sprintf("set break 0x%04x", cmd.addr), nil
		}
		return fmt.Sprintf("cleared break 0x%04x", cmd.addr), nil

	case cmdKey:
		if s.ToggleKey(cmd.key) {
			return fmt.Sprintf("key %x down", uint8(cmd.key)), nil
		}
		return fmt.Sprintf("key %x up", uint8(cmd.key)), nil

	case cmdReset:
		s.vm.Reboot()
		return "reset", nil
	}

	return "", fmt.Errorf("%w: kind %d", errUnknownCommand, cmd.kind)
}
