package debugger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kapitanov/chip8emu/internal/vm"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errBadArgument    = errors.New("bad argument")
)

type commandKind int

const (
	cmdStep commandKind = iota + 1
	cmdFrame
	cmdContinue
	cmdPause
	cmdBreak
	cmdKey
	cmdReset
	cmdQuit
)

type command struct {
	kind    commandKind
	count   int
	addr    uint16
	hasAddr bool
	key     vm.Key
}

// parseCommand understands:
//
//	s [n]    step n instructions (default 1)
//	f        run one frame: steps and a timer tick
//	c        continue at the frame rate
//	p        pause
//	b [ADDR] toggle a breakpoint, or clear all of them
//	k HEX    toggle a key
//	r        reboot the program
//	q        quit
func parseCommand(line string) (command, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "s", "step":
		cmd := command{kind: cmdStep, count: 1}
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				return command{}, fmt.Errorf("%w: step count %q", errBadArgument, arg)
			}
			cmd.count = n
		}
		return cmd, nil

	case "b", "break":
		cmd := command{kind: cmdBreak}
		if arg != "" {
			addr, err := parseHex(arg, 16)
			if err != nil {
				return command{}, fmt.Errorf("%w: address %q", errBadArgument, arg)
			}
			cmd.addr = uint16(addr)
			cmd.hasAddr = true
		}
		return cmd, nil

	case "k", "key":
		key, err := parseHex(arg, 4)
		if err != nil {
			return command{}, fmt.Errorf("%w: key %q", errBadArgument, arg)
		}
		return command{kind: cmdKey, key: vm.Key(key)}, nil
	}

	if arg != "" {
		return command{}, fmt.Errorf("%w: %q takes no argument", errBadArgument, name)
	}

	switch name {
	case "f", "frame":
		return command{kind: cmdFrame}, nil
	case "c", "continue":
		return command{kind: cmdContinue}, nil
	case "p", "pause":
		return command{kind: cmdPause}, nil
	case "r", "reset":
		return command{kind: cmdReset}, nil
	case "q", "quit", "exit":
		return command{kind: cmdQuit}, nil
	}

	return command{}, fmt.Errorf("%w %q", errUnknownCommand, name)
}

func parseHex(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	return strconv.ParseUint(s, 16, bits)
}
