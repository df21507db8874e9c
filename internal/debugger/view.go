package debugger

import (
	"fmt"
	"strings"

	"github.com/kapitanov/chip8emu/internal/vm"
)

const (
	codeLinesBefore = 6
	codeLinesAfter  = 16
)

type view struct {
	regs   string
	code   string
	screen string
}

func (s *Session) view() view {
	return view{
		regs:   registersText(s.vm),
		code:   codeText(s.vm, s.isBreakpoint),
		screen: screenText(s.vm),
	}
}

func registersText(m *vm.VM) string {
	var b strings.Builder

	fmt.Fprintf(&b, "pc %.4x  i %.4x  sp %d\n", m.PC(), m.Index(), m.SP())
	fmt.Fprintf(&b, "dt %.2x    st %.2x\n\n", m.DelayTimer(), m.SoundTimer())

	for r := uint8(0); r < vm.RegisterCount; r++ {
		fmt.Fprintf(&b, "v%x %.2x", r, m.Register(r))
		if r%4 == 3 {
			b.WriteByte('\n')
		} else {
			b.WriteString("  ")
		}
	}

	b.WriteString("\nstack")
	for _, addr := range m.Stack() {
		fmt.Fprintf(&b, " %.4x", addr)
	}

	b.WriteString("\nkeys ")
	for k := vm.Key0; k <= vm.KeyF; k++ {
		if m.Pressed(k) {
			fmt.Fprintf(&b, " %x", uint8(k))
		}
	}

	return b.String()
}

// codeText disassembles the words around the program counter. The current
// instruction is marked with '>' and breakpoints with '*'.
func codeText(m *vm.VM, isBreakpoint func(uint16) bool) string {
	pc := int(m.PC())

	start := pc - codeLinesBefore*vm.InstructionSize
	for start < 0 {
		start += vm.InstructionSize
	}
	end := pc + codeLinesAfter*vm.InstructionSize

	var b strings.Builder
	for addr := start; addr <= end && addr <= 0xFFFF; addr += vm.InstructionSize {
		a := uint16(addr)
		opcode := uint16(m.Peek(a))<<8 | uint16(m.Peek(a+1))

		text := "???"
		if instr, err := vm.Decode(opcode); err == nil {
			text = instr.String()
		}

		cur, brk := ' ', ' '
		if addr == pc {
			cur = '>'
		}
		if isBreakpoint(a) {
			brk = '*'
		}

		fmt.Fprintf(&b, "%c%c %.4x  %.4x  %s\n", cur, brk, a, opcode, text)
	}

	return b.String()
}

// screenText packs two pixel rows into each text line with half blocks.
func screenText(m *vm.VM) string {
	var b strings.Builder

	for y := 0; y < vm.ScreenHeight; y += 2 {
		for x := 0; x < vm.ScreenWidth; x++ {
			top, bottom := m.Pixel(x, y), m.Pixel(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}
