package vm

import (
	"fmt"
	"io"
)

// Disassemble writes one line per instruction word of program, addressed as
// if loaded at ProgramStart. Words that do not decode are printed as "???";
// they are usually sprite data. A trailing odd byte is printed as data.
func Disassemble(w io.Writer, program []byte) error {
	for offset := 0; offset < len(program); offset += InstructionSize {
		addr := int(ProgramStart) + offset

		if offset+1 >= len(program) {
			if _, err := fmt.Fprintf(w, "0x%04x  %02x    .byte 0x%02x\n", addr, program[offset], program[offset]); err != nil {
				return err
			}
			break
		}

		opcode := uint16(program[offset])<<8 | uint16(program[offset+1])

		text := "???"
		if instr, ok := decode(opcode); ok {
			text = instr.String()
		}

		if _, err := fmt.Fprintf(w, "0x%04x  %04x  %s\n", addr, opcode, text); err != nil {
			return err
		}
	}

	return nil
}
