package vm

import (
	"fmt"
)

// Op identifies one of the CHIP-8 instructions.
type Op uint8

const (
	OpCls    Op = iota + 1 // 00E0
	OpRts                  // 00EE
	OpJmp                  // 1NNN
	OpJsr                  // 2NNN
	OpSkeqK                // 3XNN
	OpSkneK                // 4XNN
	OpSkeqR                // 5XY0
	OpMovK                 // 6XNN
	OpAddK                 // 7XNN
	OpMovR                 // 8XY0
	OpOr                   // 8XY1
	OpAnd                  // 8XY2
	OpXor                  // 8XY3
	OpAddR                 // 8XY4
	OpSub                  // 8XY5
	OpShr                  // 8XY6
	OpRsb                  // 8XY7
	OpShl                  // 8XYE
	OpSkneR                // 9XY0
	OpMvi                  // ANNN
	OpJmi                  // BNNN
	OpRand                 // CXNN
	OpSprite               // DXYN
	OpSkpr                 // EX9E
	OpSkup                 // EXA1
	OpGdelay               // FX07
	OpKey                  // FX0A
	OpSdelay               // FX15
	OpSsound               // FX18
	OpAdi                  // FX1E
	OpFont                 // FX29
	OpBcd                  // FX33
	OpStr                  // FX55
	OpLdr                  // FX65
)

// Instruction is a decoded instruction word together with its operand
// fields. Fields an instruction does not use are still populated from the
// raw word.
type Instruction struct {
	Op     Op
	Opcode uint16

	X   uint8  // second nibble, register index
	Y   uint8  // third nibble, register index
	N   uint8  // low nibble
	NN  uint8  // low byte
	NNN uint16 // low 12 bits, address
}

// DecodeError reports an instruction word with no handler.
type DecodeError struct {
	PC     uint16
	Opcode uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown op code 0x%04X at 0x%04X", e.Opcode, e.PC)
}

func (e *DecodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// Decode parses an instruction word. Words without a handler yield a
// *DecodeError with a zero PC.
func Decode(opcode uint16) (Instruction, error) {
	instr, ok := decode(opcode)
	if !ok {
		return Instruction{}, &DecodeError{Opcode: opcode}
	}

	return instr, nil
}

func decode(opcode uint16) (Instruction, bool) {
	op := decodeOp(opcode)
	if op == 0 {
		return Instruction{}, false
	}

	return Instruction{
		Op:     op,
		Opcode: opcode,
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		NN:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}, true
}

func decodeOp(opcode uint16) Op {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode & 0x00FF {
		case 0x00E0:
			// 00E0 - Clear screen
			return OpCls

		case 0x00EE:
			// 00EE - Return from subroutine
			return OpRts
		}

	case 0x1000:
		// 1NNN - Jumps to address NNN
		return OpJmp

	case 0x2000:
		// 2NNN - Calls subroutine at NNN
		return OpJsr

	case 0x3000:
		// 3XNN - Skips the next instruction if VX equals NN
		return OpSkeqK

	case 0x4000:
		// 4XNN - Skips the next instruction if VX does not equal NN
		return OpSkneK

	case 0x5000:
		// 5XY0 - Skips the next instruction if VX equals VY
		return OpSkeqR

	case 0x6000:
		// 6XNN - Sets VX to NN
		return OpMovK

	case 0x7000:
		// 7XNN - Adds NN to VX, no carry
		return OpAddK

	case 0x8000:
		// 8XY_
		switch opcode & 0x000F {
		case 0x0000:
			// 8XY0 - Sets VX to the value of VY
			return OpMovR

		case 0x0001:
			// 8XY1 - Sets VX to (VX OR VY)
			return OpOr

		case 0x0002:
			// 8XY2 - Sets VX to (VX AND VY)
			return OpAnd

		case 0x0003:
			// 8XY3 - Sets VX to (VX XOR VY)
			return OpXor

		case 0x0004:
			// 8XY4 - Adds VY to VX. VF is set to 1 when there's a carry, and to 0 when there isn't.
			return OpAddR

		case 0x0005:
			// 8XY5 - VY is subtracted from VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
			return OpSub

		case 0x0006:
			// 8XY6 - Stores VY shifted right by one in VX. VF is set to the least significant bit of VX before the shift.
			return OpShr

		case 0x0007:
			// 8XY7 - Sets VX to VY minus VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
			return OpRsb

		case 0x000E:
			// 8XYE - Stores VY shifted left by one in VX. VF is set to the most significant bit of VX before the shift.
			return OpShl
		}

	case 0x9000:
		// 9XY0 - Skips the next instruction if VX doesn't equal VY
		return OpSkneR

	case 0xA000:
		// ANNN - Sets I to the address NNN
		return OpMvi

	case 0xB000:
		// BNNN - Jumps to the address NNN plus V0
		return OpJmi

	case 0xC000:
		// CXNN - Sets VX to a random number, masked by NN
		return OpRand

	case 0xD000:
		// DXYN - Draws an 8xN sprite from memory at I at coordinate (VX, VY).
		// VF is set to 1 if any lit pixel is turned off.
		return OpSprite

	case 0xE000:
		switch opcode & 0x00FF {
		case 0x009E:
			// EX9E - Skips the next instruction if the key stored in VX is pressed
			return OpSkpr

		case 0x00A1:
			// EXA1 - Skips the next instruction if the key stored in VX isn't pressed
			return OpSkup
		}

	case 0xF000:
		switch opcode & 0x00FF {
		case 0x0007:
			// FX07 - Sets VX to the value of the delay timer
			return OpGdelay

		case 0x000A:
			// FX0A - A key press is awaited, and then stored in VX
			return OpKey

		case 0x0015:
			// FX15 - Sets the delay timer to VX
			return OpSdelay

		case 0x0018:
			// FX18 - Sets the sound timer to VX
			return OpSsound

		case 0x001E:
			// FX1E - Adds VX to I, VF is not affected
			return OpAdi

		case 0x0029:
			// FX29 - Sets I to the location of the font glyph for the low nibble of VX
			return OpFont

		case 0x0033:
			// FX33 - Stores the BCD representation of VX at I, I+1 and I+2
			return OpBcd

		case 0x0055:
			// FX55 - Stores V0 to VX in memory starting at address I
			return OpStr

		case 0x0065:
			// FX65 - Reads memory starting at address I into V0...VX
			return OpLdr
		}
	}

	return 0
}

// String renders the instruction in assembler form.
func (i Instruction) String() string {
	switch i.Op {
	case OpCls:
		return "cls"
	case OpRts:
		return "rts"
	case OpJmp:
		return fmt.Sprintf("jmp 0x%04x", i.NNN)
	case OpJsr:
		return fmt.Sprintf("jsr 0x%04x", i.NNN)
	case OpSkeqK:
		return fmt.Sprintf("skeq v%x, %d", i.X, i.NN)
	case OpSkneK:
		return fmt.Sprintf("skne v%x, %d", i.X, i.NN)
	case OpSkeqR:
		return fmt.Sprintf("skeq v%x, v%x", i.X, i.Y)
	case OpMovK:
		return fmt.Sprintf("mov v%x, %d", i.X, i.NN)
	case OpAddK:
		return fmt.Sprintf("add v%x, %d", i.X, i.NN)
	case OpMovR:
		return fmt.Sprintf("mov v%x, v%x", i.X, i.Y)
	case OpOr:
		return fmt.Sprintf("or v%x, v%x", i.X, i.Y)
	case OpAnd:
		return fmt.Sprintf("and v%x, v%x", i.X, i.Y)
	case OpXor:
		return fmt.Sprintf("xor v%x, v%x", i.X, i.Y)
	case OpAddR:
		return fmt.Sprintf("add v%x, v%x", i.X, i.Y)
	case OpSub:
		return fmt.Sprintf("sub v%x, v%x", i.X, i.Y)
	case OpShr:
		return fmt.Sprintf("shr v%x, v%x", i.X, i.Y)
	case OpRsb:
		return fmt.Sprintf("rsb v%x, v%x", i.X, i.Y)
	case OpShl:
		return fmt.Sprintf("shl v%x, v%x", i.X, i.Y)
	case OpSkneR:
		return fmt.Sprintf("skne v%x, v%x", i.X, i.Y)
	case OpMvi:
		return fmt.Sprintf("mvi 0x%04x", i.NNN)
	case OpJmi:
		return fmt.Sprintf("jmi 0x%04x", i.NNN)
	case OpRand:
		return fmt.Sprintf("rand v%x, %d", i.X, i.NN)
	case OpSprite:
		return fmt.Sprintf("sprite v%x, v%x, %d", i.X, i.Y, i.N)
	case OpSkpr:
		return fmt.Sprintf("skpr v%x", i.X)
	case OpSkup:
		return fmt.Sprintf("skup v%x", i.X)
	case OpGdelay:
		return fmt.Sprintf("gdelay v%x", i.X)
	case OpKey:
		return fmt.Sprintf("key v%x", i.X)
	case OpSdelay:
		return fmt.Sprintf("sdelay v%x", i.X)
	case OpSsound:
		return fmt.Sprintf("ssound v%x", i.X)
	case OpAdi:
		return fmt.Sprintf("adi v%x", i.X)
	case OpFont:
		return fmt.Sprintf("font v%x", i.X)
	case OpBcd:
		return fmt.Sprintf("bcd v%x", i.X)
	case OpStr:
		return fmt.Sprintf("str v0-v%x", i.X)
	case OpLdr:
		return fmt.Sprintf("ldr v0-v%x", i.X)
	}

	return fmt.Sprintf("unknown 0x%04X", i.Opcode)
}
