package vm

import (
	"context"
	"fmt"
	"log/slog"
)

// Step fetches, decodes and executes exactly one instruction. On error the
// machine state, including the program counter, is left as it was before
// the call.
func (vm *VM) Step() error {
	opcode := vm.fetchOpcode()

	instr, ok := decode(opcode)
	if !ok {
		return &DecodeError{PC: vm.pc, Opcode: opcode}
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", vm.pc),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", instr.String(),
		)
	}

	return vm.execute(instr)
}

func (vm *VM) execute(instr Instruction) error {
	x, y := instr.X, instr.Y

	switch instr.Op {
	case OpCls:
		vm.gfx = [ScreenWidth * ScreenHeight]uint8{}
		vm.drawFlag = true
		vm.pc += InstructionSize

	case OpRts:
		if vm.sp == 0 {
			return fmt.Errorf("%w: rts at 0x%04X", ErrStackUnderflow, vm.pc)
		}
		vm.sp--
		vm.pc = vm.stack[vm.sp]
		vm.pc += InstructionSize

	case OpJmp:
		vm.pc = instr.NNN

	case OpJsr:
		if int(vm.sp) >= StackSize {
			return fmt.Errorf("%w: jsr 0x%04X at 0x%04X", ErrStackOverflow, instr.NNN, vm.pc)
		}
		vm.stack[vm.sp] = vm.pc
		vm.sp++
		vm.pc = instr.NNN

	case OpSkeqK:
		vm.skipIf(vm.registers[x] == instr.NN)

	case OpSkneK:
		vm.skipIf(vm.registers[x] != instr.NN)

	case OpSkeqR:
		vm.skipIf(vm.registers[x] == vm.registers[y])

	case OpSkneR:
		vm.skipIf(vm.registers[x] != vm.registers[y])

	case OpMovK:
		vm.registers[x] = instr.NN
		vm.pc += InstructionSize

	case OpAddK:
		vm.registers[x] += instr.NN
		vm.pc += InstructionSize

	case OpMovR:
		vm.registers[x] = vm.registers[y]
		vm.pc += InstructionSize

	case OpOr:
		vm.registers[x] |= vm.registers[y]
		vm.pc += InstructionSize

	case OpAnd:
		vm.registers[x] &= vm.registers[y]
		vm.pc += InstructionSize

	case OpXor:
		vm.registers[x] ^= vm.registers[y]
		vm.pc += InstructionSize

	// The flag is written before the result, and operands are read in the
	// same order, so VF as an operand or destination sees the new flag.
	case OpAddR:
		vm.registers[flagRegister] = boolToFlag(vm.registers[x] > 0xFF-vm.registers[y])
		vm.registers[x] += vm.registers[y]
		vm.pc += InstructionSize

	case OpSub:
		vm.registers[flagRegister] = boolToFlag(vm.registers[x] >= vm.registers[y])
		vm.registers[x] -= vm.registers[y]
		vm.pc += InstructionSize

	case OpRsb:
		vm.registers[flagRegister] = boolToFlag(vm.registers[x] <= vm.registers[y])
		vm.registers[x] = vm.registers[y] - vm.registers[x]
		vm.pc += InstructionSize

	// Shifts take their source from VY and the flag from the old VX.
	case OpShr:
		vm.registers[flagRegister] = vm.registers[x] & 0x01
		vm.registers[x] = vm.registers[y] >> 1
		vm.pc += InstructionSize

	case OpShl:
		vm.registers[flagRegister] = vm.registers[x] >> 7
		vm.registers[x] = vm.registers[y] << 1
		vm.pc += InstructionSize

	case OpMvi:
		vm.index = instr.NNN
		vm.pc += InstructionSize

	case OpJmi:
		vm.pc = instr.NNN + uint16(vm.registers[0])

	case OpRand:
		vm.registers[x] = vm.random.RandomByte() & instr.NN
		vm.pc += InstructionSize

	case OpSprite:
		vm.drawSprite(vm.registers[x], vm.registers[y], instr.N)
		vm.pc += InstructionSize

	case OpSkpr:
		vm.skipIf(vm.keypad[vm.registers[x]&0x0F])

	case OpSkup:
		vm.skipIf(!vm.keypad[vm.registers[x]&0x0F])

	case OpGdelay:
		vm.registers[x] = vm.delayTimer
		vm.pc += InstructionSize

	case OpKey:
		// The instruction repeats until a key is held. The highest pressed
		// key wins.
		for i := KeyCount - 1; i >= 0; i-- {
			if vm.keypad[i] {
				vm.registers[x] = uint8(i)
				vm.pc += InstructionSize
				break
			}
		}

	case OpSdelay:
		vm.delayTimer = vm.registers[x]
		vm.pc += InstructionSize

	case OpSsound:
		vm.soundTimer = vm.registers[x]
		vm.pc += InstructionSize

	case OpAdi:
		vm.index += uint16(vm.registers[x])
		vm.pc += InstructionSize

	case OpFont:
		vm.index = uint16(vm.registers[x]&0x0F) * fontGlyphSize
		vm.pc += InstructionSize

	case OpBcd:
		v := vm.registers[x]
		vm.store(vm.index, v/100)
		vm.store(vm.index+1, (v/10)%10)
		vm.store(vm.index+2, v%10)
		vm.pc += InstructionSize

	case OpStr:
		for i := uint16(0); i <= uint16(x); i++ {
			vm.store(vm.index+i, vm.registers[i])
		}
		// COSMAC VIP behavior: I is left at I + X + 1.
		vm.index += uint16(x) + 1
		vm.pc += InstructionSize

	case OpLdr:
		for i := uint16(0); i <= uint16(x); i++ {
			vm.registers[i] = vm.memory[(vm.index+i)&addressMask]
		}
		vm.index += uint16(x) + 1
		vm.pc += InstructionSize

	default:
		return &DecodeError{PC: vm.pc, Opcode: instr.Opcode}
	}

	return nil
}

func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc += 2 * InstructionSize
	} else {
		vm.pc += InstructionSize
	}
}

// store writes memory at addr, wrapping to the 12-bit address space. Writes
// into the font table are dropped.
func (vm *VM) store(addr uint16, v uint8) {
	addr &= addressMask
	if int(addr) < len(chip8Font) {
		return
	}
	vm.memory[addr] = v
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Looping reports whether the program counter sits on a jump to itself, the
// usual way a CHIP-8 program ends.
func (vm *VM) Looping() bool {
	instr, ok := decode(vm.fetchOpcode())
	return ok && instr.Op == OpJmp && instr.NNN == vm.pc
}
