package vm

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = uint16(0x200)
	InstructionSize = 2

	// MaxProgramSize is the largest ROM that fits above the reserved area.
	MaxProgramSize = MemorySize - int(ProgramStart)

	addressMask  = MemorySize - 1
	flagRegister = 0x0F
)

var (
	ErrROMTooLarge    = errors.New("rom too large")
	ErrUnknownOpcode  = errors.New("unknown op code")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// VM holds the complete machine state of a CHIP-8 interpreter.
//
// Memory and keypad lookups are masked to their address width (12 and 4 bits)
// so they never leave the backing arrays; the index register and program
// counter keep their raw 16-bit values. Call stack overflow and underflow are
// reported as errors from Step.
type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint8             // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	gfx      [ScreenWidth * ScreenHeight]uint8 // Graphics buffer
	keypad   [KeyCount]bool                    // Keypad
	drawFlag bool                              // Indicates a draw has occurred

	program []byte
	random  RandomSource
}

// Option configures a VM created by New.
type Option func(*VM)

// WithRandom replaces the random source used by the rand instruction.
func WithRandom(src RandomSource) Option {
	return func(vm *VM) {
		vm.random = src
	}
}

// New returns a zeroed machine with the font table installed.
func New(opts ...Option) *VM {
	vm := &VM{
		random: globalRandom{},
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.Reset()
	return vm
}

// Reset reinitializes every field to its power-on state and reinstalls the
// font table. Program memory is left zeroed; use Reboot to reload the ROM.
func (vm *VM) Reset() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	vm.gfx = [ScreenWidth * ScreenHeight]uint8{}
	vm.drawFlag = false

	vm.stack = [StackSize]uint16{}
	vm.keypad = [KeyCount]bool{}
	vm.registers = [RegisterCount]uint8{}
	vm.memory = [MemorySize]uint8{}

	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", 0), "n", len(chip8Font))
	copy(vm.memory[0:], chip8Font[:])

	vm.delayTimer = 0
	vm.soundTimer = 0
}

// Load copies program into memory at ProgramStart, clearing the rest of
// program memory. A program larger than MaxProgramSize is rejected and the
// machine is left untouched.
func (vm *VM) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrROMTooLarge, len(program), MaxProgramSize)
	}

	clear(vm.memory[ProgramStart:])
	copy(vm.memory[ProgramStart:], program)
	vm.program = append(vm.program[:0], program...)

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	return nil
}

// Reboot resets the machine and reloads the most recently loaded program.
func (vm *VM) Reboot() {
	vm.Reset()

	clear(vm.memory[ProgramStart:])
	copy(vm.memory[ProgramStart:], vm.program)
}

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// KeyDown marks key as pressed.
func (vm *VM) KeyDown(key Key) {
	vm.keypad[key&0x0F] = true
}

// KeyUp marks key as released.
func (vm *VM) KeyUp(key Key) {
	vm.keypad[key&0x0F] = false
}

// Pressed reports whether key is currently held.
func (vm *VM) Pressed(key Key) bool {
	return vm.keypad[key&0x0F]
}

// Redraw reports whether the framebuffer changed since the previous call and
// clears the change flag.
func (vm *VM) Redraw() bool {
	changed := vm.drawFlag
	vm.drawFlag = false
	return changed
}

// Framebuffer returns the 64x32 pixel buffer, one byte (0 or 1) per pixel in
// row-major order. The slice aliases machine state and is only valid until
// the next Step.
func (vm *VM) Framebuffer() []uint8 {
	return vm.gfx[:]
}

// Pixel reports whether the pixel at (x, y) is lit. Coordinates wrap.
func (vm *VM) Pixel(x, y int) bool {
	return vm.gfx[getScreenAddr(x, y)] != 0
}

func (vm *VM) PC() uint16 { return vm.pc }
func (vm *VM) Index() uint16 { return vm.index }
func (vm *VM) SP() uint8 { return vm.sp }
func (vm *VM) DelayTimer() uint8 { return vm.delayTimer }
func (vm *VM) SoundTimer() uint8 { return vm.soundTimer }
func (vm *VM) Register(r uint8) uint8 { return vm.registers[r&0x0F] }

// Stack returns the pending return addresses, oldest first.
func (vm *VM) Stack() []uint16 {
	return append([]uint16(nil), vm.stack[:vm.sp]...)
}

// Peek reads memory at addr, wrapping to the 12-bit address space.
func (vm *VM) Peek(addr uint16) uint8 {
	return vm.memory[addr&addressMask]
}

func (vm *VM) fetchOpcode() uint16 {
	hi := vm.memory[vm.pc&addressMask]
	lo := vm.memory[(vm.pc+1)&addressMask]

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	return opcode
}
