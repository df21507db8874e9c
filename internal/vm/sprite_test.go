package vm

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func litPixels(m *VM) int {
	n := 0
	for _, p := range m.Framebuffer() {
		if p != 0 {
			n++
		}
	}
	return n
}

func TestDrawTwiceRestoresScreen(t *testing.T) {
	m := newTestVM(t,
		0x6A0A, // mov va, 10
		0x6B05, // mov vb, 5
		0x6C08, // mov vc, 8
		0xFC29, // font vc
		0xDAB5, // sprite va, vb, 5
		0xDAB5, // sprite va, vb, 5
	)
	for i := 0; i < 4; i++ {
		assert.NoError(t, m.Step())
	}
	before := m.gfx

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(0), m.Register(0xF))
	assert.Equal(t, true, m.Pixel(10, 5))
	assert.Equal(t, true, m.Pixel(13, 5))
	assert.Equal(t, false, m.Pixel(14, 5))
	assert.Equal(t, true, m.Pixel(10, 9))
	// The font glyph for 8 has 16 lit pixels.
	assert.Equal(t, 16, litPixels(m))

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(1), m.Register(0xF))
	assert.Equal(t, before, m.gfx)
}

func TestDrawWraps(t *testing.T) {
	tests := []struct {
		name   string
		x, y   uint8
		height uint16
		lit    [][2]int
	}{
		{
			name: "right edge", x: 60, y: 3, height: 1,
			lit: [][2]int{{60, 3}, {63, 3}, {0, 3}, {3, 3}},
		},
		{
			name: "bottom edge", x: 0, y: 31, height: 2,
			lit: [][2]int{{0, 31}, {7, 31}, {0, 0}, {7, 0}},
		},
		{
			name: "corner", x: 62, y: 31, height: 2,
			lit: [][2]int{{62, 31}, {63, 31}, {0, 31}, {5, 31}, {62, 0}, {5, 0}},
		},
		{
			name: "origin past the screen", x: 64 + 2, y: 32 + 1, height: 1,
			lit: [][2]int{{2, 1}, {9, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestVM(t, 0xD010|tt.height)
			m.registers[0] = tt.x
			m.registers[1] = tt.y
			m.index = 0x300
			m.memory[0x300] = 0xFF
			m.memory[0x301] = 0xFF

			assert.NoError(t, m.Step())

			for _, p := range tt.lit {
				if !m.Pixel(p[0], p[1]) {
					t.Errorf("pixel (%d, %d) not lit", p[0], p[1])
				}
			}
			assert.Equal(t, 8*int(tt.height), litPixels(m))
			assert.Equal(t, uint8(0), m.Register(0xF))
		})
	}
}

func TestDrawCollision(t *testing.T) {
	m := newTestVM(t, 0xD011, 0xD011)
	m.index = 0x300
	m.memory[0x300] = 0x81

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(0), m.Register(0xF))

	// Shift the second sprite so only one pixel overlaps.
	m.memory[0x300] = 0x01
	m.registers[0xF] = 0
	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(1), m.Register(0xF))
	assert.Equal(t, true, m.Pixel(0, 0))
	assert.Equal(t, false, m.Pixel(7, 0))
}

func TestDrawResetsFlag(t *testing.T) {
	m := newTestVM(t, 0xD011)
	m.index = 0x300
	m.memory[0x300] = 0x80
	m.registers[0xF] = 1

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(0), m.Register(0xF))
}

func TestDrawZeroHeight(t *testing.T) {
	m := newTestVM(t, 0xD010)
	m.Redraw()
	m.registers[0xF] = 1

	assert.NoError(t, m.Step())
	assert.Equal(t, 0, litPixels(m))
	assert.Equal(t, uint8(0), m.Register(0xF))
	assert.Equal(t, true, m.Redraw())
	assert.Equal(t, ProgramStart+2, m.PC())
}

func TestDrawUsesOriginBeforeFlagReset(t *testing.T) {
	// VF is both the x origin and the collision flag.
	m := newTestVM(t, 0xDF01)
	m.index = 0x300
	m.memory[0x300] = 0x80
	m.registers[0xF] = 20

	assert.NoError(t, m.Step())
	assert.Equal(t, true, m.Pixel(20, 0))
	assert.Equal(t, uint8(0), m.Register(0xF))
}

func TestClearScreen(t *testing.T) {
	m := newTestVM(t, 0xD015, 0x00E0)
	m.registers[0] = 30
	m.registers[1] = 10

	assert.NoError(t, m.Step())
	assert.Equal(t, true, litPixels(m) > 0)
	m.Redraw()

	assert.NoError(t, m.Step())
	assert.Equal(t, 0, litPixels(m))
	assert.Equal(t, true, m.Redraw())
}
