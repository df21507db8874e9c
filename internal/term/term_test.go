package term

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

type keyLog struct {
	down []vm.Key
	up   []vm.Key
}

func (l *keyLog) keyDown(k vm.Key) { l.down = append(l.down, k) }
func (l *keyLog) keyUp(k vm.Key)   { l.up = append(l.up, k) }

func newTestHAL(t *testing.T, holdFrames int) (*HAL, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	h, err := New(screen, Config{HoldFrames: holdFrames})
	assert.NoError(t, err)
	t.Cleanup(h.Shutdown)

	screen.SetSize(vm.ScreenWidth, vm.ScreenHeight/2)
	return h, screen
}

func TestKeyHold(t *testing.T) {
	h, screen := newTestHAL(t, 2)
	var keys keyLog

	screen.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	assert.NoError(t, h.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, []vm.Key{vm.Key5}, keys.down)
	assert.Equal(t, 0, len(keys.up))

	// An auto-repeat extends the hold without a second press.
	screen.InjectKey(tcell.KeyRune, 'W', tcell.ModNone)
	assert.NoError(t, h.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, 1, len(keys.down))

	assert.NoError(t, h.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, 0, len(keys.up))

	assert.NoError(t, h.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, []vm.Key{vm.Key5}, keys.up)
}

func TestControlKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		want error
	}{
		{"escape", tcell.KeyEscape, vm.ErrQuit},
		{"ctrl-c", tcell.KeyCtrlC, vm.ErrQuit},
		{"backspace", tcell.KeyBackspace2, vm.ErrReboot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, screen := newTestHAL(t, 1)
			var keys keyLog

			screen.InjectKey(tt.key, 0, tcell.ModNone)
			err := h.ReadInput(keys.keyDown, keys.keyUp)
			assert.Equal(t, true, errors.Is(err, tt.want))
		})
	}
}

func TestKeyMap(t *testing.T) {
	layout := "x123qweasdzc4rfv"
	for i, r := range layout {
		key, ok := keyMap(r)
		assert.Equal(t, true, ok)
		assert.Equal(t, vm.Key(i), key)
	}

	_, ok := keyMap('p')
	assert.Equal(t, false, ok)
}

func TestDraw(t *testing.T) {
	h, screen := newTestHAL(t, 1)

	gfx := make([]byte, vm.ScreenWidth*vm.ScreenHeight)
	gfx[0] = 1                    // (0, 0) top half of cell (0, 0)
	gfx[1+vm.ScreenWidth] = 1     // (1, 1) bottom half of cell (1, 0)
	gfx[63+31*vm.ScreenWidth] = 1 // (63, 31) bottom half of cell (63, 15)

	assert.NoError(t, h.Draw(gfx))

	tests := []struct {
		x, y   int
		fg, bg tcell.Color
	}{
		{0, 0, fgColor, bgColor},
		{1, 0, bgColor, fgColor},
		{2, 0, bgColor, bgColor},
		{63, 15, bgColor, fgColor},
	}
	for _, tt := range tests {
		r, _, style, _ := screen.GetContent(tt.x, tt.y)
		fg, bg, _ := style.Decompose()

		assert.Equal(t, halfBlock, r)
		assert.Equal(t, tt.fg, fg)
		assert.Equal(t, tt.bg, bg)
	}
}

func TestBeep(t *testing.T) {
	h, _ := newTestHAL(t, 1)
	assert.NoError(t, h.Beep())
}
