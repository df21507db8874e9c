// Package term runs the machine inside a terminal. Two vertically adjacent
// CHIP-8 pixels share one character cell, drawn with an upper half block.
package term

import (
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/kapitanov/chip8emu/internal/vm"
)

const (
	// DefaultHoldFrames is how long a key counts as pressed after its last
	// key event. Terminals report presses and auto-repeats, never releases.
	DefaultHoldFrames = 8

	frameDuration = time.Second / vm.FrameRate

	halfBlock = '▀'
)

var (
	fgColor = tcell.NewHexColor(0xbea700)
	bgColor = tcell.ColorBlack
)

type Config struct {
	HoldFrames int
}

// HAL implements vm.HAL on a tcell screen.
type HAL struct {
	screen     tcell.Screen
	holdFrames int
	held       [vm.KeyCount]int
	frame      []byte
	lastFrame  time.Time
}

var _ vm.HAL = (*HAL)(nil)

// New initializes screen and takes it over. A nil screen opens the
// controlling terminal.
func New(screen tcell.Screen, cfg Config) (*HAL, error) {
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to create terminal screen: %w", err)
		}
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init terminal screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(bgColor))
	screen.HideCursor()
	screen.Clear()

	if cfg.HoldFrames <= 0 {
		cfg.HoldFrames = DefaultHoldFrames
	}

	w, h := screen.Size()
	slog.Debug("term: init screen", "width", w, "height", h)

	return &HAL{
		screen:     screen,
		holdFrames: cfg.HoldFrames,
		frame:      make([]byte, vm.ScreenWidth*vm.ScreenHeight),
		lastFrame:  time.Now(),
	}, nil
}

func (h *HAL) Shutdown() {
	h.screen.Fini()
}

func (h *HAL) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	for key, frames := range h.held {
		if frames == 0 {
			continue
		}
		h.held[key]--
		if h.held[key] == 0 {
			keyUp(vm.Key(key))
		}
	}

	for h.screen.HasPendingEvent() {
		switch ev := h.screen.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				slog.Debug("term: exit requested")
				return vm.ErrQuit
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				return vm.ErrReboot
			case tcell.KeyRune:
				if key, ok := keyMap(ev.Rune()); ok {
					if h.held[key] == 0 {
						keyDown(key)
					}
					h.held[key] = h.holdFrames
				}
			}

		case *tcell.EventResize:
			h.screen.Sync()
			h.paint()
		}
	}

	return nil
}

func keyMap(r rune) (vm.Key, bool) {
	switch unicode.ToLower(r) {
	case 'x':
		return vm.Key0, true
	case '1':
		return vm.Key1, true
	case '2':
		return vm.Key2, true
	case '3':
		return vm.Key3, true
	case 'q':
		return vm.Key4, true
	case 'w':
		return vm.Key5, true
	case 'e':
		return vm.Key6, true
	case 'a':
		return vm.Key7, true
	case 's':
		return vm.Key8, true
	case 'd':
		return vm.Key9, true
	case 'z':
		return vm.KeyA, true
	case 'c':
		return vm.KeyB, true
	case '4':
		return vm.KeyC, true
	case 'r':
		return vm.KeyD, true
	case 'f':
		return vm.KeyE, true
	case 'v':
		return vm.KeyF, true
	default:
		return 0, false
	}
}

func (h *HAL) Draw(gfx []uint8) error {
	copy(h.frame, gfx)
	h.paint()
	return nil
}

func (h *HAL) paint() {
	for row := 0; row < vm.ScreenHeight/2; row++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			top := h.frame[x+2*row*vm.ScreenWidth]
			bottom := h.frame[x+(2*row+1)*vm.ScreenWidth]

			style := tcell.StyleDefault.
				Foreground(pixelColor(top)).
				Background(pixelColor(bottom))
			h.screen.SetContent(x, row, halfBlock, nil, style)
		}
	}

	h.screen.Show()
}

func pixelColor(p uint8) tcell.Color {
	if p != 0 {
		return fgColor
	}
	return bgColor
}

func (h *HAL) Beep() error {
	if err := h.screen.Beep(); err != nil {
		return fmt.Errorf("failed to ring terminal bell: %w", err)
	}
	return nil
}

func (h *HAL) WaitForNextFrame() error {
	next := h.lastFrame.Add(frameDuration)
	if d := time.Until(next); d > 0 {
		time.Sleep(d)
	} else {
		next = time.Now()
	}

	h.lastFrame = next
	return nil
}
