// Package debugger is an interactive terminal debugger for the CHIP-8
// machine: register, code and screen panes, a log, and a command line.
package debugger

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kapitanov/chip8emu/internal/vm"
)

type Debugger struct {
	mu      sync.Mutex
	session *Session
	stop    chan struct{}

	regs   *tview.TextView
	code   *tview.TextView
	screen *tview.TextView
	log    *tview.TextView
	state  *tview.TextView
	input  *tview.InputField
	cols   *tview.Flex
	rows   *tview.Flex
	app    *tview.Application
}

func New(session *Session) *Debugger {
	d := &Debugger{
		session: session,
		regs: tview.NewTextView().
			SetWrap(false),
		code: tview.NewTextView().
			SetWrap(false),
		screen: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(1000),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.regs.SetBorder(true).SetTitle("registers")
	d.code.SetBorder(true).SetTitle("code")
	d.screen.SetBorder(true).SetTitle("screen")
	d.log.SetBorder(true).SetTitle("log")
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.regs, 9, 0, false).
		AddItem(d.code, 0, 1, false)
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.screen, vm.ScreenHeight/2+2, 0, false).
		AddItem(d.log, 0, 1, false)
	d.cols.
		AddItem(left, 36, 0, false).
		AddItem(right, vm.ScreenWidth+2, 0, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 1, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetLabel("> ")
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := d.input.GetText()
		if line == "" {
			return
		}
		d.input.SetText("")
		d.exec(line)
	})

	return d
}

// LogWriter receives log output while the debugger runs.
func (d *Debugger) LogWriter() io.Writer { return d.log }

func (d *Debugger) Run() error {
	d.mu.Lock()
	v := d.session.view()
	d.mu.Unlock()

	d.show(v, false)
	d.printf("s [n] step, f frame, c continue, p pause, b [ADDR] break, k HEX key, r reset, q quit")
	return d.app.Run()
}

func (d *Debugger) printf(format string, args ...any) {
	fmt.Fprintf(d.log, format+"\n", args...)
}

// exec runs on the UI goroutine.
func (d *Debugger) exec(line string) {
	cmd, err := parseCommand(line)
	if err != nil {
		d.printf("%v", err)
		return
	}

	switch cmd.kind {
	case cmdQuit:
		d.pause()
		d.app.Stop()
		return
	case cmdContinue:
		d.resume()
		return
	case cmdPause, cmdStep, cmdFrame:
		d.pause()
	}

	msg := "paused"
	d.mu.Lock()
	if cmd.kind != cmdPause {
		msg, err = d.session.exec(cmd)
	}
	v := d.session.view()
	running := d.stop != nil
	d.mu.Unlock()

	if err != nil {
		d.printf("%s: %v", msg, err)
	} else {
		d.printf("%s", msg)
	}
	d.show(v, running)
}

func (d *Debugger) show(v view, running bool) {
	d.regs.SetText(v.regs)
	d.code.SetText(v.code)
	d.screen.SetText(v.screen)

	if running {
		d.state.SetText("running")
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	} else {
		d.state.SetText("paused")
		d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	}
}

func (d *Debugger) resume() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop != nil {
		return
	}
	d.stop = make(chan struct{})
	go d.runFrames(d.stop)
}

func (d *Debugger) pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}

func (d *Debugger) runFrames(stop chan struct{}) {
	ticker := time.NewTicker(time.Second / vm.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		select {
		case <-stop:
			d.mu.Unlock()
			return
		default:
		}

		_, err := d.session.Frame()
		if err != nil {
			close(d.stop)
			d.stop = nil
		}
		v := d.session.view()
		d.mu.Unlock()

		d.app.QueueUpdateDraw(func() { d.show(v, err == nil) })
		if err != nil {
			d.printf("stopped: %v", err)
			return
		}
	}
}
