// Package rom reads program images from disk and watches them for changes.
package rom

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/kapitanov/chip8emu/internal/vm"
)

// DefaultSettleDelay coalesces the burst of events an editor or build tool
// produces while rewriting a file.
const DefaultSettleDelay = 100 * time.Millisecond

// Read loads a program image. Images that do not fit the program area are
// rejected with vm.ErrROMTooLarge.
func Read(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load file %q: %w", path, err)
	}

	if len(bs) > vm.MaxProgramSize {
		return nil, fmt.Errorf("%q is %d bytes: %w", path, len(bs), vm.ErrROMTooLarge)
	}

	slog.Debug("rom: read", "path", path, "size", len(bs))
	return bs, nil
}

// Watcher signals on Changed once the watched file has been rewritten and
// stayed untouched for the settle delay.
type Watcher struct {
	path    string
	delay   time.Duration
	watcher *fsnotify.Watcher
	changed chan struct{}
	stopped chan struct{}
}

// Watch starts watching the directory holding path.
func Watch(path string, delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultSettleDelay
	}

	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	w := &Watcher{
		path:    path,
		delay:   delay,
		watcher: watcher,
		changed: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go w.loop()

	slog.Debug("rom: watching", "path", path)
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.stopped)

	var (
		settle <-chan time.Time
		events = w.watcher.Event
		errs   = w.watcher.Error
	)
	for events != nil {
		select {
		case <-settle:
			settle = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				break
			}
			if filepath.Clean(ev.Name) == w.path && !ev.IsAttrib() {
				settle = time.After(w.delay)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				break
			}
			slog.Warn("rom: watcher", "err", err)
		}
	}
}

// Changed delivers at most one pending notification.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.stopped
	return err
}
