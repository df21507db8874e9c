package rom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	assert.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		size     int
		tooLarge bool
	}{
		{"empty", 0, false},
		{"small", 2, false},
		{"full", vm.MaxProgramSize, false},
		{"too large", vm.MaxProgramSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".ch8")
			writeFile(t, path, tt.size)

			bs, err := Read(path)
			if tt.tooLarge {
				assert.Equal(t, true, errors.Is(err, vm.ErrROMTooLarge))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.size, len(bs))
		})
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Equal(t, true, errors.Is(err, os.ErrNotExist))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.ch8")
	other := filepath.Join(dir, "other.ch8")
	writeFile(t, path, 2)

	w, err := Watch(path, 10*time.Millisecond)
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, w.Close())
	}()

	writeFile(t, other, 4)
	select {
	case <-w.Changed():
		t.Fatal("unexpected change for another file")
	case <-time.After(100 * time.Millisecond):
	}

	writeFile(t, path, 4)
	select {
	case <-w.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("change not reported")
	}
}
