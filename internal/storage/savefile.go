package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

// ErrNoSave reports that there is no usable saved game: the file is missing,
// unreadable or corrupt.
var ErrNoSave = errors.New("storage: no saved game")

// saveMagic marks a save file so foreign files fail fast.
const saveMagic = "TTRS1\n"

// SaveUnit writes u to path as zstd-compressed JSON. The file is replaced
// atomically so a crash never leaves half a save behind.
func SaveUnit(path string, u *tetris.Unit) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("storage: cannot encode save: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("storage: cannot create compressor: %w", err)
	}
	defer enc.Close()
	out := enc.EncodeAll(data, []byte(saveMagic))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: cannot create save directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return fmt.Errorf("storage: cannot write save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: cannot write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cannot write save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storage: cannot write save: %w", err)
	}
	return nil
}

// LoadUnit reads a unit written by SaveUnit. Every failure wraps ErrNoSave.
func LoadUnit(path string) (*tetris.Unit, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read save: %w", ErrNoSave, err)
	}
	if len(raw) < len(saveMagic) || string(raw[:len(saveMagic)]) != saveMagic {
		return nil, fmt.Errorf("%w: %s is not a save file", ErrNoSave, path)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot create decompressor: %w", err)
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw[len(saveMagic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt save: %w", ErrNoSave, err)
	}

	var u tetris.Unit
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: corrupt save: %w", ErrNoSave, err)
	}
	if _, ok := u.Local(); !ok {
		return nil, fmt.Errorf("%w: saved unit is not local", ErrNoSave)
	}
	return &u, nil
}

// RemoveSave deletes the save file; a missing file is not an error.
func RemoveSave(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: cannot remove save: %w", err)
	}
	return nil
}
