package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/i474232898/weather-board/internal/dashboard"
)

// loadState restores the board from path. A missing file is not an error.
func loadState(path string, service *dashboard.Service) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap dashboard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding state: %w", err)
	}
	service.Restore(snap)
	return nil
}

// saveState writes the board to path through a temporary file so a crash
// never leaves a truncated state behind.
func saveState(path string, service *dashboard.Service) error {
	data, err := json.Marshal(service.Snapshot())
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".board-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
