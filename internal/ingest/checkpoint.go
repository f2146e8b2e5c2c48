package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Checkpoint is the persisted progress record for one playlist file.
// Its presence signals a resumable import; absence means not started or
// complete.
type Checkpoint struct {
	Processed int    `json:"processed_urls"`
	Total     int    `json:"total_urls"`
	Results   Result `json:"results"`
}

// CheckpointPath returns the checkpoint path for a playlist file.
func CheckpointPath(playlistPath string) string {
	return playlistPath + ".progress.json"
}

// LoadCheckpoint reads a checkpoint. Returns nil, nil when absent.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

// Save writes the checkpoint atomically (temp file + rename), so a crash
// mid-write never leaves a corrupt checkpoint behind.
func (c *Checkpoint) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// RemoveCheckpoint deletes a checkpoint file. Removing an absent
// checkpoint is not an error.
func RemoveCheckpoint(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// Percent returns processing progress in [0, 100]. An empty playlist is
// complete by definition.
func (c *Checkpoint) Percent() float64 {
	if c.Total == 0 || c.Processed >= c.Total {
		return 100
	}
	return float64(c.Processed) / float64(c.Total) * 100
}
