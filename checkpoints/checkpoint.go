// Package checkpoints saves and restores the training progress that the
// command layer mutates on an aggregate. A checkpoint covers the phase
// label and epoch counter plus metadata about the run; model parameters
// belong to the aggregate and are outside its scope.
package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mr-raccoon-97/torch-system/aggregate"
)

const (
	formatVersion = "1.0.0"
	framework     = "torch-system"
)

// State captures the mutable training progress of an aggregate.
type State struct {
	Phase string `json:"phase"`
	Epoch int    `json:"epoch"`
}

// Metadata describes when and by what a checkpoint was written.
type Metadata struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
}

// Checkpoint is the serialized form: training state plus metadata.
type Checkpoint struct {
	State    State    `json:"state"`
	Metadata Metadata `json:"metadata"`
}

// Capture snapshots an aggregate's training progress.
func Capture(agg aggregate.Aggregate) State {
	return State{Phase: agg.Phase(), Epoch: agg.Epoch()}
}

// Restore applies a checkpointed state back onto an aggregate.
func Restore(checkpoint *Checkpoint, agg aggregate.Aggregate) {
	agg.SetPhase(checkpoint.State.Phase)
	agg.SetEpoch(checkpoint.State.Epoch)
}

// Saver writes checkpoints to disk as JSON. Each Save stamps a fresh run ID
// so separate writes remain distinguishable.
type Saver struct {
	description string
}

// NewSaver returns a Saver whose checkpoints carry the given description.
func NewSaver(description string) *Saver {
	return &Saver{description: description}
}

// Save writes the aggregate's current training state to path.
func (s *Saver) Save(path string, agg aggregate.Aggregate) error {
	checkpoint := Checkpoint{
		State: Capture(agg),
		Metadata: Metadata{
			RunID:       uuid.NewString(),
			Version:     formatVersion,
			Framework:   framework,
			CreatedAt:   time.Now(),
			Description: s.description,
		},
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %v", err)
	}
	return nil
}

// Load reads a checkpoint written by Saver.Save.
func Load(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %v", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %v", err)
	}
	if checkpoint.State.Epoch < 0 {
		return nil, fmt.Errorf("invalid checkpoint: negative epoch %d", checkpoint.State.Epoch)
	}
	return &checkpoint, nil
}
