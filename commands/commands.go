// Package commands implements the operation objects that drive an aggregate
// through a training or evaluation pass. A command is an ephemeral value:
// build one, execute it once, discard it. Commands hold borrowed references
// to the aggregate, its loaders and a callback; they own nothing.
package commands

import (
	"fmt"

	"github.com/mr-raccoon-97/torch-system/aggregate"
)

// Command is a single executable unit of work against an aggregate.
type Command interface {
	Execute() error
}

// Train runs the aggregate through the given loaders in training mode and
// bumps the epoch once after the last loader completes.
type Train struct {
	Aggregate aggregate.Aggregate
	Loaders   []aggregate.Loader
	Callback  aggregate.Callback
}

// Execute sets the phase to "train", reports phase and epoch to the
// callback, then fits each loader in sequence order. An error from Fit
// aborts the pass: remaining loaders are skipped and the epoch is left
// unchanged.
func (c Train) Execute() error {
	c.Aggregate.SetPhase(aggregate.PhaseTrain)
	c.Callback.Set("phase", c.Aggregate.Phase())
	c.Callback.Set("epoch", c.Aggregate.Epoch())
	for _, loader := range c.Loaders {
		if err := c.Aggregate.Fit(loader, c.Callback); err != nil {
			return fmt.Errorf("fit failed in epoch %d: %w", c.Aggregate.Epoch(), err)
		}
	}
	c.Aggregate.SetEpoch(c.Aggregate.Epoch() + 1)
	return nil
}

// Evaluate runs the aggregate through the given loaders in evaluation mode.
// It never touches the epoch counter since nothing is trained.
type Evaluate struct {
	Aggregate aggregate.Aggregate
	Loaders   []aggregate.Loader
	Callback  aggregate.Callback
}

// Execute sets the phase to "evaluation", reports phase and epoch to the
// callback, then evaluates each loader in sequence order. An error from
// Evaluate aborts the pass and propagates.
func (c Evaluate) Execute() error {
	c.Aggregate.SetPhase(aggregate.PhaseEvaluation)
	c.Callback.Set("phase", c.Aggregate.Phase())
	c.Callback.Set("epoch", c.Aggregate.Epoch())
	for _, loader := range c.Loaders {
		if err := c.Aggregate.Evaluate(loader, c.Callback); err != nil {
			return fmt.Errorf("evaluate failed in epoch %d: %w", c.Aggregate.Epoch(), err)
		}
	}
	return nil
}

// Phase pairs a phase label with the loader to process under it.
type Phase struct {
	Name   string
	Loader aggregate.Loader
}

// Iterate runs the aggregate through a sequence of phase-labeled loaders,
// letting the caller interleave training and evaluation within one epoch.
// The epoch is bumped exactly once after all pairs are processed, no matter
// which phases were visited.
type Iterate struct {
	Aggregate aggregate.Aggregate
	Phases    []Phase
	Callback  aggregate.Callback
}

// Execute reports the current epoch once up front, then for each pair sets
// the aggregate's phase, reports it, and iterates the loader. The phase is
// reported every time it is set, including when consecutive pairs carry the
// same label. An error aborts the pass and leaves the epoch unchanged.
func (c Iterate) Execute() error {
	c.Callback.Set("epoch", c.Aggregate.Epoch())
	for _, phase := range c.Phases {
		c.Aggregate.SetPhase(phase.Name)
		c.Callback.Set("phase", c.Aggregate.Phase())
		if err := c.Aggregate.Iterate(phase.Loader, c.Callback); err != nil {
			return fmt.Errorf("iterate failed in phase %q: %w", phase.Name, err)
		}
	}
	c.Aggregate.SetEpoch(c.Aggregate.Epoch() + 1)
	return nil
}
