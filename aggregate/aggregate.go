// Package aggregate defines the capability surface of a trainable model
// object and the collaborator contracts the rest of the library drives it
// through. The library never implements training itself; it orchestrates
// calls against an Aggregate supplied by the caller.
package aggregate

// Loader is an opaque data source consumed once per pass. Its shape is
// defined by the aggregate that receives it; the command layer passes it
// through unchanged.
type Loader any

// Callback is a sink for key/value observability updates emitted while an
// aggregate is driven. The command layer reports under the "phase" and
// "epoch" keys; aggregates may report whatever else they like.
type Callback interface {
	Set(key string, value any)
}

// Conventional phase labels used by the command layer. Phase is an open
// string: callers may set any label and it is forwarded as-is.
const (
	PhaseTrain      = "train"
	PhaseEvaluation = "evaluation"
)

// Aggregate is a trainable model object. It owns its phase label and epoch
// counter and implements the actual per-loader work.
//
// Aggregate state is not synchronized. Driving the same aggregate from
// multiple goroutines concurrently is undefined behavior.
type Aggregate interface {
	Phase() string
	SetPhase(phase string)
	Epoch() int
	SetEpoch(epoch int)

	// Fit trains on one loader. Evaluate scores one loader without
	// updating parameters. Iterate processes one loader under whatever
	// phase is currently set, letting callers interleave training and
	// evaluation within a single epoch.
	Fit(loader Loader, callback Callback) error
	Evaluate(loader Loader, callback Callback) error
	Iterate(loader Loader, callback Callback) error
}

// Base carries the phase and epoch state every aggregate needs. Embed it
// and implement Fit, Evaluate and Iterate to satisfy Aggregate.
type Base struct {
	phase string
	epoch int
}

// Phase returns the current phase label.
func (b *Base) Phase() string { return b.phase }

// SetPhase sets the phase label. Any string is accepted.
func (b *Base) SetPhase(phase string) { b.phase = phase }

// Epoch returns the number of completed training passes.
func (b *Base) Epoch() int { return b.epoch }

// SetEpoch sets the epoch counter.
func (b *Base) SetEpoch(epoch int) { b.epoch = epoch }
