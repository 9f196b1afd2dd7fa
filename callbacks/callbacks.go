// Package callbacks provides ready-made sinks for the key/value updates
// emitted while commands drive an aggregate.
package callbacks

import (
	"go.uber.org/zap"

	"github.com/mr-raccoon-97/torch-system/aggregate"
)

// Entry is one recorded update.
type Entry struct {
	Key   string
	Value any
}

// Recorder keeps every update in arrival order. Useful in tests and for
// inspecting a finished pass. Not safe for concurrent use, matching the
// single-threaded execution model of the command layer.
type Recorder struct {
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Set records the update.
func (r *Recorder) Set(key string, value any) {
	r.entries = append(r.entries, Entry{Key: key, Value: value})
}

// History returns the recorded updates in the order they arrived.
func (r *Recorder) History() []Entry {
	return r.entries
}

// Last returns the most recent value recorded under key, and whether any
// update with that key was seen.
func (r *Recorder) Last(key string) (any, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Key == key {
			return r.entries[i].Value, true
		}
	}
	return nil, false
}

// Reset discards the recorded history.
func (r *Recorder) Reset() {
	r.entries = r.entries[:0]
}

// Multi fans each update out to every callback in order.
type Multi []aggregate.Callback

// Set forwards the update to each callback.
func (m Multi) Set(key string, value any) {
	for _, callback := range m {
		callback.Set(key, value)
	}
}

// Logging mirrors updates to a zap logger.
type Logging struct {
	logger *zap.Logger
}

// NewLogging returns a Logging callback writing to the given logger.
func NewLogging(logger *zap.Logger) *Logging {
	return &Logging{logger: logger}
}

// Set logs the update at info level.
func (l *Logging) Set(key string, value any) {
	l.logger.Info("callback update", zap.String("key", key), zap.Any("value", value))
}

var (
	_ aggregate.Callback = (*Recorder)(nil)
	_ aggregate.Callback = (Multi)(nil)
	_ aggregate.Callback = (*Logging)(nil)
)
