package compiler

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mr-raccoon-97/torch-system/aggregate"
)

// model is a bare aggregate for compiler tests.
type model struct {
	aggregate.Base
	name string
}

func (m *model) Fit(aggregate.Loader, aggregate.Callback) error      { return nil }
func (m *model) Evaluate(aggregate.Loader, aggregate.Callback) error { return nil }
func (m *model) Iterate(aggregate.Loader, aggregate.Callback) error  { return nil }

// wrapped stands in for the transformed object a JIT backend may return.
type wrapped struct {
	*model
}

func TestCompile(t *testing.T) {
	t.Run("Returns backend result on success", func(t *testing.T) {
		built := &model{name: "raw"}
		optimized := &wrapped{model: built}

		c := New(
			func(args ...any) (aggregate.Aggregate, error) { return built, nil },
			WithBackend(func(agg aggregate.Aggregate) (aggregate.Aggregate, error) {
				return optimized, nil
			}),
		)

		agg, err := c.Compile()
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if agg != aggregate.Aggregate(optimized) {
			t.Error("Expected the compiled aggregate, got the raw one")
		}
	})

	t.Run("Falls back to uncompiled aggregate on backend error", func(t *testing.T) {
		built := &model{name: "raw"}

		c := New(
			func(args ...any) (aggregate.Aggregate, error) { return built, nil },
			WithBackend(func(agg aggregate.Aggregate) (aggregate.Aggregate, error) {
				return nil, errors.New("unsupported op")
			}),
		)

		agg, err := c.Compile()
		if err != nil {
			t.Fatalf("Backend failure must not propagate, got %v", err)
		}
		if agg != aggregate.Aggregate(built) {
			t.Error("Expected fallback to the uncompiled aggregate")
		}
	})

	t.Run("Falls back on backend panic", func(t *testing.T) {
		built := &model{name: "raw"}

		c := New(
			func(args ...any) (aggregate.Aggregate, error) { return built, nil },
			WithBackend(func(agg aggregate.Aggregate) (aggregate.Aggregate, error) {
				panic("codegen exploded")
			}),
		)

		agg, err := c.Compile()
		if err != nil {
			t.Fatalf("Backend panic must not propagate, got %v", err)
		}
		if agg != aggregate.Aggregate(built) {
			t.Error("Expected fallback to the uncompiled aggregate")
		}
	})

	t.Run("No backend returns aggregate as built", func(t *testing.T) {
		built := &model{name: "raw"}
		c := New(func(args ...any) (aggregate.Aggregate, error) { return built, nil })

		agg, err := c.Compile()
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if agg != aggregate.Aggregate(built) {
			t.Error("Expected the aggregate exactly as built")
		}
	})

	t.Run("Factory error propagates", func(t *testing.T) {
		failure := errors.New("missing weights")
		c := New(func(args ...any) (aggregate.Aggregate, error) { return nil, failure })

		_, err := c.Compile()
		if !errors.Is(err, failure) {
			t.Fatalf("Expected wrapped factory error, got %v", err)
		}
	})

	t.Run("Arguments pass through to the factory unchanged", func(t *testing.T) {
		var got []any
		c := New(func(args ...any) (aggregate.Aggregate, error) {
			got = args
			return &model{}, nil
		})

		if _, err := c.Compile(64, "gpu", 0.01); err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		want := []any{64, "gpu", 0.01}
		if len(got) != len(want) {
			t.Fatalf("Expected %d args, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Arg %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})

	t.Run("Logs error and fallback decision on failure", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		c := New(
			func(args ...any) (aggregate.Aggregate, error) { return &model{}, nil },
			WithBackend(func(agg aggregate.Aggregate) (aggregate.Aggregate, error) {
				return nil, fmt.Errorf("no backend for target")
			}),
			WithLogger(zap.New(core)),
		)

		if _, err := c.Compile(); err != nil {
			t.Fatalf("Compile failed: %v", err)
		}

		if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
			t.Errorf("Expected exactly one error log entry, got %d", logs.FilterLevelExact(zapcore.ErrorLevel).Len())
		}
		if logs.FilterMessage("falling back to the uncompiled aggregate").Len() != 1 {
			t.Error("Expected a fallback notice in the log trail")
		}
	})

	t.Run("Logs compiled aggregate representation on success", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		c := New(
			func(args ...any) (aggregate.Aggregate, error) { return &model{name: "mlp"}, nil },
			WithLogger(zap.New(core)),
		)

		if _, err := c.Compile(); err != nil {
			t.Fatalf("Compile failed: %v", err)
		}

		entries := logs.FilterMessage("aggregate compiled").All()
		if len(entries) != 1 {
			t.Fatalf("Expected one success log entry, got %d", len(entries))
		}
		fields := entries[0].ContextMap()
		if _, ok := fields["aggregate"]; !ok {
			t.Error("Expected the success entry to carry an aggregate representation")
		}
	})
}
