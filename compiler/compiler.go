// Package compiler builds aggregates from a factory and applies a
// best-effort just-in-time compilation step. Compilation is strictly a
// performance optimization: when the backend fails, the compiler logs the
// failure and hands back the uncompiled aggregate instead of surfacing an
// error.
package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mr-raccoon-97/torch-system/aggregate"
)

// Factory builds an aggregate. Arguments given to Compile are forwarded to
// the factory unchanged.
type Factory func(args ...any) (aggregate.Aggregate, error)

// CompileFunc is the external JIT step. It may return a wrapped or
// otherwise transformed aggregate; callers must treat the result as the
// aggregate from then on.
type CompileFunc func(aggregate.Aggregate) (aggregate.Aggregate, error)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger the compiler reports build and fallback
// decisions to. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithBackend sets the JIT step applied to freshly built aggregates.
// Without a backend, Compile returns aggregates exactly as built.
func WithBackend(backend CompileFunc) Option {
	return func(c *Compiler) {
		c.backend = backend
	}
}

// Compiler builds aggregates via a caller-supplied factory and runs them
// through an optional compilation backend. It holds no state between calls.
type Compiler struct {
	factory Factory
	backend CompileFunc
	logger  *zap.Logger
}

// New returns a Compiler around the given factory.
func New(factory Factory, opts ...Option) *Compiler {
	c := &Compiler{
		factory: factory,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds an aggregate with the factory and passes it through the
// backend. A factory error propagates to the caller. A backend error or
// panic does not: it is logged and the uncompiled aggregate is returned
// with a nil error.
func (c *Compiler) Compile(args ...any) (aggregate.Aggregate, error) {
	c.logger.Info("building and compiling aggregate")
	agg, err := c.factory(args...)
	if err != nil {
		return nil, fmt.Errorf("factory failed: %w", err)
	}
	compiled, err := c.apply(agg)
	if err != nil {
		c.logger.Error("aggregate compilation failed", zap.Error(err))
		c.logger.Info("falling back to the uncompiled aggregate")
		return agg, nil
	}
	c.logger.Info("aggregate compiled", zap.String("aggregate", fmt.Sprintf("%v", compiled)))
	return compiled, nil
}

// apply runs the backend, converting a panic into an error so that no
// backend failure mode escapes the fallback.
func (c *Compiler) apply(agg aggregate.Aggregate) (compiled aggregate.Aggregate, err error) {
	if c.backend == nil {
		return agg, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compile backend panicked: %v", r)
		}
	}()
	return c.backend(agg)
}
