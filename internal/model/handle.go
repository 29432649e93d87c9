// Package model loads exported regressors and runs single-row inference.
package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// State is the load state of a Handle.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "uninitialized"
	}
}

// Loader deserializes the artifact at path.
type Loader func(path string) (Estimator, error)

// Handle owns one model for the process lifetime. The artifact is read on
// first use and never again; a failed load is permanent. After loading the
// estimator is read-only, so Predict may be called concurrently.
type Handle struct {
	name   string
	path   string
	loader Loader
	log    logrus.FieldLogger

	once    sync.Once
	state   atomic.Int32
	est     Estimator
	loadErr error
}

// Option configures a Handle.
type Option func(*Handle)

// WithLoader replaces the artifact loader (LoadFile by default).
func WithLoader(l Loader) Option {
	return func(h *Handle) {
		if l != nil {
			h.loader = l
		}
	}
}

// WithLogger sets the logger used for load events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(h *Handle) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandle creates an unloaded handle for the artifact at path.
func NewHandle(name, path string, opts ...Option) *Handle {
	h := &Handle{
		name:   name,
		path:   path,
		loader: LoadFile,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewStaticHandle wraps an in-memory estimator; it is Ready immediately.
func NewStaticHandle(name string, e Estimator) *Handle {
	h := &Handle{name: name, est: e, log: logrus.StandardLogger()}
	h.once.Do(func() {})
	h.state.Store(int32(StateReady))
	return h
}

// Name returns the handle's name (the variant it serves).
func (h *Handle) Name() string { return h.name }

// Path returns the artifact path, empty for static handles.
func (h *Handle) Path() string { return h.path }

// State returns the current load state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Demo reports whether the estimator produces placeholder values.
func (h *Handle) Demo() bool {
	if h.State() != StateReady {
		return false
	}
	d, ok := h.est.(interface{ Demo() bool })
	return ok && d.Demo()
}

// Load reads the artifact if that hasn't happened yet and returns the
// outcome of the one load attempt.
func (h *Handle) Load() error {
	h.once.Do(h.load)
	return h.loadErr
}

func (h *Handle) load() {
	h.state.Store(int32(StateLoading))
	start := time.Now()
	log := h.log.WithFields(logrus.Fields{"model": h.name, "path": h.path})

	est, err := h.loader(h.path)
	if err != nil {
		h.loadErr = &LoadError{Path: h.path, Err: err}
		h.state.Store(int32(StateUnavailable))
		log.WithError(err).Error("Model load failed")
		return
	}
	h.est = est
	h.state.Store(int32(StateReady))
	log.WithField("elapsed", time.Since(start)).Info("Model loaded")
}

// Predict runs the estimator on rec. Estimator panics are reported as a
// PredictionError.
func (h *Handle) Predict(ctx context.Context, rec soil.Record) (out float64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := h.Load(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = 0, &PredictionError{Model: h.name, Err: fmt.Errorf("estimator panic: %v", r)}
		}
	}()

	out, err = h.est.Predict(rec)
	if err != nil {
		var pe *PredictionError
		if errors.As(err, &pe) {
			if pe.Model == "" {
				pe.Model = h.name
			}
			return 0, pe
		}
		return 0, &PredictionError{Model: h.name, Err: err}
	}
	return out, nil
}
