// internal/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// Handle errors
var (
	// ErrModelUnavailable is returned by Predict after the artifact failed to load.
	ErrModelUnavailable = errors.New("model not loaded")
)

// Artifact errors
var (
	// ErrUnsupportedKind indicates the artifact's estimator kind is not known
	ErrUnsupportedKind = errors.New("unsupported estimator kind")

	// ErrUnsupportedVersion indicates the artifact format version is out of range
	ErrUnsupportedVersion = errors.New("unsupported artifact format version")

	// ErrInvalidArtifact indicates the artifact is structurally broken
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// LoadError reports a model artifact that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PredictionError reports a failed inference call: a schema mismatch, a value
// the estimator can't interpret, or a failure inside the estimator.
type PredictionError struct {
	Model string
	Err   error
}

func (e *PredictionError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("prediction error: %v", e.Err)
	}
	return fmt.Sprintf("prediction error (%s): %v", e.Model, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

func predictionErrorf(format string, args ...any) error {
	return &PredictionError{Err: fmt.Errorf(format, args...)}
}
