// Package predict runs the prediction pipeline for one variant:
//
//	Snapshot → gate → Assemble → Predictor → Result
//
// Every call is synchronous and independent; a failure only affects the call
// that produced it.
package predict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aceteam-ai/modulus-cli/internal/model"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// Predictor runs inference on one assembled record.
type Predictor interface {
	Predict(ctx context.Context, rec soil.Record) (float64, error)
}

// NotReadyError is returned when the gate rejects a snapshot. No record is
// assembled in that case.
type NotReadyError struct {
	Variant string
	Failed  []string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s inputs not ready: %s", e.Variant, strings.Join(e.Failed, ", "))
}

// Result is one successful prediction.
type Result struct {
	ID         string
	Variant    string
	Record     soil.Record
	ModulusMPa float64
	Demo       bool
	Elapsed    time.Duration
}

// Display renders the modulus the way the forms show it.
func (r *Result) Display() string {
	return fmt.Sprintf("%.2f MPa", r.ModulusMPa)
}

// Service binds a variant to its predictor.
type Service struct {
	variant   soil.Variant
	predictor Predictor
	log       logrus.FieldLogger
}

// NewService creates a pipeline for v. log may be nil.
func NewService(v soil.Variant, p Predictor, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		variant:   v,
		predictor: p,
		log:       log.WithField("variant", v.Name),
	}
}

// Variant returns the variant this service predicts for.
func (s *Service) Variant() soil.Variant { return s.variant }

// Run gates, assembles and predicts. The predictor is called at most once.
func (s *Service) Run(ctx context.Context, snap soil.Snapshot) (*Result, error) {
	verdict := s.variant.Check(snap)
	if !verdict.Ready {
		s.log.WithField("failed", verdict.Failed).Debug("Gate rejected inputs")
		return nil, &NotReadyError{Variant: s.variant.Name, Failed: verdict.Failed}
	}

	rec, err := soil.Assemble(s.variant, snap)
	if err != nil {
		s.log.WithError(err).Warn("Record assembly failed")
		return nil, &model.PredictionError{Model: s.variant.Name, Err: err}
	}

	start := time.Now()
	value, err := s.predictor.Predict(ctx, rec)
	elapsed := time.Since(start)
	if err != nil {
		s.log.WithError(err).Warn("Prediction failed")
		return nil, err
	}

	res := &Result{
		ID:         uuid.NewString(),
		Variant:    s.variant.Name,
		Record:     rec,
		ModulusMPa: value,
		Demo:       isDemo(s.predictor),
		Elapsed:    elapsed,
	}
	s.log.WithFields(logrus.Fields{
		"id":      res.ID,
		"modulus": res.Display(),
		"elapsed": elapsed,
	}).Info("Prediction complete")
	return res, nil
}

func isDemo(p Predictor) bool {
	d, ok := p.(interface{ Demo() bool })
	return ok && d.Demo()
}
