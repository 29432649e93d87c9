// internal/model/estimator.go
package model

import (
	"errors"
	"math"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// Estimator turns one assembled record into a predicted modulus (MPa).
type Estimator interface {
	Predict(rec soil.Record) (float64, error)
}

// TreeEnsemble is a random forest (mean of trees) or gradient boosting
// regressor (init + learning_rate * sum of trees).
type TreeEnsemble struct {
	kind         string
	features     []string
	trees        []TreeArray
	learningRate float64
	init         float64
}

func (e *TreeEnsemble) Predict(rec soil.Record) (float64, error) {
	row, err := featureRow(e.features, rec)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, t := range e.trees {
		sum += t.eval(row)
	}
	var out float64
	if e.kind == KindGradientBoosting {
		out = e.init + e.learningRate*sum
	} else {
		out = sum / float64(len(e.trees))
	}
	return finite(out)
}

// finite rejects NaN and infinite model output.
func finite(out float64) (float64, error) {
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, predictionErrorf("estimator produced %v", out)
	}
	return out, nil
}

// eval walks one tree. Features are compared at float32 precision, the
// precision the thresholds were fitted at.
func (t TreeArray) eval(row []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if float64(float32(row[t.Feature[node]])) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Linear is an ordinary least squares style regressor.
type Linear struct {
	features  []string
	coef      []float64
	intercept float64
}

func (l *Linear) Predict(rec soil.Record) (float64, error) {
	row, err := featureRow(l.features, rec)
	if err != nil {
		return 0, err
	}
	out := l.intercept
	for i, x := range row {
		out += l.coef[i] * x
	}
	return finite(out)
}

// featureRow checks that rec matches the training schema exactly, in name,
// order and count, and returns it as numbers.
func featureRow(features []string, rec soil.Record) ([]float64, error) {
	cols := rec.Columns()
	if len(cols) != len(features) {
		return nil, predictionErrorf("X has %d features, but the model is expecting %d features as input", len(cols), len(features))
	}
	for i, name := range features {
		if cols[i] != name {
			return nil, predictionErrorf("feature names must be in the same order as they were in fit: position %d is %s, expected %s", i, cols[i], name)
		}
	}
	row, err := rec.Float64s()
	if errors.Is(err, soil.ErrLabelCell) {
		return nil, &PredictionError{Err: err}
	}
	return row, err
}

// DemoEstimator is the placeholder formula used before a trained model
// exists. Its output is not a real prediction.
type DemoEstimator struct{}

// Demo marks the estimator's results as placeholders.
func (DemoEstimator) Demo() bool { return true }

func (DemoEstimator) Predict(rec soil.Record) (float64, error) {
	get := func(column string) (float64, error) {
		c, ok := rec.Get(column)
		if !ok {
			return 0, predictionErrorf("missing column %s", column)
		}
		if c.IsLabel {
			return 0, predictionErrorf("column %s is not numeric", column)
		}
		return c.Num, nil
	}

	var vals [5]float64
	for i, col := range []string{"REPR_THICKNESS", "MAX_LAB_DRY_DENSITY", "SPEC_GRAVITY", "OPTIMUM_LAB_MOISTURE", "NO_4_PASSING"} {
		v, err := get(col)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	thickness, mdd, gs, omc, no4 := vals[0], vals[1], vals[2], vals[3], vals[4]
	return finite(thickness*0.5 + mdd*1000 + gs*500 - omc*50 + no4*2)
}
