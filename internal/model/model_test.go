package model

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

func baseRecord(t *testing.T, class string) soil.Record {
	t.Helper()
	v := soil.Base()
	rec, err := soil.Assemble(v, soil.Defaults(v).WithClass(class))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return rec
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestLoadFileRandomForest(t *testing.T) {
	est, err := LoadFile(filepath.Join("testdata", "base_forest.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	tests := []struct {
		class string
		want  float64
	}{
		{"A-4", (260 + 300) / 2.0}, // code 6 > 5.5
		{"A-1-a", (240 + 300) / 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, err := est.Predict(baseRecord(t, tt.class))
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if got != tt.want {
				t.Errorf("Predict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradientBoostingAndLinear(t *testing.T) {
	features := soil.Base().Columns
	stump := TreeArray{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{100, -2, -2},
		Value:         []float64{0, -10, 10},
	}

	gb, err := Artifact{
		FormatVersion: "1.2",
		Kind:          KindGradientBoosting,
		FeatureNames:  features,
		Trees:         []TreeArray{stump, stump},
		LearningRate:  0.5,
		Init:          100,
	}.Build()
	if err != nil {
		t.Fatalf("Build gradient boosting: %v", err)
	}
	if got, _ := gb.Predict(baseRecord(t, "A-4")); got != 110 {
		t.Errorf("gradient boosting = %v, want 110", got)
	}

	coef := make([]float64, len(features))
	coef[0] = 2 // REPR_THICKNESS
	coef[9] = 1 // AASHTO_SOIL_CLASS
	lin, err := Artifact{
		FormatVersion: "1.0",
		Kind:          KindLinear,
		FeatureNames:  features,
		Coef:          coef,
		Intercept:     5,
	}.Build()
	if err != nil {
		t.Fatalf("Build linear: %v", err)
	}
	if got, _ := lin.Predict(baseRecord(t, "A-4")); got != 2*150+6+5 {
		t.Errorf("linear = %v, want %v", got, 2*150+6+5)
	}
}

func TestDecodeRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "future format",
			data:    `{"format_version":"2.0","kind":"linear","feature_names":["A"],"coef":[1]}`,
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "missing format",
			data:    `{"kind":"linear","feature_names":["A"],"coef":[1]}`,
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "unknown kind",
			data:    `{"format_version":"1.0","kind":"svr","feature_names":["A"]}`,
			wantErr: ErrUnsupportedKind,
		},
		{
			name:    "coefficient count",
			data:    `{"format_version":"1.0","kind":"linear","feature_names":["A","B"],"coef":[1]}`,
			wantErr: ErrInvalidArtifact,
		},
		{
			name: "backward child",
			data: `{"format_version":"1.0","kind":"random_forest","feature_names":["A"],
				"trees":[{"children_left":[0,-1],"children_right":[1,-1],"feature":[0,-2],"threshold":[1,-2],"value":[0,1]}]}`,
			wantErr: ErrInvalidArtifact,
		},
		{
			name: "feature out of range",
			data: `{"format_version":"1.0","kind":"random_forest","feature_names":["A"],
				"trees":[{"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[3,-2,-2],"threshold":[1,-2,-2],"value":[0,1,2]}]}`,
			wantErr: ErrInvalidArtifact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected decode error for garbage input")
	}
}

func TestHandleMissingArtifactLoadsOnce(t *testing.T) {
	var calls int
	h := NewHandle("base", filepath.Join(t.TempDir(), "base_model.json"),
		WithLogger(quietLogger()),
		WithLoader(func(path string) (Estimator, error) {
			calls++
			return LoadFile(path)
		}),
	)

	if h.State() != StateUninitialized {
		t.Fatalf("State() = %v, want uninitialized", h.State())
	}

	err := h.Load()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() err = %v, want *LoadError", err)
	}
	if h.State() != StateUnavailable {
		t.Errorf("State() = %v, want unavailable", h.State())
	}

	rec := baseRecord(t, "A-4")
	for i := 0; i < 3; i++ {
		_, err := h.Predict(context.Background(), rec)
		if !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("Predict #%d err = %v, want ErrModelUnavailable", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestHandleSwappedColumnsThenRetry(t *testing.T) {
	h := NewHandle("base", filepath.Join("testdata", "base_forest.json"), WithLogger(quietLogger()))
	rec := baseRecord(t, "A-4")

	_, err := h.Predict(context.Background(), rec.Swap(0, 1))
	var pe *PredictionError
	if !errors.As(err, &pe) {
		t.Fatalf("Predict(swapped) err = %v, want *PredictionError", err)
	}
	if pe.Model != "base" {
		t.Errorf("PredictionError.Model = %q, want base", pe.Model)
	}
	if h.State() != StateReady {
		t.Fatalf("State() = %v after prediction failure, want ready", h.State())
	}

	got, err := h.Predict(context.Background(), rec)
	if err != nil {
		t.Fatalf("retry Predict: %v", err)
	}
	if got != 280 {
		t.Errorf("retry Predict() = %v, want 280", got)
	}
}

func TestHandleRejectsLabelCells(t *testing.T) {
	h := NewHandle("base", filepath.Join("testdata", "base_forest.json"), WithLogger(quietLogger()))
	v := soil.Demo()
	rec, err := soil.Assemble(v, soil.Defaults(v))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	_, err = h.Predict(context.Background(), rec)
	var pe *PredictionError
	if !errors.As(err, &pe) || !errors.Is(err, soil.ErrLabelCell) {
		t.Errorf("err = %v, want PredictionError wrapping ErrLabelCell", err)
	}
}

type panicEstimator struct{}

func (panicEstimator) Predict(soil.Record) (float64, error) { panic("boom") }

func TestHandleRecoversEstimatorPanic(t *testing.T) {
	h := NewStaticHandle("broken", panicEstimator{})
	_, err := h.Predict(context.Background(), baseRecord(t, "A-4"))
	var pe *PredictionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PredictionError", err)
	}
}

func TestHandleConcurrentPredict(t *testing.T) {
	var calls int
	var mu sync.Mutex
	h := NewHandle("base", filepath.Join("testdata", "base_forest.json"),
		WithLogger(quietLogger()),
		WithLoader(func(path string) (Estimator, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return LoadFile(path)
		}),
	)
	rec := baseRecord(t, "A-4")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.Predict(context.Background(), rec); err != nil {
				t.Errorf("Predict: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestHandleCanceledContext(t *testing.T) {
	h := NewStaticHandle("demo", DemoEstimator{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Predict(ctx, baseRecord(t, "A-4")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDemoEstimator(t *testing.T) {
	v := soil.Demo()
	rec, err := soil.Assemble(v, soil.Defaults(v))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	h := NewStaticHandle("demo", DemoEstimator{})
	if !h.Demo() {
		t.Error("Demo() = false, want true")
	}
	got, err := h.Predict(context.Background(), rec)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := 150*0.5 + 2.0*1000 + 2.65*500 - 10.0*50 + 90*2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Predict() = %v, want %v", got, want)
	}
}

func TestDemoEstimatorRejectsNonFinite(t *testing.T) {
	v := soil.Demo()
	rec, err := soil.Assemble(v, soil.Defaults(v).With(soil.KeyThickness, math.Inf(1)))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var pe *PredictionError
	if _, err := (DemoEstimator{}).Predict(rec); !errors.As(err, &pe) {
		t.Errorf("err = %v, want *PredictionError", err)
	}
}

func TestTreeComparesAtFloat32(t *testing.T) {
	threshold := float64(float32(150.3))
	est, err := Artifact{
		FormatVersion: "1.2",
		Kind:          KindRandomForest,
		FeatureNames:  soil.Base().Columns,
		Trees: []TreeArray{{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{0, -2, -2},
			Threshold:     []float64{threshold, -2, -2},
			Value:         []float64{0, 100, 200},
		}},
	}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Above the threshold in float64, equal to it once rounded to float32.
	x := threshold + 1e-6
	v := soil.Base()
	rec, err := soil.Assemble(v, soil.Defaults(v).With(soil.KeyThickness, x).WithClass("A-4"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got, _ := est.Predict(rec); got != 100 {
		t.Errorf("Predict() = %v, want the left leaf 100", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateLoading:       "loading",
		StateReady:         "ready",
		StateUnavailable:   "unavailable",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
