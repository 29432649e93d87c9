package predict

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/aceteam-ai/modulus-cli/internal/config"
	"github.com/aceteam-ai/modulus-cli/internal/model"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// recordingPredictor captures every record it is asked to predict.
type recordingPredictor struct {
	calls []soil.Record
	value float64
	err   error
}

func (p *recordingPredictor) Predict(_ context.Context, rec soil.Record) (float64, error) {
	p.calls = append(p.calls, rec)
	return p.value, p.err
}

func newTestService(v soil.Variant, p Predictor) *Service {
	log, _ := test.NewNullLogger()
	return NewService(v, p, log)
}

func TestRunBaseEndToEnd(t *testing.T) {
	p := &recordingPredictor{value: 312.456}
	svc := newTestService(soil.Base(), p)

	snap := soil.NewSnapshot(soil.VariantBase, map[string]float64{
		soil.KeyThickness:       150,
		soil.KeyNo4Passing:      90,
		soil.KeyNo10Passing:     80,
		soil.KeyNo40Passing:     60,
		soil.KeyNo80Passing:     40,
		soil.KeyNo200Passing:    20,
		soil.KeyLiquidLimit:     25,
		soil.KeyPlasticLimit:    15,
		soil.KeyPlasticityIndex: 10,
		soil.KeySpecGravity:     2.65,
		soil.KeyMaxDryDensity:   2.0,
		soil.KeyOptimumMoisture: 10.0,
		soil.KeyHydraulicCond:   1e-7,
	}, "A-4")

	res, err := svc.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(p.calls) != 1 {
		t.Fatalf("predictor called %d times, want 1", len(p.calls))
	}

	row, err := p.calls[0].Float64s()
	if err != nil {
		t.Fatalf("Float64s: %v", err)
	}
	want := []float64{150, 90, 80, 60, 40, 20, 25, 15, 10, 6, 2.65, 2.0, 10.0, 1e-7}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %v, want %v", row, want)
	}
	if res.Display() != "312.46 MPa" {
		t.Errorf("Display() = %q, want %q", res.Display(), "312.46 MPa")
	}
	if res.ID == "" {
		t.Error("result should carry an id")
	}
	if res.Demo {
		t.Error("recording predictor is not a demo")
	}
}

func TestRunGateRejectionSkipsPredictor(t *testing.T) {
	p := &recordingPredictor{}
	svc := newTestService(soil.Demo(), p)

	_, err := svc.Run(context.Background(), soil.Defaults(soil.Demo()).With(soil.KeyPlasticityIndex, 0))
	var nr *NotReadyError
	if !errors.As(err, &nr) {
		t.Fatalf("err = %v, want *NotReadyError", err)
	}
	if !reflect.DeepEqual(nr.Failed, []string{soil.KeyPlasticityIndex}) {
		t.Errorf("Failed = %v", nr.Failed)
	}
	if len(p.calls) != 0 {
		t.Errorf("predictor called %d times after gate rejection", len(p.calls))
	}
}

func TestRunUnknownClassIsPredictionError(t *testing.T) {
	p := &recordingPredictor{}
	svc := newTestService(soil.Base(), p)

	_, err := svc.Run(context.Background(), soil.Defaults(soil.Base()).WithClass("A-7-5"))
	var pe *model.PredictionError
	if !errors.As(err, &pe) || !errors.Is(err, soil.ErrUnknownSoilClass) {
		t.Fatalf("err = %v, want PredictionError wrapping ErrUnknownSoilClass", err)
	}
	if len(p.calls) != 0 {
		t.Error("predictor should not run when encoding fails")
	}

	// The service stays usable.
	if _, err := svc.Run(context.Background(), soil.Defaults(soil.Base())); err != nil {
		t.Errorf("retry: %v", err)
	}
}

func TestRunMissingArtifact(t *testing.T) {
	log, _ := test.NewNullLogger()
	loads := 0
	h := model.NewHandle(soil.VariantBase, filepath.Join(t.TempDir(), "base_model.json"),
		model.WithLogger(log),
		model.WithLoader(func(path string) (model.Estimator, error) {
			loads++
			return model.LoadFile(path)
		}),
	)
	svc := newTestService(soil.Base(), h)

	for i := 0; i < 3; i++ {
		_, err := svc.Run(context.Background(), soil.Defaults(soil.Base()))
		if !errors.Is(err, model.ErrModelUnavailable) {
			t.Fatalf("attempt %d: err = %v, want ErrModelUnavailable", i, err)
		}
		msg, _ := Message(err)
		if !strings.Contains(msg, "Model not loaded") || !strings.Contains(msg, "base_model.json") {
			t.Errorf("Message() = %q", msg)
		}
	}
	if loads != 1 {
		t.Errorf("artifact deserialization attempted %d times, want 1", loads)
	}
}

func TestRunDemo(t *testing.T) {
	svc := newTestService(soil.Demo(), model.NewStaticHandle(soil.VariantDemo, model.DemoEstimator{}))

	res, err := svc.Run(context.Background(), soil.Defaults(soil.Demo()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Demo {
		t.Error("demo result should be flagged")
	}
	if res.Display() != "3080.00 MPa" {
		t.Errorf("Display() = %q, want 3080.00 MPa", res.Display())
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantHint string
	}{
		{"nil", nil, "", ""},
		{
			"not ready",
			&NotReadyError{Variant: "base", Failed: []string{"clay"}},
			MsgNotReady, "Missing or invalid: [clay]",
		},
		{
			"prediction",
			&model.PredictionError{Model: "base", Err: errors.New("bad order")},
			"Prediction error: bad order", MsgCheckFeatures,
		},
		{"canceled", context.Canceled, "Prediction canceled.", ""},
		{"unavailable without path", model.ErrModelUnavailable, "Model not loaded.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, hint := Message(tt.err)
			if msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
			if hint != tt.wantHint {
				t.Errorf("hint = %q, want %q", hint, tt.wantHint)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Setenv("MODULUS_BASE_MODEL", filepath.Join("..", "model", "testdata", "base_forest.json"))
	t.Setenv("MODULUS_SUBGRADE_MODEL", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("MODULUS_DEMO_GATE", "rules")
	log, _ := test.NewNullLogger()

	reg := NewRegistry(config.DefaultConfig(), log)
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"base", "demo", "subgrade"}) {
		t.Errorf("Names() = %v", got)
	}

	states := reg.States()
	if states["base"] != "uninitialized" || states["demo"] != "ready" {
		t.Errorf("States() = %v", states)
	}

	errs := reg.Preload()
	if _, ok := errs["subgrade"]; !ok {
		t.Error("expected subgrade preload failure")
	}
	if _, ok := errs["base"]; ok {
		t.Errorf("base preload failed: %v", errs["base"])
	}

	demo, err := reg.Service("DEMO")
	if err != nil {
		t.Fatalf("Service(DEMO): %v", err)
	}
	// demo.gate=rules lets a zero plasticity index through.
	if _, err := demo.Run(context.Background(), soil.Defaults(soil.Demo()).With(soil.KeyPlasticityIndex, 0)); err != nil {
		t.Errorf("demo with rules gate: %v", err)
	}

	if _, err := reg.Service("shoulder"); !errors.Is(err, soil.ErrUnknownVariant) {
		t.Errorf("Service(shoulder) err = %v", err)
	}
}
