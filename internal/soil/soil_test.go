package soil

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestAssembleColumnsMatchSchema(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		want    []string
	}{
		{
			name:    "base",
			variant: Base(),
			want: []string{
				"REPR_THICKNESS", "NO_4_PASSING", "NO_10_PASSING", "NO_40_PASSING", "NO_80_PASSING",
				"NO_200_PASSING", "LIQUID_LIMIT", "PLASTIC_LIMIT", "PLASTICITY_INDEX", "AASHTO_SOIL_CLASS",
				"SPEC_GRAVITY", "MAX_LAB_DRY_DENSITY", "OPTIMUM_LAB_MOISTURE", "HYDRAULIC_CONDUCTIVITY",
			},
		},
		{
			name:    "subgrade",
			variant: Subgrade(),
			want: []string{
				"NO_4_PASSING", "NO_10_PASSING", "NO_40_PASSING", "NO_80_PASSING", "NO_200_PASSING",
				"COARSE_SAND", "FINE_SAND", "SILT", "CLAY",
				"MAX_LAB_DRY_DENSITY", "OPTIMUM_LAB_MOISTURE", "LIQUID_LIMIT", "PLASTIC_LIMIT",
			},
		},
		{
			name:    "demo",
			variant: Demo(),
			want: []string{
				"REPR_THICKNESS", "NO_4_PASSING", "NO_10_PASSING", "NO_40_PASSING", "NO_80_PASSING",
				"NO_200_PASSING", "LIQUID_LIMIT", "PLASTIC_LIMIT", "PLASTICITY_INDEX", "AASHTO_SOIL_CLASS",
				"SPEC_GRAVITY", "MAX_LAB_DRY_DENSITY", "OPTIMUM_LAB_MOISTURE", "HYDRAULIC_CONDUCTIVITY",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Defaults(tt.variant)
			if v := tt.variant.Check(snap); !v.Ready {
				t.Fatalf("defaults should pass the gate, failed: %v", v.Failed)
			}
			rec, err := Assemble(tt.variant, snap)
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if got := rec.Columns(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Columns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssembleDropsUnknownKeys(t *testing.T) {
	v := Subgrade()
	values := Defaults(v).Values()
	values["repr_thickness"] = 150
	values["spec_gravity"] = 2.65

	rec, err := Assemble(v, NewSnapshot(v.Name, values, "A-4"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(rec.Cells) != 13 {
		t.Errorf("len(Cells) = %d, want 13", len(rec.Cells))
	}
	if _, ok := rec.Get("REPR_THICKNESS"); ok {
		t.Error("subgrade record should not carry REPR_THICKNESS")
	}
	if _, ok := rec.Get(ColumnSoilClass); ok {
		t.Error("subgrade record should not carry a soil class")
	}
}

func TestAssembleMissingField(t *testing.T) {
	v := Base()
	values := Defaults(v).Values()
	delete(values, KeySpecGravity)

	_, err := Assemble(v, NewSnapshot(v.Name, values, "A-4"))
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestEncodeClass(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"A-1-a", 0},
		{"A-1-b", 1},
		{"A-2-4", 2},
		{"A-2-6", 3},
		{"A-2-7", 4},
		{"A-3", 5},
		{"A-4", 6},
		{"A-5", 7},
		{"A-6", 8},
		{"A-7-6", 9},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := EncodeClass(tt.label)
			if err != nil {
				t.Fatalf("EncodeClass(%q): %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("EncodeClass(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestEncodeClassUndefinedLabels(t *testing.T) {
	for _, label := range []string{"A-2-5", "A-7-5", "", "B-1"} {
		t.Run(label, func(t *testing.T) {
			if _, err := EncodeClass(label); !errors.Is(err, ErrUnknownSoilClass) {
				t.Errorf("EncodeClass(%q) err = %v, want ErrUnknownSoilClass", label, err)
			}
		})
	}
}

func TestBaseAssemblerRejectsUndefinedClass(t *testing.T) {
	v := Base()
	for _, label := range []string{"A-2-5", "A-7-5"} {
		snap := Defaults(v).WithClass(label)
		if _, err := Assemble(v, snap); !errors.Is(err, ErrUnknownSoilClass) {
			t.Errorf("Assemble with %s: err = %v, want ErrUnknownSoilClass", label, err)
		}
	}
}

func TestEncodableClasses(t *testing.T) {
	want := []string{"A-1-a", "A-1-b", "A-2-4", "A-2-6", "A-2-7", "A-3", "A-4", "A-5", "A-6", "A-7-6"}
	if got := EncodableClasses(); !reflect.DeepEqual(got, want) {
		t.Errorf("EncodableClasses() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(Base().ClassOptions, want) {
		t.Errorf("Base().ClassOptions = %v, want %v", Base().ClassOptions, want)
	}
	if len(Demo().ClassOptions) != 12 {
		t.Errorf("Demo offers %d classes, want 12", len(Demo().ClassOptions))
	}
}

func TestBaseEndToEndRow(t *testing.T) {
	v := Base()
	snap := NewSnapshot(v.Name, map[string]float64{
		KeyThickness:       150,
		KeyNo4Passing:      90,
		KeyNo10Passing:     80,
		KeyNo40Passing:     60,
		KeyNo80Passing:     40,
		KeyNo200Passing:    20,
		KeyLiquidLimit:     25,
		KeyPlasticLimit:    15,
		KeyPlasticityIndex: 10,
		KeySpecGravity:     2.65,
		KeyMaxDryDensity:   2.0,
		KeyOptimumMoisture: 10.0,
		KeyHydraulicCond:   1e-7,
	}, "A-4")

	if verdict := v.Check(snap); !verdict.Ready {
		t.Fatalf("gate rejected: %v", verdict.Failed)
	}
	rec, err := Assemble(v, snap)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	row, err := rec.Float64s()
	if err != nil {
		t.Fatalf("Float64s: %v", err)
	}
	want := []float64{150, 90, 80, 60, 40, 20, 25, 15, 10, 6, 2.65, 2.0, 10.0, 1e-7}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %v, want %v", row, want)
	}
}

func TestDemoRecordKeepsRawLabel(t *testing.T) {
	v := Demo()
	rec, err := Assemble(v, Defaults(v).WithClass("A-7-5"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cell, ok := rec.Get(ColumnSoilClass)
	if !ok || !cell.IsLabel || cell.Label != "A-7-5" {
		t.Errorf("class cell = %+v, want raw label A-7-5", cell)
	}
	if _, err := rec.Float64s(); !errors.Is(err, ErrLabelCell) {
		t.Errorf("Float64s err = %v, want ErrLabelCell", err)
	}
}

func TestGateBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		variant   Variant
		key       string
		value     float64
		wantReady bool
	}{
		{"subgrade clay zero accepted", Subgrade(), KeyClay, 0, true},
		{"subgrade silt zero accepted", Subgrade(), KeySilt, 0, true},
		{"subgrade liquid limit zero rejected", Subgrade(), KeyLiquidLimit, 0, false},
		{"base plasticity index zero accepted", Base(), KeyPlasticityIndex, 0, true},
		{"base thickness zero rejected", Base(), KeyThickness, 0, false},
		{"base conductivity zero rejected", Base(), KeyHydraulicCond, 0, false},
		// The demo form's all-truthy check treats 0.0 as missing.
		{"demo plasticity index zero rejected", Demo(), KeyPlasticityIndex, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Defaults(tt.variant).With(tt.key, tt.value)
			verdict := tt.variant.Check(snap)
			if verdict.Ready != tt.wantReady {
				t.Errorf("Ready = %v, want %v (failed: %v)", verdict.Ready, tt.wantReady, verdict.Failed)
			}
			if !tt.wantReady && (len(verdict.Failed) != 1 || verdict.Failed[0] != tt.key) {
				t.Errorf("Failed = %v, want [%s]", verdict.Failed, tt.key)
			}
		})
	}
}

func TestGateRulesModeForDemo(t *testing.T) {
	v := Demo().WithGateMode(GateRules)
	snap := Defaults(v).With(KeyPlasticityIndex, 0)
	if verdict := v.Check(snap); !verdict.Ready {
		t.Errorf("rules mode should accept PI = 0, failed: %v", verdict.Failed)
	}
}

func TestGateIdempotent(t *testing.T) {
	for _, v := range All() {
		for _, snap := range []Snapshot{Defaults(v), Defaults(v).With(v.Fields[0].Key, 0)} {
			first := v.Check(snap)
			second := v.Check(snap)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("%s: Check not idempotent: %+v vs %+v", v.Name, first, second)
			}
		}
	}
}

func TestGateMissingClass(t *testing.T) {
	v := Base()
	verdict := v.Check(Defaults(v).WithClass(""))
	if verdict.Ready {
		t.Fatal("empty class should not be ready")
	}
	if verdict.Failed[len(verdict.Failed)-1] != KeySoilClass {
		t.Errorf("Failed = %v, want %s last", verdict.Failed, KeySoilClass)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	values := map[string]float64{KeyClay: 20}
	snap := NewSnapshot(VariantSubgrade, values, "")
	values[KeyClay] = 99

	if got, _ := snap.Value(KeyClay); got != 20 {
		t.Errorf("snapshot changed with caller map: clay = %v", got)
	}
	changed := snap.With(KeyClay, 5)
	if got, _ := snap.Value(KeyClay); got != 20 {
		t.Errorf("With mutated the original: clay = %v", got)
	}
	if got, _ := changed.Value(KeyClay); got != 5 {
		t.Errorf("With: clay = %v, want 5", got)
	}
}

func TestFieldClampAndNudge(t *testing.T) {
	gs, _ := Base().Field(KeySpecGravity)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"clamp below min", gs.Clamp(1.2), 2.0},
		{"clamp above max", gs.Clamp(9), 3.5},
		{"clamp in range", gs.Clamp(2.7), 2.7},
		{"nudge up", gs.Nudge(2.65, 1), 2.66},
		{"nudge clamps", gs.Nudge(3.5, 3), 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := tt.got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	thickness, _ := Demo().Field(KeyThickness)
	if got := thickness.Clamp(1e6); got != 1e6 {
		t.Errorf("unbounded field clamped to %v", got)
	}

	nonFinite := []struct {
		name  string
		field Field
		in    float64
		want  float64
	}{
		{"+Inf bounded", gs, math.Inf(1), 3.5},
		{"-Inf bounded", gs, math.Inf(-1), 2.0},
		{"+Inf unbounded", thickness, math.Inf(1), 0},
		{"NaN unbounded", thickness, math.NaN(), 0},
	}
	for _, tt := range nonFinite {
		if got := tt.field.Clamp(tt.in); got != tt.want {
			t.Errorf("%s: Clamp = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"base", "Subgrade", " demo "} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("shoulder"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Lookup(shoulder) err = %v, want ErrUnknownVariant", err)
	}
}

func TestParseGateMode(t *testing.T) {
	if m, err := ParseGateMode("Rules"); err != nil || m != GateRules {
		t.Errorf("ParseGateMode(Rules) = %v, %v", m, err)
	}
	if _, err := ParseGateMode("lenient"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
