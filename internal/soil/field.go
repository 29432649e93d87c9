// Package soil defines the lab-test inputs, variant schemas, validation gate
// and record assembly used by the resilient modulus predictors.
package soil

import (
	"fmt"
	"math"
)

// Field keys shared by the variants.
const (
	KeyThickness        = "repr_thickness"
	KeyNo4Passing       = "no_4_passing"
	KeyNo10Passing      = "no_10_passing"
	KeyNo40Passing      = "no_40_passing"
	KeyNo80Passing      = "no_80_passing"
	KeyNo200Passing     = "no_200_passing"
	KeyLiquidLimit      = "liquid_limit"
	KeyPlasticLimit     = "plastic_limit"
	KeyPlasticityIndex  = "plasticity_index"
	KeySpecGravity      = "spec_gravity"
	KeyMaxDryDensity    = "max_lab_dry_density"
	KeyOptimumMoisture  = "optimum_lab_moisture"
	KeyHydraulicCond    = "hydraulic_conductivity"
	KeyCoarseSand       = "coarse_sand"
	KeyFineSand         = "fine_sand"
	KeySilt             = "silt"
	KeyClay             = "clay"
	KeySoilClass        = "aashto_soil_class"
	ColumnSoilClass     = "AASHTO_SOIL_CLASS"
	defaultNumberFormat = "%.2f"
)

// Field describes one bounded numeric input.
type Field struct {
	Key     string  `json:"key" yaml:"key"`
	Column  string  `json:"column" yaml:"column"`
	Label   string  `json:"label" yaml:"label"`
	Unit    string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Help    string  `json:"help,omitempty" yaml:"help,omitempty"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max,omitempty" yaml:"max,omitempty"`
	HasMax  bool    `json:"has_max" yaml:"has_max"`
	Default float64 `json:"default" yaml:"default"`
	Step    float64 `json:"step" yaml:"step"`
	Format  string  `json:"format,omitempty" yaml:"format,omitempty"`
}

// Clamp returns v restricted to the field's bounds. NaN and infinities are
// never valid lab values: +Inf maps to Max when the field has one and to Min
// otherwise.
func (f Field) Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < f.Min:
		return f.Min
	case f.HasMax && v > f.Max:
		return f.Max
	case math.IsInf(v, 1):
		return f.Min
	}
	return v
}

// Nudge moves v by n steps and clamps the result.
func (f Field) Nudge(v float64, n int) float64 {
	step := f.Step
	if step <= 0 {
		step = 1
	}
	// Snap to the step grid so repeated nudges don't drift.
	next := math.Round((v+float64(n)*step)/step) * step
	return f.Clamp(next)
}

// FormatValue renders v with the field's display format.
func (f Field) FormatValue(v float64) string {
	format := f.Format
	if format == "" {
		format = defaultNumberFormat
	}
	return fmt.Sprintf(format, v)
}

// DisplayLabel returns the label with its unit, e.g. "Liquid Limit (%)".
func (f Field) DisplayLabel() string {
	if f.Unit == "" {
		return f.Label
	}
	return fmt.Sprintf("%s (%s)", f.Label, f.Unit)
}

func percent(key, column, label, help string, def float64) Field {
	return Field{
		Key: key, Column: column, Label: label, Unit: "%", Help: help,
		Min: 0, Max: 100, HasMax: true, Default: def, Step: 0.1,
	}
}
