package soil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned by Lookup for names it doesn't know.
var ErrUnknownVariant = errors.New("unknown variant")

// Variant names.
const (
	VariantBase     = "base"
	VariantSubgrade = "subgrade"
	VariantDemo     = "demo"
)

// ClassEncoding controls how the soil class reaches the model.
type ClassEncoding int

const (
	// ClassNone means the variant has no soil class input.
	ClassNone ClassEncoding = iota
	// ClassLabel passes the raw label (e.g. "A-4").
	ClassLabel
	// ClassIndex passes the integer code from EncodeClass.
	ClassIndex
)

func (c ClassEncoding) String() string {
	switch c {
	case ClassLabel:
		return "label"
	case ClassIndex:
		return "index"
	default:
		return "none"
	}
}

// Variant is one prediction form: its inputs, model schema and gate.
type Variant struct {
	Name         string
	Title        string
	Layer        string
	Fields       []Field
	Columns      []string
	Class        ClassEncoding
	ClassOptions []string
	Gate         Gate
	ModelFile    string
}

// Field returns the field with the given key.
func (v Variant) Field(key string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// FieldForColumn returns the field feeding a model column.
func (v Variant) FieldForColumn(column string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}

// HasClass reports whether the variant collects a soil class.
func (v Variant) HasClass() bool {
	return v.Class != ClassNone
}

// WithGateMode returns a copy of v whose gate evaluates in mode.
func (v Variant) WithGateMode(mode GateMode) Variant {
	v.Gate.Mode = mode
	return v
}

// Lookup resolves a variant by name.
func Lookup(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case VariantBase:
		return Base(), nil
	case VariantSubgrade:
		return Subgrade(), nil
	case VariantDemo:
		return Demo(), nil
	}
	return Variant{}, fmt.Errorf("%w %q (expected one of: %s)", ErrUnknownVariant, name, strings.Join(Names(), ", "))
}

// All returns every variant in display order.
func All() []Variant {
	return []Variant{Base(), Subgrade(), Demo()}
}

// Names returns the variant names in display order.
func Names() []string {
	return []string{VariantBase, VariantSubgrade, VariantDemo}
}

// Base is the base-layer model: 14 columns with an integer-coded soil class.
func Base() Variant {
	return Variant{
		Name:  VariantBase,
		Title: "Resilient Modulus Prediction System",
		Layer: "Predict resilient modulus for base layer using machine learning model",
		Fields: []Field{
			{Key: KeyThickness, Column: "REPR_THICKNESS", Label: "Layer Thickness", Unit: "mm",
				Help: "Enter the thickness of the base layer", Min: 0, Default: 150, Step: 10},
			percent(KeyNo4Passing, "NO_4_PASSING", "NO. 4 Passing", "Percentage passing through No. 4 sieve", 90),
			percent(KeyNo10Passing, "NO_10_PASSING", "NO. 10 Passing", "Percentage passing through No. 10 sieve", 80),
			percent(KeyNo40Passing, "NO_40_PASSING", "NO. 40 Passing", "Percentage passing through No. 40 sieve", 60),
			percent(KeyNo80Passing, "NO_80_PASSING", "NO. 80 Passing", "Percentage passing through No. 80 sieve", 40),
			percent(KeyNo200Passing, "NO_200_PASSING", "NO. 200 Passing", "Percentage passing through No. 200 sieve", 20),
			percent(KeyLiquidLimit, "LIQUID_LIMIT", "Liquid Limit", "Liquid limit of the soil", 25),
			percent(KeyPlasticLimit, "PLASTIC_LIMIT", "Plastic Limit", "Plastic limit of the soil", 15),
			{Key: KeyPlasticityIndex, Column: "PLASTICITY_INDEX", Label: "Plasticity Index",
				Help: "Plasticity index (LL - PL)", Min: 0, Max: 100, HasMax: true, Default: 10, Step: 0.1},
			{Key: KeySpecGravity, Column: "SPEC_GRAVITY", Label: "Specific Gravity",
				Help: "Specific gravity of soil solids", Min: 2.0, Max: 3.5, HasMax: true, Default: 2.65, Step: 0.01},
			{Key: KeyMaxDryDensity, Column: "MAX_LAB_DRY_DENSITY", Label: "Maximum Lab Dry Density", Unit: "g/cm³",
				Help: "Maximum dry density from laboratory compaction test", Min: 1.0, Max: 3.0, HasMax: true, Default: 2.0, Step: 0.01},
			{Key: KeyOptimumMoisture, Column: "OPTIMUM_LAB_MOISTURE", Label: "Optimum Lab Moisture Content", Unit: "%",
				Help: "Optimum moisture content from laboratory test", Min: 0, Max: 50, HasMax: true, Default: 10, Step: 0.1},
			{Key: KeyHydraulicCond, Column: "HYDRAULIC_CONDUCTIVITY", Label: "Hydraulic Conductivity", Unit: "cm/s",
				Help: "Coefficient of permeability", Min: 0, Default: 1e-7, Step: 1e-8, Format: "%.2e"},
		},
		Columns: []string{
			"REPR_THICKNESS", "NO_4_PASSING", "NO_10_PASSING", "NO_40_PASSING", "NO_80_PASSING",
			"NO_200_PASSING", "LIQUID_LIMIT", "PLASTIC_LIMIT", "PLASTICITY_INDEX", ColumnSoilClass,
			"SPEC_GRAVITY", "MAX_LAB_DRY_DENSITY", "OPTIMUM_LAB_MOISTURE", "HYDRAULIC_CONDUCTIVITY",
		},
		Class:        ClassIndex,
		ClassOptions: EncodableClasses(),
		Gate: Gate{
			Mode: GateRules,
			Rules: strictRules(
				[]string{KeyThickness, KeyNo4Passing, KeyNo10Passing, KeyNo40Passing, KeyNo80Passing,
					KeyNo200Passing, KeyLiquidLimit, KeyPlasticLimit, KeySpecGravity, KeyMaxDryDensity,
					KeyOptimumMoisture, KeyHydraulicCond},
				[]string{KeyPlasticityIndex},
			),
		},
		ModelFile: "base_model.json",
	}
}

// Subgrade is the subgrade model: gradation plus sand/silt/clay fractions and
// no soil class.
func Subgrade() Variant {
	return Variant{
		Name:  VariantSubgrade,
		Title: "Resilient Modulus Prediction System",
		Layer: "Predict resilient modulus for subgrade layer using machine learning model",
		Fields: []Field{
			percent(KeyNo4Passing, "NO_4_PASSING", "NO. 4 Passing", "Percentage passing through No. 4 sieve", 90),
			percent(KeyNo10Passing, "NO_10_PASSING", "NO. 10 Passing", "Percentage passing through No. 10 sieve", 80),
			percent(KeyNo40Passing, "NO_40_PASSING", "NO. 40 Passing", "Percentage passing through No. 40 sieve", 60),
			percent(KeyNo80Passing, "NO_80_PASSING", "NO. 80 Passing", "Percentage passing through No. 80 sieve", 40),
			percent(KeyNo200Passing, "NO_200_PASSING", "NO. 200 Passing", "Percentage passing through No. 200 sieve", 20),
			percent(KeyCoarseSand, "COARSE_SAND", "Coarse Sand", "Coarse sand content", 25),
			percent(KeyFineSand, "FINE_SAND", "Fine Sand", "Fine sand content", 25),
			percent(KeySilt, "SILT", "Silt", "Silt content", 30),
			percent(KeyClay, "CLAY", "Clay", "Clay content", 20),
			{Key: KeyMaxDryDensity, Column: "MAX_LAB_DRY_DENSITY", Label: "Maximum Lab Dry Density", Unit: "g/cm³",
				Help: "Maximum dry density from laboratory compaction test", Min: 1.0, Max: 3.0, HasMax: true, Default: 2.0, Step: 0.01},
			{Key: KeyOptimumMoisture, Column: "OPTIMUM_LAB_MOISTURE", Label: "Optimum Lab Moisture Content", Unit: "%",
				Help: "Optimum moisture content from laboratory test", Min: 0, Max: 50, HasMax: true, Default: 10, Step: 0.1},
			percent(KeyLiquidLimit, "LIQUID_LIMIT", "Liquid Limit", "Liquid limit of the soil", 25),
			percent(KeyPlasticLimit, "PLASTIC_LIMIT", "Plastic Limit", "Plastic limit of the soil", 15),
		},
		Columns: []string{
			"NO_4_PASSING", "NO_10_PASSING", "NO_40_PASSING", "NO_80_PASSING", "NO_200_PASSING",
			"COARSE_SAND", "FINE_SAND", "SILT", "CLAY",
			"MAX_LAB_DRY_DENSITY", "OPTIMUM_LAB_MOISTURE", "LIQUID_LIMIT", "PLASTIC_LIMIT",
		},
		Class: ClassNone,
		Gate: Gate{
			Mode: GateRules,
			Rules: strictRules(
				[]string{KeyNo4Passing, KeyNo10Passing, KeyNo40Passing, KeyNo80Passing, KeyNo200Passing,
					KeyMaxDryDensity, KeyOptimumMoisture, KeyLiquidLimit, KeyPlasticLimit},
				[]string{KeyCoarseSand, KeyFineSand, KeySilt, KeyClay},
			),
		},
		ModelFile: "subgrade_model.json",
	}
}

// Demo is the placeholder form: same inputs as Base, a raw class label and an
// inline formula instead of a trained model. Its gate defaults to the
// all-truthy check, under which a zero plasticity index blocks prediction.
func Demo() Variant {
	return Variant{
		Name:  VariantDemo,
		Title: "Resilient Modulus Prediction System",
		Layer: "Predict resilient modulus for base layer using machine learning model (demo mode)",
		Fields: []Field{
			{Key: KeyThickness, Column: "REPR_THICKNESS", Label: "Layer Thickness", Unit: "mm",
				Help: "Representative thickness of the base layer", Min: 0, Default: 150, Step: 1},
			percent(KeyNo4Passing, "NO_4_PASSING", "NO. 4 Passing", "Percentage passing through No. 4 sieve", 90),
			percent(KeyNo10Passing, "NO_10_PASSING", "NO. 10 Passing", "Percentage passing through No. 10 sieve", 80),
			percent(KeyNo40Passing, "NO_40_PASSING", "NO. 40 Passing", "Percentage passing through No. 40 sieve", 60),
			percent(KeyNo80Passing, "NO_80_PASSING", "NO. 80 Passing", "Percentage passing through No. 80 sieve", 40),
			percent(KeyNo200Passing, "NO_200_PASSING", "NO. 200 Passing", "Percentage passing through No. 200 sieve", 20),
			{Key: KeyLiquidLimit, Column: "LIQUID_LIMIT", Label: "Liquid Limit", Unit: "%",
				Help: "Liquid limit of the soil", Min: 0, Default: 25, Step: 0.1},
			{Key: KeyPlasticLimit, Column: "PLASTIC_LIMIT", Label: "Plastic Limit", Unit: "%",
				Help: "Plastic limit of the soil", Min: 0, Default: 15, Step: 0.1},
			{Key: KeyPlasticityIndex, Column: "PLASTICITY_INDEX", Label: "Plasticity Index",
				Help: "Plasticity index of the soil", Min: 0, Default: 10, Step: 0.1},
			{Key: KeySpecGravity, Column: "SPEC_GRAVITY", Label: "Specific Gravity",
				Help: "Specific gravity of soil particles", Min: 0, Default: 2.65, Step: 0.01},
			{Key: KeyMaxDryDensity, Column: "MAX_LAB_DRY_DENSITY", Label: "Maximum Lab Dry Density", Unit: "g/cm³",
				Help: "Maximum dry density from laboratory tests", Min: 0, Default: 2.0, Step: 0.01},
			{Key: KeyOptimumMoisture, Column: "OPTIMUM_LAB_MOISTURE", Label: "Optimum Lab Moisture Content", Unit: "%",
				Help: "Optimum moisture content", Min: 0, Default: 10, Step: 0.1},
			{Key: KeyHydraulicCond, Column: "HYDRAULIC_CONDUCTIVITY", Label: "Hydraulic Conductivity", Unit: "cm/s",
				Help: "Hydraulic conductivity of the material", Min: 0, Default: 1e-7, Step: 1e-8, Format: "%.2e"},
		},
		Columns: []string{
			"REPR_THICKNESS", "NO_4_PASSING", "NO_10_PASSING", "NO_40_PASSING", "NO_80_PASSING",
			"NO_200_PASSING", "LIQUID_LIMIT", "PLASTIC_LIMIT", "PLASTICITY_INDEX", ColumnSoilClass,
			"SPEC_GRAVITY", "MAX_LAB_DRY_DENSITY", "OPTIMUM_LAB_MOISTURE", "HYDRAULIC_CONDUCTIVITY",
		},
		Class:        ClassLabel,
		ClassOptions: append([]string(nil), SoilClasses...),
		Gate: Gate{
			Mode: GateTruthy,
			Rules: strictRules(
				[]string{KeyThickness, KeyNo4Passing, KeyNo10Passing, KeyNo40Passing, KeyNo80Passing,
					KeyNo200Passing, KeyLiquidLimit, KeyPlasticLimit, KeySpecGravity, KeyMaxDryDensity,
					KeyOptimumMoisture, KeyHydraulicCond},
				[]string{KeyPlasticityIndex},
			),
		},
	}
}
