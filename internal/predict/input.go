package predict

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

var (
	// ErrUnknownInput is returned for value keys the variant does not collect.
	ErrUnknownInput = errors.New("unknown input")

	// ErrOutOfRange is returned for values outside a field's bounds.
	ErrOutOfRange = errors.New("value out of range")
)

// Input is a non-interactive set of lab-test values, as read from an input
// file or an HTTP request body.
type Input struct {
	Values      map[string]float64 `json:"values" yaml:"values"`
	SoilClass   string             `json:"soil_class,omitempty" yaml:"soil_class,omitempty"`
	UseDefaults bool               `json:"use_defaults,omitempty" yaml:"use_defaults,omitempty"`
}

// Snapshot validates in against v and captures it. With UseDefaults, absent
// values take the field default and an absent class takes the first option;
// otherwise absent entries stay absent and the gate reports them.
func (in Input) Snapshot(v soil.Variant) (soil.Snapshot, error) {
	values := make(map[string]float64, len(v.Fields))
	if in.UseDefaults {
		for _, f := range v.Fields {
			values[f.Key] = f.Default
		}
	}

	for key, val := range in.Values {
		f, ok := v.Field(key)
		if !ok {
			return soil.Snapshot{}, fmt.Errorf("%w %q for %s", ErrUnknownInput, key, v.Name)
		}
		if math.IsNaN(val) || math.IsInf(val, 0) || f.Clamp(val) != val {
			return soil.Snapshot{}, fmt.Errorf("%w: %s = %v (%s)", ErrOutOfRange, key, val, bounds(f))
		}
		values[key] = val
	}

	class := in.SoilClass
	switch {
	case !v.HasClass():
		if class != "" {
			return soil.Snapshot{}, fmt.Errorf("%w: %s takes no soil class", ErrUnknownInput, v.Name)
		}
	case class == "":
		if in.UseDefaults && len(v.ClassOptions) > 0 {
			class = v.ClassOptions[0]
		}
	case !slices.Contains(v.ClassOptions, class):
		return soil.Snapshot{}, fmt.Errorf("%w %q for %s", soil.ErrUnknownSoilClass, class, v.Name)
	}

	return soil.NewSnapshot(v.Name, values, class), nil
}

func bounds(f soil.Field) string {
	if f.HasMax {
		return fmt.Sprintf("min %s, max %s", f.FormatValue(f.Min), f.FormatValue(f.Max))
	}
	return fmt.Sprintf("min %s", f.FormatValue(f.Min))
}
