package soil

// Snapshot is the immutable set of input values captured when a prediction
// is triggered. It is passed by value through gate, assembler and predictor.
type Snapshot struct {
	variant string
	values  map[string]float64
	class   string
}

// NewSnapshot copies values so later edits by the caller can't leak in.
func NewSnapshot(variant string, values map[string]float64, class string) Snapshot {
	cp := make(map[string]float64, len(values))
	for k, val := range values {
		cp[k] = val
	}
	return Snapshot{variant: variant, values: cp, class: class}
}

// Defaults returns a snapshot holding every field default and the first
// class option.
func Defaults(v Variant) Snapshot {
	values := make(map[string]float64, len(v.Fields))
	for _, f := range v.Fields {
		values[f.Key] = f.Default
	}
	class := ""
	if v.HasClass() && len(v.ClassOptions) > 0 {
		class = v.ClassOptions[0]
	}
	return Snapshot{variant: v.Name, values: values, class: class}
}

// Variant returns the name of the variant the snapshot was taken for.
func (s Snapshot) Variant() string { return s.variant }

// Class returns the soil class label, empty if none.
func (s Snapshot) Class() string { return s.class }

// Value returns the value for key.
func (s Snapshot) Value(key string) (float64, bool) {
	val, ok := s.values[key]
	return val, ok
}

// Values returns a copy of all numeric values.
func (s Snapshot) Values() map[string]float64 {
	cp := make(map[string]float64, len(s.values))
	for k, val := range s.values {
		cp[k] = val
	}
	return cp
}

// With returns a copy of s with key set to value.
func (s Snapshot) With(key string, value float64) Snapshot {
	values := s.Values()
	values[key] = value
	return Snapshot{variant: s.variant, values: values, class: s.class}
}

// WithClass returns a copy of s with the soil class replaced.
func (s Snapshot) WithClass(class string) Snapshot {
	return Snapshot{variant: s.variant, values: s.Values(), class: class}
}
