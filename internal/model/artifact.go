// internal/model/artifact.go
package model

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-version"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SupportedFormats is the range of artifact format versions this build reads.
const SupportedFormats = ">= 1.0, < 2.0"

// Estimator kinds
const (
	KindRandomForest     = "random_forest"
	KindGradientBoosting = "gradient_boosting"
	KindLinear           = "linear"
)

// Artifact is the on-disk form of an exported regressor.
//
// Tree arrays follow scikit-learn's tree_ layout with value flattened to one
// number per node. A node is a leaf when children_left is -1; otherwise
// samples with x[feature] <= threshold go left.
type Artifact struct {
	FormatVersion string      `json:"format_version"`
	Kind          string      `json:"kind"`
	FeatureNames  []string    `json:"feature_names"`
	Trees         []TreeArray `json:"trees,omitempty"`
	LearningRate  float64     `json:"learning_rate,omitempty"`
	Init          float64     `json:"init,omitempty"`
	Coef          []float64   `json:"coef,omitempty"`
	Intercept     float64     `json:"intercept,omitempty"`
}

// TreeArray is one decision tree.
type TreeArray struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// LoadFile reads and decodes the artifact at path.
func LoadFile(path string) (Estimator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses an artifact and builds its estimator.
func Decode(data []byte) (Estimator, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return a.Build()
}

// Build validates the artifact and returns the estimator it describes.
func (a Artifact) Build() (Estimator, error) {
	if err := checkFormatVersion(a.FormatVersion); err != nil {
		return nil, err
	}
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: no feature_names", ErrInvalidArtifact)
	}

	switch a.Kind {
	case KindRandomForest, KindGradientBoosting:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("%w: %s without trees", ErrInvalidArtifact, a.Kind)
		}
		for i, t := range a.Trees {
			if err := t.validate(len(a.FeatureNames)); err != nil {
				return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
			}
		}
		e := &TreeEnsemble{
			kind:     a.Kind,
			features: append([]string(nil), a.FeatureNames...),
			trees:    append([]TreeArray(nil), a.Trees...),
		}
		if a.Kind == KindGradientBoosting {
			e.learningRate = a.LearningRate
			e.init = a.Init
		}
		return e, nil

	case KindLinear:
		if len(a.Coef) != len(a.FeatureNames) {
			return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidArtifact, len(a.Coef), len(a.FeatureNames))
		}
		return &Linear{
			features:  append([]string(nil), a.FeatureNames...),
			coef:      append([]float64(nil), a.Coef...),
			intercept: a.Intercept,
		}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedKind, a.Kind)
}

func checkFormatVersion(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: format_version is missing", ErrUnsupportedVersion)
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedVersion, err)
	}
	constraint, err := version.NewConstraint(SupportedFormats)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s (need %s)", ErrUnsupportedVersion, raw, SupportedFormats)
	}
	return nil
}

// validate checks array lengths and that every child index points forward,
// which guarantees evaluation terminates.
func (t TreeArray) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have different lengths")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 {
			if r != -1 {
				return fmt.Errorf("node %d has only one child", i)
			}
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has out-of-order children %d/%d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, t.Feature[i], nFeatures)
		}
	}
	return nil
}
