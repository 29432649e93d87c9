// Package server exposes the prediction pipeline over HTTP.
//
// Endpoints:
//   - GET  /health             overall status and per-variant model state
//   - GET  /variants           input schemas for rendering a form
//   - POST /predict/{variant}  run one prediction
package server

import (
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// Health status values
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

// HealthResponse is returned from /health.
// Status is degraded when any model failed to load.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Models  map[string]string `json:"models"`
}

// VariantInfo describes one variant's inputs.
type VariantInfo struct {
	Name          string       `json:"name"`
	Title         string       `json:"title"`
	Layer         string       `json:"layer"`
	Fields        []soil.Field `json:"fields"`
	Columns       []string     `json:"columns"`
	ClassEncoding string       `json:"class_encoding"`
	ClassOptions  []string     `json:"class_options,omitempty"`
	Gate          string       `json:"gate"`
	ModelState    string       `json:"model_state"`
}

// PredictResponse is returned from a successful POST /predict/{variant}.
type PredictResponse struct {
	ID         string         `json:"id"`
	Variant    string         `json:"variant"`
	ModulusMPa float64        `json:"modulus_mpa"`
	Display    string         `json:"display"`
	Demo       bool           `json:"demo"`
	Record     map[string]any `json:"record"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Hint   string   `json:"hint,omitempty"`
	Failed []string `json:"failed,omitempty"`
}
