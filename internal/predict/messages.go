package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/aceteam-ai/modulus-cli/internal/model"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// User-facing messages.
const (
	MsgNotReady      = "Please fill in all input parameters before predicting."
	MsgCheckFeatures = "Please check if your model expects these exact feature names and order."
	MsgDemoNote      = "Demo mode: this value comes from a placeholder formula, not a trained model."
)

// Message converts a pipeline error into the text shown to the user and an
// optional hint.
func Message(err error) (msg, hint string) {
	var (
		notReady *NotReadyError
		loadErr  *model.LoadError
		predErr  *model.PredictionError
	)
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &notReady):
		return MsgNotReady, fmt.Sprintf("Missing or invalid: %v", notReady.Failed)
	case errors.Is(err, model.ErrModelUnavailable):
		if errors.As(err, &loadErr) {
			return fmt.Sprintf("Model not loaded. Please check that '%s' exists in the app directory.", loadErr.Path),
				loadErr.Err.Error()
		}
		return "Model not loaded.", ""
	case errors.Is(err, soil.ErrUnknownSoilClass):
		return fmt.Sprintf("Prediction error: %v", err), fmt.Sprintf("Supported classes: %v", soil.EncodableClasses())
	case errors.As(err, &predErr):
		return fmt.Sprintf("Prediction error: %v", predErr.Err), MsgCheckFeatures
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Prediction canceled.", ""
	}
	return fmt.Sprintf("Prediction error: %v", err), ""
}
