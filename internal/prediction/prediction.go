package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// FeatureNames is the column order the model was trained on.
var FeatureNames = []string{"Age", "Height", "Weight", "Duration", "Heart_Rate", "Body_Temp"}

// ErrNonFinite is returned when a model produces NaN or ±Inf.
var ErrNonFinite = errors.New("model returned a non-finite value")

// Features are the six numeric model inputs.
type Features struct {
	Age       float64 `json:"age"`
	Height    float64 `json:"height"`
	Weight    float64 `json:"weight"`
	Duration  float64 `json:"duration"`
	HeartRate float64 `json:"heart_rate"`
	BodyTemp  float64 `json:"body_temp"`
}

// Vector returns the features in FeatureNames order.
func (f Features) Vector() []float64 {
	return []float64{f.Age, f.Height, f.Weight, f.Duration, f.HeartRate, f.BodyTemp}
}

// Predictor is an opaque regression model.
type Predictor interface {
	Predict(ctx context.Context, f Features) (float64, error)
}

// Estimator turns raw model output into the persisted calorie figure.
type Estimator struct {
	model  Predictor
	square bool
}

// NewEstimator wraps model. With square set the raw output is squared, which
// matches a model trained against the square root of calories.
func NewEstimator(model Predictor, square bool) *Estimator {
	return &Estimator{model: model, square: square}
}

// Estimate returns the calories burnt for f.
func (e *Estimator) Estimate(ctx context.Context, f Features) (float64, error) {
	raw, err := e.model.Predict(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, ErrNonFinite
	}
	if e.square {
		return raw * raw, nil
	}
	return raw, nil
}

// FormatKcal renders an estimate the way the form displays it.
func FormatKcal(calories float64) string {
	return fmt.Sprintf("%.2f kcal", calories)
}
