package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// LinearModel is an exported linear regression: intercept + Σ coef·feature.
type LinearModel struct {
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LoadLinearModel reads a JSON model export from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the coefficient count and, when present, the feature order.
func (m *LinearModel) Validate() error {
	if len(m.Coefficients) != len(FeatureNames) {
		return fmt.Errorf("model has %d coefficients, want %d", len(m.Coefficients), len(FeatureNames))
	}
	if len(m.Features) == 0 {
		return nil
	}
	if len(m.Features) != len(FeatureNames) {
		return fmt.Errorf("model lists %d features, want %d", len(m.Features), len(FeatureNames))
	}
	for i, name := range FeatureNames {
		if m.Features[i] != name {
			return fmt.Errorf("model feature %d is %q, want %q", i, m.Features[i], name)
		}
	}
	return nil
}

// Predict evaluates the model.
func (m *LinearModel) Predict(ctx context.Context, f Features) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	y := m.Intercept
	for i, x := range f.Vector() {
		y += m.Coefficients[i] * x
	}
	return y, nil
}
