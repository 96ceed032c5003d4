package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultRemoteTimeout = 5 * time.Second

// RemoteModel calls a model server that accepts {"instances": [[...]]} and
// answers {"predictions": [y]}.
type RemoteModel struct {
	url     string
	timeout time.Duration
}

// NewRemoteModel builds a client for the model server at url.
func NewRemoteModel(url string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteModel{url: url, timeout: timeout}
}

type remoteRequest struct {
	Columns   []string    `json:"columns"`
	Instances [][]float64 `json:"instances"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

// Predict posts the feature vector and returns the first prediction.
func (m *RemoteModel) Predict(ctx context.Context, f Features) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(m.url)
	agent.JSON(remoteRequest{Columns: FeatureNames, Instances: [][]float64{f.Vector()}})
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return 0, fmt.Errorf("build model request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, fmt.Errorf("call model: %w", errors.Join(errs...))
	}
	if code != http.StatusOK {
		return 0, fmt.Errorf("model server returned status %d", code)
	}

	var resp remoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode model response: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return 0, errors.New("model server returned no predictions")
	}
	return resp.Predictions[0], nil
}
