package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/nlu"
	"github.com/jnphilipp/computer/pkg/circuitbreaker"
	"github.com/jnphilipp/computer/pkg/logger"
)

// Client invokes a served classifier artifact over its REST predict
// endpoint. It implements nlu.Predictor. The circuit breaker turns a
// persistently unreachable serving backend into fast failures so requests
// degrade instead of piling up.
type Client struct {
	baseURL    string
	modelName  string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL, modelName string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New(fmt.Sprintf("model-%s", modelName), circuitbreaker.Config{
			Logger: logger.Log,
		}),
	}
}

type predictRequest struct {
	Instances [][]int64 `json:"instances"`
}

type predictResponse struct {
	Predictions []nlu.Prediction `json:"predictions"`
	Error       string           `json:"error,omitempty"`
}

func (c *Client) Predict(ctx context.Context, encoded []int64) (*nlu.Prediction, error) {
	var prediction *nlu.Prediction

	err := c.breaker.Execute(func() error {
		var err error
		prediction, err = c.predict(ctx, encoded)
		return err
	})
	if err != nil {
		return nil, err
	}

	return prediction, nil
}

func (c *Client) predict(ctx context.Context, encoded []int64) (*nlu.Prediction, error) {
	body, err := json.Marshal(predictRequest{Instances: [][]int64{encoded}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, c.modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model serving returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var response predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("model serving error: %s", response.Error)
	}
	if len(response.Predictions) == 0 {
		return nil, fmt.Errorf("model serving returned no predictions")
	}

	logger.Debug("Model invoked", zap.String("model", c.modelName))

	return &response.Predictions[0], nil
}
