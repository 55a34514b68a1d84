package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnphilipp/computer/internal/answers"
	"github.com/jnphilipp/computer/internal/intents"
	"github.com/jnphilipp/computer/internal/nlu"
	"github.com/jnphilipp/computer/internal/pipeline"
	"github.com/jnphilipp/computer/internal/storage/models"
	"github.com/jnphilipp/computer/internal/weather"
)

type fixedPredictor struct {
	intent    []float64
	language  []float64
	lastInput []int64
}

func (f *fixedPredictor) Predict(ctx context.Context, encoded []int64) (*nlu.Prediction, error) {
	f.lastInput = encoded
	return &nlu.Prediction{Intent: f.intent, Language: f.language}, nil
}

type fakeAnswerStore struct {
	answers []models.Answer
}

func (f *fakeAnswerStore) AttributesByKey(key string) ([]models.Attribute, error) {
	return nil, nil
}

func (f *fakeAnswerStore) Answers(intent, language string, attributeIDs []int64) ([]models.Answer, error) {
	return f.answers, nil
}

func (f *fakeAnswerStore) FallbackAnswers(language string) ([]models.Answer, error) {
	return nil, nil
}

type emptyEntityStore struct{}

func (emptyEntityStore) TriggerEntityValues(entityName, language string) ([]string, error) {
	return nil, nil
}

type noForecast struct{}

func (noForecast) Forecast(ctx context.Context, language, userAgent string) (*weather.Summary, error) {
	return nil, errors.New("not configured")
}

type nullAudit struct{}

func (nullAudit) InsertNLURequest(record *models.NLURequest) error { return nil }

func testMappings(t *testing.T) *nlu.Mappings {
	t.Helper()

	vocab := map[string]int64{
		nlu.BeginOfSequence:   0,
		nlu.EndOfSequence:     1,
		nlu.FallbackCharacter: 2,
	}
	next := int64(3)
	for _, r := range " abcdefghijklmnopqrstuvwxyz?" {
		vocab[string(r)] = next
		next++
	}

	data, err := json.Marshal(map[string]interface{}{
		"vocab":        vocab,
		"intents":      map[string]int64{"greet": 0, "fallback": 1},
		"languages":    map[string]int64{"en": 0, "de": 1},
		"context_size": 64,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := nlu.LoadMappings(path)
	require.NoError(t, err)
	return m
}

func newTestApp(t *testing.T, predictor *fixedPredictor) *fiber.App {
	t.Helper()

	engine := pipeline.NewEngine(
		testMappings(t),
		predictor,
		nil,
		0,
		intents.NewRegistry(emptyEntityStore{}, noForecast{}),
		answers.NewSelector(&fakeAnswerStore{answers: []models.Answer{{ID: 1, Text: "hello there"}}}),
		nullAudit{},
	)

	app := fiber.New()
	app.Post("/api/v1/nlu", NewNLUHandler(engine).HandleNLU)
	return app
}

func TestHandleNLU(t *testing.T) {
	predictor := &fixedPredictor{intent: []float64{0.8, 0.2}, language: []float64{0.9, 0.1}}
	app := newTestApp(t, predictor)

	req := httptest.NewRequest("POST", "/api/v1/nlu", strings.NewReader(`{"text":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ResponseDate string   `json:"response_date"`
		Intent       string   `json:"intent"`
		Certainty    float64  `json:"certainty"`
		Replies      []string `json:"replies"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "greet", body.Intent)
	assert.InDelta(t, 0.8, body.Certainty, 1e-9)
	assert.Equal(t, []string{"hello there"}, body.Replies)
	assert.NotEmpty(t, body.ResponseDate)

	// Input is lowercased before the pipeline sees it: "h" has a vocab id,
	// so position 1 must not hold the fallback token.
	require.NotEmpty(t, predictor.lastInput)
	hID := int64(3 + 1 + ('h' - 'a'))
	assert.Equal(t, hID, predictor.lastInput[1])
}

func TestHandleNLUFormBody(t *testing.T) {
	predictor := &fixedPredictor{intent: []float64{0.8, 0.2}, language: []float64{0.9, 0.1}}
	app := newTestApp(t, predictor)

	req := httptest.NewRequest("POST", "/api/v1/nlu", strings.NewReader("text=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleNLUMissingText(t *testing.T) {
	app := newTestApp(t, &fixedPredictor{intent: []float64{1}, language: []float64{1}})

	req := httptest.NewRequest("POST", "/api/v1/nlu", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, `The parameter "text" was not given.`, body["error"])
}

func TestResponseDateFormat(t *testing.T) {
	app := newTestApp(t, &fixedPredictor{intent: []float64{0.8, 0.2}, language: []float64{0.9, 0.1}})

	req := httptest.NewRequest("POST", "/api/v1/nlu", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	// 2026-03-03T14:05:00:123456+0000
	date, ok := body["response_date"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}:\d{6}[+-]\d{4}$`, date)
}
