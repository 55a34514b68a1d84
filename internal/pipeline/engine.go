package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/answers"
	"github.com/jnphilipp/computer/internal/intents"
	"github.com/jnphilipp/computer/internal/metrics"
	"github.com/jnphilipp/computer/internal/nlu"
	"github.com/jnphilipp/computer/internal/storage/models"
	"github.com/jnphilipp/computer/pkg/logger"
)

// errorReply is the user-facing text of the error response shape. The
// original answer bank was curated against this exact string.
const errorReply = "An error occured while processing your request."

// AuditStore persists the write-once audit record of each inference call.
type AuditStore interface {
	InsertNLURequest(record *models.NLURequest) error
}

// Result is the outward response of one resolved utterance. Failed requests
// carry the literal intent "error" with certainty 1.0.
type Result struct {
	ID        string
	Intent    string
	Certainty float64
	Replies   []string
}

// Engine runs the resolution pipeline: normalize, encode, classify, extract
// properties, select an answer, render. All failures past input validation
// are converted into the error result shape; they never propagate to the
// transport layer.
type Engine struct {
	normalizer *nlu.Normalizer
	codec      *nlu.Codec
	classifier *nlu.Classifier
	generator  *nlu.Generator
	registry   *intents.Registry
	selector   *answers.Selector
	audit      AuditStore
}

// NewEngine builds the pipeline from the mapping artifact and its
// collaborators. chatPredictor may be nil; the continuation path is then
// unavailable.
func NewEngine(
	mappings *nlu.Mappings,
	predictor nlu.Predictor,
	chatPredictor nlu.Predictor,
	maxSteps int,
	registry *intents.Registry,
	selector *answers.Selector,
	audit AuditStore,
) *Engine {
	e := &Engine{
		normalizer: nlu.NewNormalizer(mappings, '?'),
		codec:      nlu.NewCodec(mappings),
		classifier: nlu.NewClassifier(mappings, predictor),
		registry:   registry,
		selector:   selector,
		audit:      audit,
	}
	if chatPredictor != nil {
		e.generator = nlu.NewGenerator(mappings, chatPredictor, maxSteps)
	}
	return e
}

// Resolve runs the full pipeline for one utterance.
func (e *Engine) Resolve(ctx context.Context, text, userAgent string) *Result {
	start := time.Now()
	requestID := uuid.New().String()

	record := &models.NLURequest{
		ID:        requestID,
		Params:    mustJSON(map[string]string{"text": text, "user_agent": userAgent}),
		CreatedAt: start,
	}
	defer func() {
		record.LatencyMS = int(time.Since(start).Milliseconds())
		if err := e.audit.InsertNLURequest(record); err != nil {
			logger.Error("Failed to write audit record",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}()

	logger.Info("Resolving utterance",
		zap.String("request_id", requestID),
		zap.String("text", text),
	)

	normalized := e.normalizer.Normalize(text)
	encoded := e.codec.Encode(normalized, true)

	classification, err := e.classifier.Classify(ctx, encoded)
	if err != nil {
		if errors.Is(err, nlu.ErrModelUnavailable) {
			metrics.ModelErrors.Inc()
		}
		return e.fail(record, requestID, err)
	}
	record.ModelOutput = mustJSON(classification)

	properties, err := e.registry.Dispatch(ctx, classification.Intent.Name, intents.Request{
		Text:      normalized,
		Language:  classification.Language.Name,
		UserAgent: userAgent,
	})
	if err != nil {
		return e.fail(record, requestID, err)
	}
	record.Properties = mustJSON(properties)

	answer, usedFallback, err := e.selector.Select(
		classification.Intent.Name,
		classification.Language.Name,
		properties,
	)
	if err != nil {
		return e.fail(record, requestID, err)
	}
	if usedFallback {
		metrics.FallbackAnswersTotal.Inc()
	}

	reply, err := answers.Render(answer.Text, properties)
	if err != nil {
		return e.fail(record, requestID, err)
	}
	record.Answer = reply

	metrics.RequestTotal.WithLabelValues("success").Inc()
	metrics.IntentCertainty.Observe(classification.Intent.P)

	logger.Info("Utterance resolved",
		zap.String("request_id", requestID),
		zap.String("intent", classification.Intent.Name),
		zap.String("language", classification.Language.Name),
		zap.Float64("certainty", classification.Intent.P),
		zap.Bool("fallback", usedFallback),
	)

	return &Result{
		ID:        requestID,
		Intent:    classification.Intent.Name,
		Certainty: classification.Intent.P,
		Replies:   []string{reply},
	}
}

// Chat runs the continuation path instead of answer selection.
func (e *Engine) Chat(ctx context.Context, text string) (string, error) {
	if e.generator == nil {
		return "", fmt.Errorf("%w: no chat model configured", nlu.ErrModelUnavailable)
	}

	suffix, err := e.generator.Generate(ctx, e.normalizer.Normalize(text))
	if err != nil {
		return "", err
	}

	metrics.ChatLength.Observe(float64(len([]rune(suffix))))
	return suffix, nil
}

func (e *Engine) fail(record *models.NLURequest, requestID string, err error) *Result {
	if errors.Is(err, answers.ErrNoFallbackAnswer) {
		logger.Error("Answer bank is missing fallback answers, seed data incomplete",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	} else {
		logger.Error("NLU request failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}

	metrics.RequestTotal.WithLabelValues("error").Inc()
	record.Answer = errorReply + " " + err.Error()

	return &Result{
		ID:        requestID,
		Intent:    "error",
		Certainty: 1.0,
		Replies:   []string{errorReply, err.Error()},
	}
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
