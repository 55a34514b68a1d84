package nlu

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/pkg/logger"
)

// Label is a classifier output mapped back to its name, with the probability
// mass of the arg-max index as confidence.
type Label struct {
	Name string  `json:"name"`
	P    float64 `json:"p"`
}

type Classification struct {
	Intent   Label `json:"intent"`
	Language Label `json:"language"`
}

// Classifier turns raw predictor output into labeled, scored results.
type Classifier struct {
	mappings  *Mappings
	predictor Predictor
}

func NewClassifier(mappings *Mappings, predictor Predictor) *Classifier {
	return &Classifier{mappings: mappings, predictor: predictor}
}

func (c *Classifier) Classify(ctx context.Context, encoded []int64) (*Classification, error) {
	if c.predictor == nil {
		return nil, ErrModelUnavailable
	}

	pred, err := c.predictor.Predict(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(pred.Intent) == 0 || len(pred.Language) == 0 {
		return nil, fmt.Errorf("%w: empty output distribution", ErrModelUnavailable)
	}

	intentID, intentP := argmax(pred.Intent)
	intentName, ok := c.mappings.IntentName(intentID)
	if !ok {
		return nil, fmt.Errorf("no intent mapping for output index %d", intentID)
	}

	languageID, languageP := argmax(pred.Language)
	languageName, ok := c.mappings.LanguageName(languageID)
	if !ok {
		return nil, fmt.Errorf("no language mapping for output index %d", languageID)
	}

	logger.Debug("Classified utterance",
		zap.String("intent", intentName),
		zap.Float64("intent_p", intentP),
		zap.String("language", languageName),
		zap.Float64("language_p", languageP),
	)

	return &Classification{
		Intent:   Label{Name: intentName, P: intentP},
		Language: Label{Name: languageName, P: languageP},
	}, nil
}
