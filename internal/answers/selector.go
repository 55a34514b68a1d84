package answers

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/storage/models"
	"github.com/jnphilipp/computer/pkg/logger"
)

// ErrNoFallbackAnswer is returned when even the fallback tier holds no
// answer for the requested language. This indicates missing seed data.
var ErrNoFallbackAnswer = errors.New("no fallback answer available")

// Store provides the read-only answer bank queries.
type Store interface {
	AttributesByKey(key string) ([]models.Attribute, error)
	Answers(intent, language string, attributeIDs []int64) ([]models.Answer, error)
	FallbackAnswers(language string) ([]models.Answer, error)
}

// Selector resolves extracted properties into attribute constraints and
// retrieves a matching answer, falling back to the reserved fallback intent
// when no exact match exists.
type Selector struct {
	store Store
}

func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// Select returns an answer for the intent and language satisfying exactly
// the attribute constraints resolved from properties, chosen uniformly at
// random when several match. The second result reports whether the fallback
// tier was used.
func (s *Selector) Select(intent, language string, properties map[string]interface{}) (*models.Answer, bool, error) {
	required, err := s.resolveAttributes(properties)
	if err != nil {
		return nil, false, err
	}

	matches, err := s.store.Answers(intent, language, required)
	if err != nil {
		return nil, false, err
	}

	if len(matches) >= 1 {
		answer := matches[rand.Intn(len(matches))]
		return &answer, false, nil
	}

	fallback, err := s.store.FallbackAnswers(language)
	if err != nil {
		return nil, false, err
	}
	if len(fallback) == 0 {
		return nil, false, fmt.Errorf("%w: language %q", ErrNoFallbackAnswer, language)
	}

	logger.Debug("No exact answer match, using fallback tier",
		zap.String("intent", intent),
		zap.String("language", language),
		zap.Int("required_attributes", len(required)),
	)

	answer := fallback[rand.Intn(len(fallback))]
	return &answer, true, nil
}

// resolveAttributes maps each property to at most one attribute id: a single
// row for the key is taken as-is; among several rows the one matching the
// property's value wins, else the null-valued generic row; keys without
// attribute rows contribute no constraint.
func (s *Selector) resolveAttributes(properties map[string]interface{}) ([]int64, error) {
	var required []int64
	for key, value := range properties {
		attrs, err := s.store.AttributesByKey(key)
		if err != nil {
			return nil, err
		}

		switch {
		case len(attrs) == 0:
			continue
		case len(attrs) == 1:
			required = append(required, attrs[0].ID)
		default:
			want := fmt.Sprint(value)
			id, ok := pickAttribute(attrs, want)
			if !ok {
				logger.Warn("No attribute row matched property",
					zap.String("key", key),
					zap.String("value", want),
				)
				continue
			}
			required = append(required, id)
		}
	}
	return required, nil
}

func pickAttribute(attrs []models.Attribute, want string) (int64, bool) {
	var generic *int64
	for i := range attrs {
		if attrs[i].Value != nil && *attrs[i].Value == want {
			return attrs[i].ID, true
		}
		if attrs[i].Value == nil && generic == nil {
			generic = &attrs[i].ID
		}
	}
	if generic != nil {
		return *generic, true
	}
	return 0, false
}
