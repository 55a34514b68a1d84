package nlu

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/pkg/logger"
)

// DefaultMaxSteps bounds the continuation loop. The model has no intrinsic
// stopping guarantee, so this cap is the sole termination mechanism when no
// end-of-sequence token is produced.
const DefaultMaxSteps = 98

// Generator produces a reply by greedy autoregressive continuation of the
// input text, one character per model invocation.
type Generator struct {
	codec     *Codec
	mappings  *Mappings
	predictor Predictor
	maxSteps  int
}

func NewGenerator(mappings *Mappings, predictor Predictor, maxSteps int) *Generator {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Generator{
		codec:     NewCodec(mappings),
		mappings:  mappings,
		predictor: predictor,
		maxSteps:  maxSteps,
	}
}

// Generate continues text until the model emits an end-of-sequence token or
// the step cap is reached, and returns the accumulated suffix.
func (g *Generator) Generate(ctx context.Context, text string) (string, error) {
	if g.predictor == nil {
		return "", ErrModelUnavailable
	}

	inputLen := len([]rune(text))
	suffix := make([]rune, 0, g.maxSteps)

	for len(suffix) < g.maxSteps {
		encoded := g.codec.Encode(text+string(suffix), false)

		pred, err := g.predictor.Predict(ctx, encoded)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}

		// Position 0 holds the begin token, so the token following the
		// input sits at inputLen+len(suffix)+1.
		pos := inputLen + len(suffix) + 1
		if pos >= len(pred.Next) {
			break
		}
		if len(pred.Next[pos]) == 0 {
			return "", fmt.Errorf("%w: empty next-token distribution", ErrModelUnavailable)
		}

		id, _ := argmax(pred.Next[pos])
		if id == g.mappings.EndID() {
			break
		}

		entry, err := g.codec.Decode(id)
		if err != nil {
			return "", err
		}
		suffix = append(suffix, []rune(entry)...)
	}

	if len(suffix) > g.maxSteps {
		suffix = suffix[:g.maxSteps]
	}

	logger.Debug("Generated continuation",
		zap.Int("input_len", inputLen),
		zap.Int("suffix_len", len(suffix)),
	)

	return string(suffix), nil
}
