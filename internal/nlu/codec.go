package nlu

import "fmt"

// DecodeError reports a token id without a vocabulary entry.
type DecodeError struct {
	ID int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("no vocabulary entry for token id %d", e.ID)
}

// Codec converts between text and the fixed-length token sequences the
// classifier accepts.
type Codec struct {
	mappings *Mappings
}

func NewCodec(mappings *Mappings) *Codec {
	return &Codec{mappings: mappings}
}

func (c *Codec) ContextSize() int {
	return c.mappings.ContextSize
}

// Encode produces a zero-padded sequence of length ContextSize: begin token,
// per-character ids, and optionally an end token if room remains. Text longer
// than the context window is truncated, keeping the earliest characters.
func (c *Codec) Encode(text string, includeEnd bool) []int64 {
	encoded := make([]int64, c.mappings.ContextSize)
	encoded[0] = c.mappings.BeginID()

	pos := 1
	for _, r := range text {
		if pos >= c.mappings.ContextSize {
			break
		}
		if id, ok := c.mappings.CharID(r); ok {
			encoded[pos] = id
		} else {
			encoded[pos] = c.mappings.FallbackID()
		}
		pos++
	}

	if includeEnd && pos < c.mappings.ContextSize {
		encoded[pos] = c.mappings.EndID()
	}

	return encoded
}

// Decode is the inverse vocabulary lookup for a single token id.
func (c *Codec) Decode(id int64) (string, error) {
	s, ok := c.mappings.VocabEntry(id)
	if !ok {
		return "", &DecodeError{ID: id}
	}
	return s, nil
}
