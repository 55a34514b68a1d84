package nlu

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/pkg/logger"
)

// Reserved vocabulary entries of the mapping artifact.
const (
	BeginOfSequence   = "<begin of sequence>"
	EndOfSequence     = "<end of sequence>"
	FallbackCharacter = "<fallback character>"
)

// Mappings is the vocabulary/mapping artifact produced by the training
// pipeline. It is loaded once at process start and read-only afterwards.
type Mappings struct {
	Vocab       map[string]int64           `json:"vocab"`
	Intents     map[string]int64           `json:"intents"`
	Languages   map[string]int64           `json:"languages"`
	ContextSize int                        `json:"context_size"`
	Outputs     map[string]json.RawMessage `json:"outputs,omitempty"`

	rvocab     map[int64]string
	rintents   map[int64]string
	rlanguages map[int64]string
}

func LoadMappings(path string) (*Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	var m Mappings
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mappings file: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid mappings file %q: %w", path, err)
	}

	m.rvocab = invert(m.Vocab)
	m.rintents = invert(m.Intents)
	m.rlanguages = invert(m.Languages)

	logger.Info("Mappings loaded",
		zap.String("path", path),
		zap.Int("vocab_size", len(m.Vocab)),
		zap.Int("intents", len(m.Intents)),
		zap.Int("languages", len(m.Languages)),
		zap.Int("context_size", m.ContextSize),
	)

	return &m, nil
}

func (m *Mappings) validate() error {
	if len(m.Vocab) == 0 {
		return fmt.Errorf("empty vocab")
	}
	if len(m.Intents) == 0 {
		return fmt.Errorf("empty intents")
	}
	if len(m.Languages) == 0 {
		return fmt.Errorf("empty languages")
	}
	if m.ContextSize <= 0 {
		return fmt.Errorf("context_size must be positive, got %d", m.ContextSize)
	}
	for _, token := range []string{BeginOfSequence, EndOfSequence, FallbackCharacter} {
		if _, ok := m.Vocab[token]; !ok {
			return fmt.Errorf("vocab is missing reserved token %q", token)
		}
	}
	return nil
}

func (m *Mappings) BeginID() int64    { return m.Vocab[BeginOfSequence] }
func (m *Mappings) EndID() int64      { return m.Vocab[EndOfSequence] }
func (m *Mappings) FallbackID() int64 { return m.Vocab[FallbackCharacter] }

// CharID returns the vocabulary id of a single character.
func (m *Mappings) CharID(r rune) (int64, bool) {
	id, ok := m.Vocab[string(r)]
	return id, ok
}

// VocabEntry is the inverse vocabulary lookup.
func (m *Mappings) VocabEntry(id int64) (string, bool) {
	s, ok := m.rvocab[id]
	return s, ok
}

func (m *Mappings) IntentName(id int64) (string, bool) {
	s, ok := m.rintents[id]
	return s, ok
}

func (m *Mappings) LanguageName(id int64) (string, bool) {
	s, ok := m.rlanguages[id]
	return s, ok
}

func invert(in map[string]int64) map[int64]string {
	out := make(map[int64]string, len(in))
	for k, v := range in {
		out[v] = k
	}
	return out
}
