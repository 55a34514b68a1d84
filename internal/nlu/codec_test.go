package nlu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	m := newTestMappings(t, 6)
	c := NewCodec(m)

	aID, _ := m.CharID('a')
	bID, _ := m.CharID('b')

	encoded := c.Encode("ab", true)
	require.Len(t, encoded, 6)
	assert.Equal(t, []int64{m.BeginID(), aID, bID, m.EndID(), 0, 0}, encoded)

	encoded = c.Encode("ab", false)
	assert.Equal(t, []int64{m.BeginID(), aID, bID, 0, 0, 0}, encoded)
}

func TestEncodeTruncatesKeepingEarliest(t *testing.T) {
	m := newTestMappings(t, 4)
	c := NewCodec(m)

	aID, _ := m.CharID('a')
	bID, _ := m.CharID('b')
	cID, _ := m.CharID('c')

	encoded := c.Encode("abcdef", true)
	require.Len(t, encoded, 4)
	// Window holds begin plus the first three characters; no room remains
	// for the end token.
	assert.Equal(t, []int64{m.BeginID(), aID, bID, cID}, encoded)
}

func TestEncodeUnknownCharacterUsesFallbackID(t *testing.T) {
	m := newTestMappings(t, 8)
	c := NewCodec(m)

	encoded := c.Encode("a\U0001F30Db", false)
	aID, _ := m.CharID('a')
	bID, _ := m.CharID('b')
	assert.Equal(t, []int64{m.BeginID(), aID, m.FallbackID(), bID, 0, 0, 0, 0}, encoded)
}

func TestDecodeRoundTrip(t *testing.T) {
	m := newTestMappings(t, 8)
	c := NewCodec(m)

	for _, s := range []string{"a", "z", " ", "?", EndOfSequence} {
		id := m.Vocab[s]
		got, err := c.Decode(id)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDecodeUnknownID(t *testing.T) {
	c := NewCodec(newTestMappings(t, 8))

	_, err := c.Decode(9999)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, int64(9999), decodeErr.ID)
}

func TestContextSize(t *testing.T) {
	assert.Equal(t, 24, NewCodec(newTestMappings(t, 24)).ContextSize())
}
