package answers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	rendered, err := Render("It is %(time)s.", map[string]interface{}{"time": "14:05"})
	require.NoError(t, err)
	assert.Equal(t, "It is 14:05.", rendered)
}

func TestRenderMultiplePlaceholders(t *testing.T) {
	rendered, err := Render("Today is %(weekday)s, %(month)s %(day)s.", map[string]interface{}{
		"weekday": "Tuesday",
		"month":   "March",
		"day":     3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Today is Tuesday, March 3.", rendered)
}

func TestRenderNoPlaceholders(t *testing.T) {
	rendered, err := Render("Hello!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", rendered)
}

func TestRenderMissingProperty(t *testing.T) {
	_, err := Render("It is %(time)s.", map[string]interface{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateMismatch)
	assert.Contains(t, err.Error(), "time")
}

func TestRenderReportsAllMissingKeys(t *testing.T) {
	_, err := Render("%(a)s and %(b)s", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestRenderUnusedPropertiesIgnored(t *testing.T) {
	rendered, err := Render("Hi %(name)s", map[string]interface{}{
		"name":  "computer",
		"extra": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi computer", rendered)
}
