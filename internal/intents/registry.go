package intents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/weather"
	"github.com/jnphilipp/computer/pkg/logger"
)

// ErrUnknownIntent is returned when the classifier produced a label that has
// no registered handler. This is a curation or deployment bug, not user error.
var ErrUnknownIntent = errors.New("unknown intent")

// Request carries the per-call inputs every handler receives.
type Request struct {
	Text      string
	Language  string
	UserAgent string
}

// Properties are the situational values extracted for an intent, later used
// as answer constraints and template substitutions.
type Properties map[string]interface{}

type Handler func(ctx context.Context, req Request) (Properties, error)

// EntityStore provides read-only access to curated trigger annotations.
type EntityStore interface {
	TriggerEntityValues(entityName, language string) ([]string, error)
}

// ForecastSource provides next-day weather aggregates.
type ForecastSource interface {
	Forecast(ctx context.Context, language, userAgent string) (*weather.Summary, error)
}

// Registry maps intent names to their property handlers. It is populated at
// startup; dispatching an unregistered name fails with ErrUnknownIntent.
type Registry struct {
	handlers map[string]Handler
	store    EntityStore
	forecast ForecastSource
	now      func() time.Time
}

func NewRegistry(store EntityStore, forecast ForecastSource) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		store:    store,
		forecast: forecast,
		now:      time.Now,
	}

	for _, name := range []string{
		"affirm", "deny", "farewell", "farewell_night",
		"greet", "greet_feelings", "thankyou",
	} {
		r.Register(name, base)
	}
	r.Register("date_general", r.dateGeneral)
	r.Register("date_holiday", r.dateHoliday)
	r.Register("time_general", r.timeGeneral)
	r.Register("weather_general", r.weatherGeneral)

	return r
}

func (r *Registry) Register(name string, handler Handler) {
	r.handlers[name] = handler
}

// SetClock replaces the time source. Used by tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Registry) Dispatch(ctx context.Context, intent string, req Request) (Properties, error) {
	handler, ok := r.handlers[intent]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
	}

	properties, err := handler(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Debug("Extracted properties",
		zap.String("intent", intent),
		zap.String("language", req.Language),
		zap.Int("count", len(properties)),
	)

	return properties, nil
}

func base(ctx context.Context, req Request) (Properties, error) {
	return Properties{}, nil
}
