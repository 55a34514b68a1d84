package intents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnphilipp/computer/internal/weather"
)

type fakeEntityStore struct {
	values map[string][]string
	err    error
}

func (f *fakeEntityStore) TriggerEntityValues(entityName, language string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[entityName+"/"+language], nil
}

type fakeForecast struct {
	summary *weather.Summary
	err     error
}

func (f *fakeForecast) Forecast(ctx context.Context, language, userAgent string) (*weather.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newTestRegistry(t *testing.T, store *fakeEntityStore, forecast *fakeForecast, now time.Time) *Registry {
	t.Helper()
	if store == nil {
		store = &fakeEntityStore{}
	}
	if forecast == nil {
		forecast = &fakeForecast{}
	}
	r := NewRegistry(store, forecast)
	r.SetClock(func() time.Time { return now })
	return r
}

func TestDispatchUnknownIntent(t *testing.T) {
	r := newTestRegistry(t, nil, nil, time.Now())

	_, err := r.Dispatch(context.Background(), "order_pizza", Request{Language: "en"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownIntent)
	assert.Contains(t, err.Error(), "order_pizza")
}

func TestDispatchBaseIntents(t *testing.T) {
	r := newTestRegistry(t, nil, nil, time.Now())

	for _, intent := range []string{
		"affirm", "deny", "farewell", "farewell_night",
		"greet", "greet_feelings", "thankyou",
	} {
		props, err := r.Dispatch(context.Background(), intent, Request{Language: "en"})
		require.NoError(t, err, intent)
		assert.Empty(t, props, intent)
		assert.NotNil(t, props, intent)
	}
}

func TestDateGeneral(t *testing.T) {
	// Tuesday, March 3rd 2026.
	now := time.Date(2026, time.March, 3, 9, 30, 0, 0, time.UTC)
	r := newTestRegistry(t, nil, nil, now)

	props, err := r.Dispatch(context.Background(), "date_general", Request{Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"weekday": "Dienstag", "day": 3, "month": "März"}, props)

	props, err = r.Dispatch(context.Background(), "date_general", Request{Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"weekday": "Tuesday", "day": 3, "month": "March"}, props)
}

func TestDateGeneralUnknownLanguageFallsBackToEnglish(t *testing.T) {
	now := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRegistry(t, nil, nil, now)

	props, err := r.Dispatch(context.Background(), "date_general", Request{Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", props["weekday"])
	assert.Equal(t, "July", props["month"])
}

func holidayStore() *fakeEntityStore {
	return &fakeEntityStore{values: map[string][]string{
		"holiday/de": {"Weihnachten", "Heiligabend", "Silvester", "Ostern"},
		"holiday/en": {"christmas", "New Year's Eve"},
	}}
}

func TestDateHolidayChristmasBanding(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		days int
	}{
		{"on christmas eve", time.Date(2026, time.December, 24, 8, 0, 0, 0, time.UTC), 0},
		{"first holiday", time.Date(2026, time.December, 25, 8, 0, 0, 0, time.UTC), 0},
		{"second holiday", time.Date(2026, time.December, 26, 8, 0, 0, 0, time.UTC), 0},
		{"day after holidays", time.Date(2026, time.December, 27, 8, 0, 0, 0, time.UTC), -1},
		{"well past", time.Date(2026, time.December, 30, 8, 0, 0, 0, time.UTC), -2},
		{"ten days before", time.Date(2026, time.December, 14, 8, 0, 0, 0, time.UTC), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, holidayStore(), nil, tt.now)
			props, err := r.Dispatch(context.Background(), "date_holiday",
				Request{Text: "i love weihnachten", Language: "de"})
			require.NoError(t, err)
			assert.Equal(t, Properties{"days": tt.days, "holiday": "Weihnachten"}, props)
		})
	}
}

func TestDateHolidayCountsCalendarDaysAcrossDSTChange(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// Clocks spring forward on October 4th, between now and Christmas Eve.
	now := time.Date(2026, time.September, 1, 8, 0, 0, 0, sydney)
	r := newTestRegistry(t, holidayStore(), nil, now)

	props, err := r.Dispatch(context.Background(), "date_holiday",
		Request{Text: "wann ist weihnachten", Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"days": 114, "holiday": "Weihnachten"}, props)
}

func TestDateHolidayNewYearsEve(t *testing.T) {
	r := newTestRegistry(t, holidayStore(), nil,
		time.Date(2026, time.December, 31, 10, 0, 0, 0, time.UTC))
	props, err := r.Dispatch(context.Background(), "date_holiday",
		Request{Text: "ist heute silvester", Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"days": 0, "holiday": "Silvester"}, props)

	r = newTestRegistry(t, holidayStore(), nil,
		time.Date(2026, time.December, 21, 10, 0, 0, 0, time.UTC))
	props, err = r.Dispatch(context.Background(), "date_holiday",
		Request{Text: "when is new year's eve", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"days": 10, "holiday": "New Year's Eve"}, props)
}

func TestDateHolidayLastMatchWins(t *testing.T) {
	// Both a Christmas-class and an unclassed holiday appear; the later
	// match in curation order decides which date branch runs.
	r := newTestRegistry(t, holidayStore(), nil,
		time.Date(2026, time.April, 5, 10, 0, 0, 0, time.UTC))
	props, err := r.Dispatch(context.Background(), "date_holiday",
		Request{Text: "weihnachten oder ostern", Language: "de"})
	require.NoError(t, err)

	// "Ostern" matches last and is neither class, so no days are computed.
	assert.Equal(t, Properties{"holiday": "Ostern"}, props)
}

func TestDateHolidayNoMatch(t *testing.T) {
	r := newTestRegistry(t, holidayStore(), nil, time.Now())
	props, err := r.Dispatch(context.Background(), "date_holiday",
		Request{Text: "hallo welt", Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"holiday": nil}, props)
}

func TestDateHolidayStoreError(t *testing.T) {
	store := &fakeEntityStore{err: errors.New("db closed")}
	r := newTestRegistry(t, store, nil, time.Now())

	_, err := r.Dispatch(context.Background(), "date_holiday",
		Request{Text: "weihnachten", Language: "de"})
	assert.Error(t, err)
}

func TestTimeGeneral(t *testing.T) {
	now := time.Date(2026, time.March, 3, 14, 5, 0, 0, time.UTC)
	r := newTestRegistry(t, nil, nil, now)

	props, err := r.Dispatch(context.Background(), "time_general", Request{Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"time": "14:05"}, props)

	props, err = r.Dispatch(context.Background(), "time_general", Request{Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"time": "2:05 PM"}, props)
}

func TestWeatherGeneral(t *testing.T) {
	forecast := &fakeForecast{summary: &weather.Summary{TempMin: -1.25, TempMax: 4.5, Condition: 800}}
	r := newTestRegistry(t, nil, forecast, time.Now())

	props, err := r.Dispatch(context.Background(), "weather_general", Request{Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"temp_min": "-1,2", "temp_max": "4,5", "weather": 800}, props)

	props, err = r.Dispatch(context.Background(), "weather_general", Request{Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, Properties{"temp_min": "-1.2", "temp_max": "4.5", "weather": 800}, props)
}

func TestWeatherGeneralForecastError(t *testing.T) {
	forecast := &fakeForecast{err: errors.New("upstream 500")}
	r := newTestRegistry(t, nil, forecast, time.Now())

	_, err := r.Dispatch(context.Background(), "weather_general", Request{Language: "en"})
	assert.Error(t, err)
}
