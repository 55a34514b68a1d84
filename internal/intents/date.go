package intents

import (
	"context"
	"strings"
	"time"
)

var christmasValues = map[string]struct{}{
	"Weihnachten": {},
	"Heiligabend": {},
	"christmas":   {},
}

var newYearsEveValues = map[string]struct{}{
	"Silvester":      {},
	"New Year's Eve": {},
}

func (r *Registry) dateGeneral(ctx context.Context, req Request) (Properties, error) {
	now := r.now()
	return Properties{
		"weekday": weekdayName(req.Language, now.Weekday()),
		"day":     now.Day(),
		"month":   monthName(req.Language, now.Month()),
	}, nil
}

// dateHoliday scans curated holiday annotations for the request language and
// matches them case-insensitively against the utterance; the last match wins
// and its class selects the reference date.
func (r *Registry) dateHoliday(ctx context.Context, req Request) (Properties, error) {
	values, err := r.store.TriggerEntityValues("holiday", req.Language)
	if err != nil {
		return nil, err
	}

	lowerText := strings.ToLower(req.Text)
	var holiday interface{}
	isChristmas := false
	isNewYearsEve := false
	for _, value := range values {
		if strings.Contains(lowerText, strings.ToLower(value)) {
			holiday = value
			_, isChristmas = christmasValues[value]
			_, isNewYearsEve = newYearsEveValues[value]
		}
	}

	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if isChristmas {
		christmas := time.Date(now.Year(), time.December, 24, 0, 0, 0, 0, now.Location())
		days := daysBetween(today, christmas)
		switch {
		case days == 0 || days == -1 || days == -2:
			return Properties{"days": 0, "holiday": holiday}, nil
		case days == -3:
			return Properties{"days": -1, "holiday": holiday}, nil
		case days < 0:
			return Properties{"days": -2, "holiday": holiday}, nil
		default:
			return Properties{"days": days, "holiday": holiday}, nil
		}
	}

	if isNewYearsEve {
		newYearsEve := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
		days := daysBetween(today, newYearsEve)
		if days == 0 {
			return Properties{"days": 0, "holiday": holiday}, nil
		}
		return Properties{"days": days, "holiday": holiday}, nil
	}

	return Properties{"holiday": holiday}, nil
}

// daysBetween counts calendar days. Both endpoints are normalized to UTC
// midnight so a DST transition between them cannot shorten the count.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
