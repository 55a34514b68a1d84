package intents

import "context"

func (r *Registry) weatherGeneral(ctx context.Context, req Request) (Properties, error) {
	summary, err := r.forecast.Forecast(ctx, req.Language, req.UserAgent)
	if err != nil {
		return nil, err
	}

	return Properties{
		"temp_min": formatNumber(req.Language, summary.TempMin),
		"temp_max": formatNumber(req.Language, summary.TempMax),
		"weather":  summary.Condition,
	}, nil
}
