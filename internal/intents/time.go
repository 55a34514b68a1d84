package intents

import "context"

func (r *Registry) timeGeneral(ctx context.Context, req Request) (Properties, error) {
	return Properties{
		"time": r.now().Format(timeLayout(req.Language)),
	}, nil
}
