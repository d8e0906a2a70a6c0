package nudge

import (
	"context"
	"log/slog"
	"time"
)

// slogTelemetry is the default recorder: one structured log line per
// decision. Deployments replace it with the real telemetry pipeline.
type slogTelemetry struct {
	logger *slog.Logger
}

func (t slogTelemetry) Record(_ context.Context, payload map[string]any, duration time.Duration, rowCount *int, origin string) {
	attrs := make([]any, 0, 2*len(payload)+6)
	attrs = append(attrs, "origin", origin, "duration_ms", duration.Seconds()*1000)
	if rowCount != nil {
		attrs = append(attrs, "rows", *rowCount)
	}
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	t.logger.Info("decision recorded", attrs...)
}
