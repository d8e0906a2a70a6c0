package nudge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// TestDecisionGolden pins the full decision payload for a fixed clock and a
// caller-supplied correlation id. Any change to scoring, localization, link
// building, or the payload shape shows up as a golden diff.
func TestDecisionGolden(t *testing.T) {
	e, _, _, _ := newTestEngine()

	payload := basePayload()
	payload["locale"] = "es"
	payload["correlation_id"] = "corr-123"

	d := e.SelectAction(context.Background(), payload)

	data, err := json.MarshalIndent(d, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t)
	g.Assert(t, "decision", data)
}
