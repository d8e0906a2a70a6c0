package nudge

// costPenalty is subtracted from any candidate with cost above
// costPenaltyThreshold when the user is cost sensitive.
const (
	costPenalty          = -6.0
	costPenaltyThreshold = 1
)

// Breakdown component names. The final score is always the exact sum of the
// breakdown's values.
const (
	componentBase       = "base"
	componentChannelFit = "channel_fit"
	componentCostPen    = "cost_penalty"
)

// Scored pairs a candidate with its score breakdown and summed final score.
type Scored struct {
	Breakdown map[string]float64 `json:"breakdown"`
	Candidate Candidate          `json:"candidate"`
	Total     float64            `json:"total"`
}

// ScoreCandidates applies channel and cost adjustments to every candidate.
func ScoreCandidates(candidates []Candidate, ctx *Context, channel string) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		breakdown := map[string]float64{componentBase: c.Score}
		if fit := c.ChannelFit[channel]; fit != 0 {
			breakdown[componentChannelFit] = fit
		}
		if ctx.CostSensitive && c.Cost > costPenaltyThreshold {
			breakdown[componentCostPen] = costPenalty
		}

		total := 0.0
		for _, v := range breakdown {
			total += v
		}
		scored = append(scored, Scored{Candidate: c, Breakdown: breakdown, Total: total})
	}
	return scored
}

// Better is the total order used to pick the winning candidate: higher final
// score, then lower effort, then lower cost, then higher channel fit for the
// active channel. The order is fixed so outcomes are reproducible and
// independently verifiable.
func Better(a, b Scored, channel string) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Candidate.Effort != b.Candidate.Effort {
		return a.Candidate.Effort < b.Candidate.Effort
	}
	if a.Candidate.Cost != b.Candidate.Cost {
		return a.Candidate.Cost < b.Candidate.Cost
	}
	return a.Candidate.ChannelFit[channel] > b.Candidate.ChannelFit[channel]
}

// SelectBest scores all candidates and returns the single winner under
// Better. Ties across every criterion resolve to the earliest-generated
// candidate, keeping selection deterministic.
func SelectBest(candidates []Candidate, ctx *Context, channel string) Scored {
	scored := ScoreCandidates(candidates, ctx, channel)
	best := scored[0]
	for _, s := range scored[1:] {
		if Better(s, best, channel) {
			best = s
		}
	}
	return best
}
