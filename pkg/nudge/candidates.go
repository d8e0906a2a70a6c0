package nudge

// Journey names the engine can select.
const (
	JourneyToday      = "today"
	JourneyQuickLog   = "quick_log"
	JourneyGroceries  = "groceries"
	JourneySmartSwaps = "smart_swaps"
	JourneyRecovery   = "recovery"
)

// Scoring constants. Base scores and bonuses are additive; the scorer takes
// the generated score as the "base" component of the breakdown.
const (
	todayBase     = 68.0
	quickLogBase  = 72.0
	groceriesBase = 64.0
	swapsBase     = 66.0
	recoveryBase  = 62.0

	overdueLogBonus   = 18.0
	skippedMealBonus  = 6.0
	groceryNeedBonus  = 18.0
	costAwareBonus    = 4.0
	recoverySkipBonus = 4.0

	overdueLogHours = 4.0
	planFreshHours  = 12.0
)

// SecondaryAction is an optional extra call-to-action on a candidate.
type SecondaryAction struct {
	LabelKey string `json:"label_key"`
	Path     string `json:"path"`
}

// Candidate is one scored journey under consideration. Candidates are
// generated fresh per call and never cached on their own.
type Candidate struct {
	ChannelFit map[string]float64 `json:"channel_fit,omitempty"`
	Secondary  *SecondaryAction   `json:"secondary,omitempty"`
	Journey    string             `json:"journey"`
	MessageKey string             `json:"message_key"`
	CTAKey     string             `json:"cta_key"`
	Path       string             `json:"path"`
	Reasons    []string           `json:"reasons"`
	Score      float64            `json:"score"`
	Effort     int                `json:"effort"`
	Cost       int                `json:"cost"`
}

// GenerateCandidates produces the candidate set for a request. The list is
// never empty: "today" is always present, so the selector always has a
// winner and no failure path exists for an empty set.
func GenerateCandidates(req *Request, ctx *Context) []Candidate {
	today := Candidate{
		Journey:    JourneyToday,
		MessageKey: "nba.today.message",
		CTAKey:     "nba.today.cta",
		Path:       "/plan/today",
		Score:      todayBase,
		Effort:     1,
		Cost:       0,
		ChannelFit: map[string]float64{},
		Reasons:    []string{"daily plan is the default touchpoint"},
	}
	if ctx.PlanFreshnessHours != nil && *ctx.PlanFreshnessHours < planFreshHours {
		today.Reasons = append(today.Reasons, "plan was refreshed recently")
	}

	quickLog := Candidate{
		Journey:    JourneyQuickLog,
		MessageKey: "nba.quick_log.message",
		CTAKey:     "nba.quick_log.cta",
		Path:       "/log/quick",
		Score:      quickLogBase,
		Effort:     1,
		Cost:       0,
		ChannelFit: map[string]float64{"sms": 4, "whatsapp": 5},
		Reasons:    []string{"logging keeps the streak alive"},
	}
	if ctx.LastLogDeltaHours == nil || *ctx.LastLogDeltaHours > overdueLogHours {
		quickLog.Score += overdueLogBonus
		quickLog.Reasons = append(quickLog.Reasons, "meal logging is overdue")
	}
	if ctx.SkippedMeals > 0 {
		quickLog.Score += skippedMealBonus
		quickLog.Reasons = append(quickLog.Reasons, "meals were skipped recently")
	}

	groceries := Candidate{
		Journey:    JourneyGroceries,
		MessageKey: "nba.groceries.message",
		CTAKey:     "nba.groceries.cta",
		Path:       "/groceries",
		Score:      groceriesBase,
		Effort:     2,
		Cost:       1,
		ChannelFit: map[string]float64{"whatsapp": 3},
		Reasons:    []string{"groceries unblock the week's meals"},
		Secondary:  &SecondaryAction{LabelKey: "nba.groceries.pantry", Path: "/pantry"},
	}
	if ctx.NeedsGroceries {
		groceries.Score += groceryNeedBonus
		groceries.Reasons = append(groceries.Reasons, "grocery list is pending")
	}
	if !ctx.GroceryCompleted {
		groceries.Reasons = append(groceries.Reasons, "groceries not yet completed")
	}

	candidates := []Candidate{today, quickLog, groceries}

	if ctx.SwapRequested || ctx.SkippedMeals > 0 {
		swaps := Candidate{
			Journey:    JourneySmartSwaps,
			MessageKey: "nba.smart_swaps.message",
			CTAKey:     "nba.smart_swaps.cta",
			Path:       "/plan/swaps",
			Score:      swapsBase,
			Effort:     2,
			Cost:       2,
			ChannelFit: map[string]float64{"app": 2},
			Reasons:    []string{"skipped meals suggest the plan needs adjusting"},
			Secondary:  &SecondaryAction{LabelKey: "nba.smart_swaps.back", Path: "/plan/today"},
		}
		if ctx.CostSensitive {
			swaps.Score += costAwareBonus
			swaps.Reasons = append(swaps.Reasons, "budget-friendly alternatives available")
		}
		candidates = append(candidates, swaps)
	}

	if ctx.StreakDrop {
		recovery := Candidate{
			Journey:    JourneyRecovery,
			MessageKey: "nba.recovery.message",
			CTAKey:     "nba.recovery.cta",
			Path:       "/plan/recovery",
			Score:      recoveryBase,
			Effort:     1,
			Cost:       0,
			ChannelFit: map[string]float64{"sms": 2, "whatsapp": 2},
			Reasons:    []string{"streak dropped and needs rescuing"},
		}
		if ctx.SkippedMeals > 0 {
			recovery.Score += recoverySkipBonus
		}
		candidates = append(candidates, recovery)
	}

	// A journey override is a best-effort hint: it narrows the set only when
	// it names a journey that was actually generated.
	if req.JourneyOverride != "" {
		for _, c := range candidates {
			if c.Journey == req.JourneyOverride {
				return []Candidate{c}
			}
		}
	}

	return candidates
}
