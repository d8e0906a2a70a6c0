package nudge

import (
	"strings"
	"time"
)

// Shopping-day plan-day values that trigger a grocery nudge when groceries
// are not already done. Kept as the two literal values the product uses.
const (
	shoppingDayFirst  = 1
	shoppingDaySecond = 6
)

// Context holds ephemeral behavioral signals derived from a request at a
// point in time. Signals default to false/nil absent supporting evidence;
// the composer never infers beyond the rules below. A Context is built
// fresh, optionally cached under a short TTL, and never mutated.
type Context struct {
	LastLogDeltaHours  *float64 `json:"last_log_delta_hours"`
	PlanFreshnessHours *float64 `json:"plan_freshness_hours"`
	LastActionID       string   `json:"last_action_id"`
	SkippedMeals       int      `json:"skipped_meals"`
	TokenBalance       int      `json:"token_balance"`
	NeedsGroceries     bool     `json:"needs_groceries"`
	GroceryCompleted   bool     `json:"grocery_completed"`
	SwapRequested      bool     `json:"swap_requested"`
	CostSensitive      bool     `json:"cost_sensitive"`
	StreakDrop         bool     `json:"streak_drop"`
}

// ComposeContext derives a Context from a request and the current time.
// Pure: same request and clock produce the same snapshot.
func ComposeContext(req *Request, now time.Time) *Context {
	ctx := &Context{
		TokenBalance:  req.TokenBalance,
		CostSensitive: req.CostFlags.LimitReached || req.CostFlags.BudgetHold,
	}

	if req.PlanStatus.GroceriesDone {
		ctx.GroceryCompleted = true
	}
	if prev := req.PlanStatus.PreviousStreak; prev != nil && *prev > req.Streak {
		ctx.StreakDrop = true
	}
	if gen := req.PlanStatus.GeneratedAt; gen != nil {
		hours := now.Sub(*gen).Hours()
		ctx.PlanFreshnessHours = &hours
	}

	// Single pass over recent actions, most recent first.
	groceriesPending := false
	for i, action := range req.RecentActions {
		if i == 0 {
			ctx.LastActionID = actionIdentity(action)
		}

		switch {
		case isSkippedMeal(action):
			ctx.SkippedMeals++
			ctx.SwapRequested = true
		case isMealLog(action) && ctx.LastLogDeltaHours == nil:
			delta := now.Sub(action.Timestamp).Hours()
			ctx.LastLogDeltaHours = &delta
		case isGroceryAction(action):
			switch action.Status {
			case "pending", "open":
				groceriesPending = true
			case "done", "completed":
				ctx.GroceryCompleted = true
			}
		case isStreakLapse(action):
			ctx.StreakDrop = true
		}
	}

	onShoppingDay := req.PlanDay != nil &&
		(*req.PlanDay == shoppingDayFirst || *req.PlanDay == shoppingDaySecond)
	if groceriesPending || onShoppingDay {
		ctx.NeedsGroceries = true
	}
	// A completed grocery run suppresses the nudge outright.
	if ctx.GroceryCompleted {
		ctx.NeedsGroceries = false
	}

	return ctx
}

// latestActionID derives the staleness marker straight from the request's
// most recent action. Deriving it from the request rather than a cached
// context snapshot means a brand-new action is never masked by the context
// TTL.
func latestActionID(req *Request) string {
	if len(req.RecentActions) == 0 {
		return ""
	}
	return actionIdentity(req.RecentActions[0])
}

// actionIdentity is the staleness marker for the most recent action: its id
// when present, otherwise its timestamp.
func actionIdentity(action Action) string {
	if action.ID != "" {
		return action.ID
	}
	if action.Timestamp.IsZero() {
		return ""
	}
	return action.Timestamp.UTC().Format(time.RFC3339)
}

func isSkippedMeal(action Action) bool {
	if action.Status == "skipped" || action.Status == "missed" {
		return true
	}
	return action.Type == "meal_skipped" || action.Type == "meal_skip"
}

func isMealLog(action Action) bool {
	return action.Type == "meal_log" || action.Type == "meal_logged"
}

func isGroceryAction(action Action) bool {
	return strings.HasPrefix(action.Type, "grocery")
}

func isStreakLapse(action Action) bool {
	return action.Type == "streak_lapse" || action.Type == "streak_reset"
}
