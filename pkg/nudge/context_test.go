package nudge

import (
	"testing"
	"time"
)

var composeNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func TestComposeContextEmptyRequest(t *testing.T) {
	ctx := ComposeContext(&Request{}, composeNow)

	if ctx.SkippedMeals != 0 {
		t.Errorf("SkippedMeals = %d, want 0", ctx.SkippedMeals)
	}
	if ctx.LastLogDeltaHours != nil {
		t.Error("LastLogDeltaHours should be nil with no meal logs")
	}
	if ctx.NeedsGroceries || ctx.GroceryCompleted || ctx.SwapRequested || ctx.CostSensitive || ctx.StreakDrop {
		t.Errorf("derived booleans should default to false: %+v", ctx)
	}
	if ctx.PlanFreshnessHours != nil {
		t.Error("PlanFreshnessHours should be nil without a generation timestamp")
	}
	if ctx.LastActionID != "" {
		t.Errorf("LastActionID = %q, want empty", ctx.LastActionID)
	}
}

func TestComposeContextSkippedMeals(t *testing.T) {
	req := &Request{RecentActions: []Action{
		{ID: "a1", Type: "meal_log", Status: "skipped", Timestamp: composeNow.Add(-time.Hour)},
		{ID: "a2", Type: "meal_skipped", Timestamp: composeNow.Add(-2 * time.Hour)},
		{ID: "a3", Type: "meal_log", Status: "done", Timestamp: composeNow.Add(-3 * time.Hour)},
	}}

	ctx := ComposeContext(req, composeNow)

	if ctx.SkippedMeals != 2 {
		t.Errorf("SkippedMeals = %d, want 2", ctx.SkippedMeals)
	}
	if !ctx.SwapRequested {
		t.Error("skipped meals must set SwapRequested")
	}
	if ctx.LastLogDeltaHours == nil || *ctx.LastLogDeltaHours != 3 {
		t.Errorf("LastLogDeltaHours = %v, want 3 (the skipped log does not count)", ctx.LastLogDeltaHours)
	}
	if ctx.LastActionID != "a1" {
		t.Errorf("LastActionID = %q, want a1", ctx.LastActionID)
	}
}

func TestComposeContextLastLogDelta(t *testing.T) {
	req := &Request{RecentActions: []Action{
		{ID: "a1", Type: "meal_log", Status: "done", Timestamp: composeNow.Add(-90 * time.Minute)},
		{ID: "a2", Type: "meal_log", Status: "done", Timestamp: composeNow.Add(-26 * time.Hour)},
	}}

	ctx := ComposeContext(req, composeNow)

	if ctx.LastLogDeltaHours == nil || *ctx.LastLogDeltaHours != 1.5 {
		t.Errorf("LastLogDeltaHours = %v, want 1.5 from the most recent log", ctx.LastLogDeltaHours)
	}
}

func TestComposeContextGroceries(t *testing.T) {
	tests := []struct {
		name          string
		req           *Request
		wantNeeds     bool
		wantCompleted bool
	}{
		{
			name: "pending list action",
			req: &Request{RecentActions: []Action{
				{ID: "g1", Type: "grocery_list", Status: "pending"},
			}},
			wantNeeds: true,
		},
		{
			name:      "shopping day without completion",
			req:       &Request{PlanDay: intPtr(shoppingDayFirst)},
			wantNeeds: true,
		},
		{
			name:      "second shopping day",
			req:       &Request{PlanDay: intPtr(shoppingDaySecond)},
			wantNeeds: true,
		},
		{
			name: "ordinary plan day",
			req:  &Request{PlanDay: intPtr(3)},
		},
		{
			name: "shopping day but plan says done",
			req: &Request{
				PlanDay:    intPtr(shoppingDayFirst),
				PlanStatus: PlanStatus{GroceriesDone: true},
			},
			wantCompleted: true,
		},
		{
			name: "completion action suppresses pending list",
			req: &Request{RecentActions: []Action{
				{ID: "g2", Type: "grocery_run", Status: "completed"},
				{ID: "g1", Type: "grocery_list", Status: "pending"},
			}},
			wantCompleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ComposeContext(tt.req, composeNow)
			if ctx.NeedsGroceries != tt.wantNeeds {
				t.Errorf("NeedsGroceries = %v, want %v", ctx.NeedsGroceries, tt.wantNeeds)
			}
			if ctx.GroceryCompleted != tt.wantCompleted {
				t.Errorf("GroceryCompleted = %v, want %v", ctx.GroceryCompleted, tt.wantCompleted)
			}
		})
	}
}

func TestComposeContextStreakDrop(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want bool
	}{
		{
			name: "explicit lapse action",
			req:  &Request{RecentActions: []Action{{ID: "s1", Type: "streak_lapse"}}},
			want: true,
		},
		{
			name: "explicit reset action",
			req:  &Request{RecentActions: []Action{{ID: "s1", Type: "streak_reset"}}},
			want: true,
		},
		{
			name: "previous streak above current",
			req:  &Request{Streak: 3, PlanStatus: PlanStatus{PreviousStreak: intPtr(9)}},
			want: true,
		},
		{
			name: "previous streak equal",
			req:  &Request{Streak: 9, PlanStatus: PlanStatus{PreviousStreak: intPtr(9)}},
		},
		{
			name: "previous streak below current",
			req:  &Request{Streak: 12, PlanStatus: PlanStatus{PreviousStreak: intPtr(9)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeContext(tt.req, composeNow).StreakDrop; got != tt.want {
				t.Errorf("StreakDrop = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposeContextCostAndFreshness(t *testing.T) {
	gen := composeNow.Add(-6 * time.Hour)
	req := &Request{
		CostFlags:    CostFlags{BudgetHold: true},
		PlanStatus:   PlanStatus{GeneratedAt: &gen},
		TokenBalance: 42,
	}

	ctx := ComposeContext(req, composeNow)

	if !ctx.CostSensitive {
		t.Error("budget hold must set CostSensitive")
	}
	if ctx.PlanFreshnessHours == nil || *ctx.PlanFreshnessHours != 6 {
		t.Errorf("PlanFreshnessHours = %v, want 6", ctx.PlanFreshnessHours)
	}
	if ctx.TokenBalance != 42 {
		t.Errorf("TokenBalance = %d, want 42 echoed", ctx.TokenBalance)
	}
}

func TestComposeContextLastActionFallsBackToTimestamp(t *testing.T) {
	ts := composeNow.Add(-time.Hour)
	req := &Request{RecentActions: []Action{{Type: "meal_log", Status: "done", Timestamp: ts}}}

	ctx := ComposeContext(req, composeNow)

	if ctx.LastActionID != ts.UTC().Format(time.RFC3339) {
		t.Errorf("LastActionID = %q, want RFC3339 timestamp", ctx.LastActionID)
	}
}
