package nudge

import "testing"

func journeys(candidates []Candidate) map[string]Candidate {
	out := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		out[c.Journey] = c
	}
	return out
}

func TestGenerateCandidatesBaseline(t *testing.T) {
	got := journeys(GenerateCandidates(&Request{}, &Context{}))

	for _, journey := range []string{JourneyToday, JourneyQuickLog, JourneyGroceries} {
		if _, ok := got[journey]; !ok {
			t.Errorf("baseline set missing %q", journey)
		}
	}
	if _, ok := got[JourneySmartSwaps]; ok {
		t.Error("smart_swaps requires a swap request or skipped meals")
	}
	if _, ok := got[JourneyRecovery]; ok {
		t.Error("recovery requires a streak drop")
	}

	if got[JourneyToday].Score != 68 {
		t.Errorf("today score = %v, want 68", got[JourneyToday].Score)
	}
	// No meal log at all counts as overdue.
	if got[JourneyQuickLog].Score != 72+18 {
		t.Errorf("quick_log score = %v, want 90", got[JourneyQuickLog].Score)
	}
	if got[JourneyGroceries].Score != 64 {
		t.Errorf("groceries score = %v, want 64", got[JourneyGroceries].Score)
	}
	if got[JourneyGroceries].Secondary == nil || got[JourneyGroceries].Secondary.Path != "/pantry" {
		t.Error("groceries must carry a pantry secondary action")
	}
}

func TestGenerateCandidatesQuickLogBonuses(t *testing.T) {
	recent := 2.0
	overdue := 9.0

	tests := []struct {
		delta   *float64
		name    string
		skipped int
		want    float64
	}{
		{name: "recent log, nothing skipped", delta: &recent, want: 72},
		{name: "overdue log", delta: &overdue, want: 72 + 18},
		{name: "no log at all", delta: nil, want: 72 + 18},
		{name: "recent log but skipped meals", delta: &recent, skipped: 2, want: 72 + 6},
		{name: "overdue and skipped", delta: nil, skipped: 1, want: 72 + 18 + 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{LastLogDeltaHours: tt.delta, SkippedMeals: tt.skipped}
			got := journeys(GenerateCandidates(&Request{}, ctx))
			if score := got[JourneyQuickLog].Score; score != tt.want {
				t.Errorf("quick_log score = %v, want %v", score, tt.want)
			}
		})
	}
}

func TestGenerateCandidatesConditionalJourneys(t *testing.T) {
	recent := 1.0

	t.Run("smart_swaps on swap request", func(t *testing.T) {
		got := journeys(GenerateCandidates(&Request{}, &Context{SwapRequested: true, LastLogDeltaHours: &recent}))
		c, ok := got[JourneySmartSwaps]
		if !ok {
			t.Fatal("smart_swaps missing")
		}
		if c.Score != 66 {
			t.Errorf("smart_swaps score = %v, want 66", c.Score)
		}
		if c.Secondary == nil || c.Secondary.Path != "/plan/today" {
			t.Error("smart_swaps secondary must return to the main plan")
		}
	})

	t.Run("smart_swaps cost bonus", func(t *testing.T) {
		got := journeys(GenerateCandidates(&Request{}, &Context{SkippedMeals: 1, CostSensitive: true}))
		if score := got[JourneySmartSwaps].Score; score != 66+4 {
			t.Errorf("smart_swaps score = %v, want 70", score)
		}
	})

	t.Run("recovery on streak drop", func(t *testing.T) {
		got := journeys(GenerateCandidates(&Request{}, &Context{StreakDrop: true, LastLogDeltaHours: &recent}))
		if score := got[JourneyRecovery].Score; score != 62 {
			t.Errorf("recovery score = %v, want 62", score)
		}
	})

	t.Run("recovery with skipped meals", func(t *testing.T) {
		got := journeys(GenerateCandidates(&Request{}, &Context{StreakDrop: true, SkippedMeals: 1}))
		if score := got[JourneyRecovery].Score; score != 62+4 {
			t.Errorf("recovery score = %v, want 66", score)
		}
	})
}

func TestGenerateCandidatesGroceryBonus(t *testing.T) {
	got := journeys(GenerateCandidates(&Request{}, &Context{NeedsGroceries: true}))
	if score := got[JourneyGroceries].Score; score != 64+18 {
		t.Errorf("groceries score = %v, want 82", score)
	}
}

func TestJourneyOverride(t *testing.T) {
	t.Run("existing journey narrows the set", func(t *testing.T) {
		req := &Request{JourneyOverride: JourneyGroceries}
		got := GenerateCandidates(req, &Context{})
		if len(got) != 1 || got[0].Journey != JourneyGroceries {
			t.Errorf("override set = %v, want just groceries", got)
		}
	})

	t.Run("ungenerated journey is ignored", func(t *testing.T) {
		req := &Request{JourneyOverride: JourneyRecovery}
		got := GenerateCandidates(req, &Context{})
		if len(got) != 3 {
			t.Errorf("len = %d, want the full baseline set of 3", len(got))
		}
	})

	t.Run("unknown journey is ignored", func(t *testing.T) {
		req := &Request{JourneyOverride: "mystery_tour"}
		got := GenerateCandidates(req, &Context{})
		if len(got) != 3 {
			t.Errorf("len = %d, want the full baseline set of 3", len(got))
		}
	})
}

func TestCandidateSetNeverEmpty(t *testing.T) {
	contexts := []*Context{
		{},
		{SkippedMeals: 5, StreakDrop: true, CostSensitive: true, NeedsGroceries: true},
		{GroceryCompleted: true},
	}
	for _, ctx := range contexts {
		if got := GenerateCandidates(&Request{JourneyOverride: "nope"}, ctx); len(got) == 0 {
			t.Fatal("candidate set must never be empty")
		}
	}
}
