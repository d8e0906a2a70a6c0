package nudge

import (
	"strconv"
	"strings"
	"time"
)

// Action is one entry in the user's recent-activity feed, most recent first.
type Action struct {
	Timestamp time.Time
	ID        string
	Type      string
	Status    string
}

// QuietWindow is a local time-of-day window during which proactive push
// messages are deferred. Start may be later than End, in which case the
// window wraps midnight.
type QuietWindow struct {
	StartMinutes int
	EndMinutes   int
}

// CostFlags captures the user's cost posture as reported upstream.
type CostFlags struct {
	LimitReached bool
	BudgetHold   bool
}

// PlanStatus carries plan-level state the engine reads but never writes.
type PlanStatus struct {
	GeneratedAt    *time.Time
	PreviousStreak *int
	Status         string
	GroceriesDone  bool
}

// Request is the strongly-typed, immutable form of an inbound payload.
type Request struct {
	UserID          string
	Channel         string
	Locale          string
	Timezone        string
	DisplayName     string
	Diet            string
	Goal            string
	CorrelationID   string
	JourneyOverride string
	Allergies       []string
	ChannelPrefs    []string
	RecentActions   []Action
	Flags           map[string]bool
	PlanDay         *int
	QuietHours      *QuietWindow
	PlanStatus      PlanStatus
	CostFlags       CostFlags
	Streak          int
	TokenBalance    int
	InitiatedByUser bool
}

// NormalizeRequest parses a loosely-typed payload into a Request. It never
// fails: unknown or malformed optional fields degrade to their documented
// defaults instead of producing an error.
func NormalizeRequest(payload map[string]any) *Request {
	req := &Request{
		UserID:          asString(payload["user_id"]),
		Channel:         strings.ToLower(asString(payload["channel"])),
		Locale:          asString(payload["locale"]),
		Timezone:        asString(payload["timezone"]),
		DisplayName:     asString(payload["display_name"]),
		Diet:            asString(payload["diet"]),
		Goal:            asString(payload["goal"]),
		CorrelationID:   asString(payload["correlation_id"]),
		JourneyOverride: asString(payload["journey_override"]),
		Allergies:       asStringSlice(payload["allergies"]),
		ChannelPrefs:    lowered(asStringSlice(payload["channel_prefs"])),
		RecentActions:   parseActions(payload["recent_actions"]),
		Flags:           asBoolMap(payload["flags"]),
		PlanDay:         asIntPtr(payload["plan_day"]),
		QuietHours:      parseQuietWindow(payload["quiet_hours"]),
		Streak:          asInt(payload["streak"]),
		TokenBalance:    asInt(payload["tokens"]),
		InitiatedByUser: asBool(payload["initiated_by_user"]),
	}

	if req.Channel == "" {
		req.Channel = "app"
	}
	if req.Locale == "" {
		req.Locale = "en"
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	if cf, ok := payload["cost_flags"].(map[string]any); ok {
		req.CostFlags = CostFlags{
			LimitReached: asBool(cf["limit_reached"]),
			BudgetHold:   asBool(cf["budget_hold"]),
		}
	}

	if ps, ok := payload["plan_status"].(map[string]any); ok {
		req.PlanStatus = PlanStatus{
			GeneratedAt:    parseTimestamp(ps["generated_at"]),
			PreviousStreak: asIntPtr(ps["previous_streak"]),
			Status:         asString(ps["status"]),
			GroceriesDone:  asBool(ps["groceries_done"]),
		}
	}

	return req
}

// PrefersChannel reports whether ch appears in the channel-preference list.
func (r *Request) PrefersChannel(ch string) bool {
	ch = strings.ToLower(ch)
	for _, pref := range r.ChannelPrefs {
		if pref == ch {
			return true
		}
	}
	return false
}

// FlagEnabled looks up a feature flag, returning def when the flag is absent.
func (r *Request) FlagEnabled(name string, def bool) bool {
	if v, ok := r.Flags[name]; ok {
		return v
	}
	return def
}

// parseQuietWindow accepts a {start, end} mapping, a two-element pair, or a
// single "HH:MM-HH:MM" string. Anything else means no quiet hours.
func parseQuietWindow(v any) *QuietWindow {
	var startRaw, endRaw string

	switch w := v.(type) {
	case map[string]any:
		startRaw = asString(w["start"])
		endRaw = asString(w["end"])
	case []any:
		if len(w) != 2 {
			return nil
		}
		startRaw = asString(w[0])
		endRaw = asString(w[1])
	case []string:
		if len(w) != 2 {
			return nil
		}
		startRaw, endRaw = w[0], w[1]
	case string:
		parts := strings.SplitN(w, "-", 2)
		if len(parts) != 2 {
			return nil
		}
		startRaw, endRaw = parts[0], parts[1]
	default:
		return nil
	}

	start, ok := parseClockTime(startRaw)
	if !ok {
		return nil
	}
	end, ok := parseClockTime(endRaw)
	if !ok {
		return nil
	}
	return &QuietWindow{StartMinutes: start, EndMinutes: end}
}

// parseClockTime parses "HH:MM" into minutes since midnight.
func parseClockTime(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func parseActions(v any) []Action {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	actions := make([]Action, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		action := Action{
			ID:     asString(m["id"]),
			Type:   strings.ToLower(asString(m["type"])),
			Status: strings.ToLower(asString(m["status"])),
		}
		if ts := parseTimestamp(m["timestamp"]); ts != nil {
			action.Timestamp = *ts
		}
		actions = append(actions, action)
	}
	return actions
}

// parseTimestamp accepts RFC 3339 strings and Unix-seconds numbers.
func parseTimestamp(v any) *time.Time {
	switch t := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return &parsed
		}
	case float64:
		parsed := time.Unix(int64(t), 0).UTC()
		return &parsed
	case int:
		parsed := time.Unix(int64(t), 0).UTC()
		return &parsed
	case int64:
		parsed := time.Unix(t, 0).UTC()
		return &parsed
	case time.Time:
		return &t
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	if p := asIntPtr(v); p != nil {
		return *p
	}
	return 0
}

// asIntPtr casts numeric-ish values to an int, returning nil when the value
// cannot be interpreted as one.
func asIntPtr(v any) *int {
	switch n := v.(type) {
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func asBoolMap(v any) map[string]bool {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, val := range m {
		out[k] = asBool(val)
	}
	return out
}

// lowered returns a lower-cased copy. asStringSlice can hand back the
// caller's own slice, so lower-casing in place would mutate the payload.
func lowered(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
