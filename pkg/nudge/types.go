package nudge

import (
	"context"
	"time"

	"github.com/platewise/nudge/pkg/cache"
	"github.com/platewise/nudge/pkg/l10n"
)

// Clock supplies the current time. Injected so tests are deterministic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Telemetry receives one fire-and-forget record per decision. Failures are
// the recorder's problem; the engine never waits on or retries it.
type Telemetry interface {
	Record(ctx context.Context, payload map[string]any, duration time.Duration, rowCount *int, origin string)
}

// DeepLinkBuilder turns a journey path into a channel-appropriate link.
// Owned by the messaging subsystem; the engine only supplies inputs.
type DeepLinkBuilder interface {
	BuildDeepLink(path, channel, journey, locale string) string
}

// Option configures an Engine.
type Option func(*OptionHolder)

// WithClock replaces the wall clock, usually with a fixed one in tests.
func WithClock(c Clock) Option {
	return func(o *OptionHolder) { o.clock = c }
}

// WithDecisionCache sets the store for finished decisions, keyed per
// (user, channel).
func WithDecisionCache(s cache.Store) Option {
	return func(o *OptionHolder) { o.decisions = s }
}

// WithContextCache sets the store for composed context snapshots, keyed per
// user.
func WithContextCache(s cache.Store) Option {
	return func(o *OptionHolder) { o.contexts = s }
}

// WithTelemetry sets the telemetry recorder.
func WithTelemetry(t Telemetry) Option {
	return func(o *OptionHolder) { o.telemetry = t }
}

// WithDeepLinks sets the deep-link builder.
func WithDeepLinks(b DeepLinkBuilder) Option {
	return func(o *OptionHolder) { o.links = b }
}

// WithLocalizer sets the message bundle.
func WithLocalizer(b *l10n.Bundle) Option {
	return func(o *OptionHolder) { o.bundle = b }
}

// WithReleaseID sets the release/build identifier used in analytics tags.
func WithReleaseID(id string) Option {
	return func(o *OptionHolder) { o.releaseID = id }
}

// WithEnabled sets the process-wide orchestration switch. Disabled engines
// return the fallback decision for every call.
func WithEnabled(enabled bool) Option {
	return func(o *OptionHolder) { o.enabled = &enabled }
}

// OptionHolder holds configuration options.
type OptionHolder struct {
	clock     Clock
	decisions cache.Store
	contexts  cache.Store
	telemetry Telemetry
	links     DeepLinkBuilder
	bundle    *l10n.Bundle
	enabled   *bool
	releaseID string
}

// SecondaryCTA is a localized secondary call-to-action on a decision.
type SecondaryCTA struct {
	Label    string `json:"label"`
	DeepLink string `json:"deep_link"`
}

// Meta is the decision's metadata bag: scoring evidence, queueing state,
// cache outcomes, and analytics tags.
type Meta struct {
	Breakdown       map[string]float64 `json:"breakdown"`
	Tags            map[string]string  `json:"tags"`
	ResumeAt        *time.Time         `json:"resume_at,omitempty"`
	Secondary       *SecondaryCTA      `json:"secondary,omitempty"`
	Reasons         []string           `json:"reasons"`
	Score           float64            `json:"score"`
	LatencyMS       float64            `json:"latency_ms"`
	ShouldQueue     bool               `json:"should_queue"`
	QuietHours      bool               `json:"quiet_hours"`
	CacheHit        bool               `json:"cache_hit"`
	ContextCacheHit bool               `json:"context_cache_hit"`
	Fallback        bool               `json:"fallback,omitempty"`
}

// Decision is the one action the engine selected for a user. Read-only once
// returned.
type Decision struct {
	Journey  string `json:"journey"`
	Channel  string `json:"channel"`
	Message  string `json:"message"`
	CTALabel string `json:"cta_label"`
	DeepLink string `json:"deep_link"`
	Meta     Meta   `json:"meta"`
}

// cachedDecision is the decision-cache entry: the decision plus the inputs
// the staleness rules compare against.
type cachedDecision struct {
	Decision     Decision `json:"decision"`
	LastActionID string   `json:"last_action_id"`
	TokenBalance int      `json:"token_balance"`
}
