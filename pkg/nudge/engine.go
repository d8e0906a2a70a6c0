// Package nudge implements the next-best-action decision engine: given a
// user's current state it selects exactly one journey to present and decides
// whether the message must be deferred for quiet hours. Every call returns a
// valid decision; malformed input and collaborator failures degrade rather
// than error.
package nudge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/nudge/pkg/cache"
	"github.com/platewise/nudge/pkg/l10n"
)

// Cache TTLs and feature-flag keys.
const (
	contextTTL  = 2 * time.Minute
	decisionTTL = 10 * time.Minute

	flagOrchestration = "nba_orchestration"
	flagForceRefresh  = "nba_force_refresh"
)

func decisionKey(userID, channel string) string { return "nba:dec:" + userID + ":" + channel }

func contextKey(userID string) string { return "nba:ctx:" + userID }

// Engine selects the next best action for a user. It is stateless per call;
// all cross-call state lives in the injected cache collaborators, so calls
// for distinct users or channels need no coordination.
type Engine struct {
	logger    *slog.Logger
	clock     Clock
	decisions cache.Store
	contexts  cache.Store
	telemetry Telemetry
	links     DeepLinkBuilder
	bundle    *l10n.Bundle
	releaseID string
	enabled   bool
}

// New creates an Engine with the default logger.
func New(opts ...Option) *Engine {
	return NewWithLogger(slog.Default(), opts...)
}

// NewWithLogger creates an Engine with a custom logger. Unset collaborators
// take in-process defaults: otter-backed caches, slog telemetry, static
// deep links, the embedded message bundle, and the system clock.
func NewWithLogger(logger *slog.Logger, opts ...Option) *Engine {
	holder := &OptionHolder{}
	for _, opt := range opts {
		opt(holder)
	}

	e := &Engine{
		logger:    logger,
		clock:     holder.clock,
		decisions: holder.decisions,
		contexts:  holder.contexts,
		telemetry: holder.telemetry,
		links:     holder.links,
		bundle:    holder.bundle,
		releaseID: holder.releaseID,
		enabled:   true,
	}
	if holder.enabled != nil {
		e.enabled = *holder.enabled
	}
	if e.clock == nil {
		e.clock = systemClock{}
	}
	if e.decisions == nil {
		e.decisions = cache.NewMemory(logger)
	}
	if e.contexts == nil {
		e.contexts = cache.NewMemory(logger)
	}
	if e.telemetry == nil {
		e.telemetry = slogTelemetry{logger: logger}
	}
	if e.links == nil {
		e.links = DefaultLinks()
	}
	if e.bundle == nil {
		e.bundle = l10n.Default()
	}
	if e.releaseID == "" {
		e.releaseID = "dev"
	}
	return e
}

// SelectAction is the public entry point. It is a total function: whatever
// the payload or collaborator state, it returns a valid decision.
func (e *Engine) SelectAction(ctx context.Context, payload map[string]any) *Decision {
	start := e.clock.Now()
	req := NormalizeRequest(payload)

	corrID := req.CorrelationID
	if corrID == "" {
		corrID = uuid.NewString()
	}

	if !e.enabled || !req.FlagEnabled(flagOrchestration, true) {
		e.logger.Debug("orchestration disabled, serving fallback", "user", req.UserID)
		return e.fallback(ctx, req, corrID, start)
	}

	key := decisionKey(req.UserID, req.Channel)

	if data, hit, err := e.decisions.Get(ctx, key); err != nil {
		e.logger.Debug("decision cache read failed", "key", key, "error", err)
	} else if hit {
		var cached cachedDecision
		if err := json.Unmarshal(data, &cached); err != nil {
			e.logger.Debug("decision cache entry unreadable", "key", key, "error", err)
		} else if !stale(req, &cached) {
			d := cached.Decision
			d.Meta.CacheHit = true
			d.Meta.Tags = e.analyticsTags(req, d.Journey, corrID)
			d.Meta.LatencyMS = e.sinceMS(start)
			e.record(ctx, req, &d, "cache")
			return &d
		} else {
			e.logger.Debug("decision cache entry stale", "key", key)
		}
	}

	userCtx, ctxHit := e.userContext(ctx, req, start)

	candidates := GenerateCandidates(req, userCtx)
	best := SelectBest(candidates, userCtx, req.Channel)
	queue, resume := EvaluateQuietHours(req, best.Candidate, start)

	decision := e.buildDecision(req, best, queue, resume, ctxHit, corrID, start, false)
	e.storeDecision(ctx, key, decision, req)
	e.record(ctx, req, decision, "decision")

	e.logger.Info("action selected",
		"user", req.UserID,
		"journey", decision.Journey,
		"channel", decision.Channel,
		"score", decision.Meta.Score,
		"queued", decision.Meta.ShouldQueue)
	return decision
}

// fallback serves the deterministic baseline decision without consulting any
// cache. Used for the kill switch and the per-request orchestration flag.
func (e *Engine) fallback(ctx context.Context, req *Request, corrID string, start time.Time) *Decision {
	empty := &Context{TokenBalance: req.TokenBalance}
	today := GenerateCandidates(&Request{}, empty)[0]
	best := SelectBest([]Candidate{today}, empty, req.Channel)
	queue, resume := EvaluateQuietHours(req, today, start)

	decision := e.buildDecision(req, best, queue, resume, false, corrID, start, true)
	e.record(ctx, req, decision, "fallback")
	return decision
}

// userContext fetches the cached context snapshot for the user, composing
// and caching a fresh one on miss. The second return value reports a cache
// hit. Cache failures degrade to a fresh composition.
func (e *Engine) userContext(ctx context.Context, req *Request, now time.Time) (*Context, bool) {
	key := contextKey(req.UserID)

	if data, hit, err := e.contexts.Get(ctx, key); err != nil {
		e.logger.Debug("context cache read failed", "key", key, "error", err)
	} else if hit {
		var cached Context
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, true
		}
		e.logger.Debug("context cache entry unreadable", "key", key)
	}

	composed := ComposeContext(req, now)
	if data, err := json.Marshal(composed); err == nil {
		if err := e.contexts.Set(ctx, key, data, contextTTL, cache.Replace); err != nil {
			e.logger.Debug("context cache write failed", "key", key, "error", err)
		}
	}
	return composed, false
}

// stale reports whether a cached decision no longer reflects the user's
// state: the token balance moved, a force refresh was requested, or the
// most recent action changed. Both markers come straight from the request;
// the cached context snapshot can be minutes behind.
func stale(req *Request, cached *cachedDecision) bool {
	if cached.TokenBalance != req.TokenBalance {
		return true
	}
	if req.FlagEnabled(flagForceRefresh, false) {
		return true
	}
	return cached.LastActionID != latestActionID(req)
}

func (e *Engine) buildDecision(req *Request, best Scored, queue bool, resume *time.Time, ctxHit bool, corrID string, start time.Time, fallback bool) *Decision {
	c := best.Candidate
	decision := &Decision{
		Journey:  c.Journey,
		Channel:  req.Channel,
		Message:  e.bundle.Resolve(c.MessageKey, req.Locale),
		CTALabel: e.bundle.Resolve(c.CTAKey, req.Locale),
		DeepLink: e.links.BuildDeepLink(c.Path, req.Channel, c.Journey, req.Locale),
		Meta: Meta{
			Score:           best.Total,
			Breakdown:       best.Breakdown,
			Reasons:         c.Reasons,
			ShouldQueue:     queue,
			ResumeAt:        resume,
			QuietHours:      queue,
			ContextCacheHit: ctxHit,
			Fallback:        fallback,
			Tags:            e.analyticsTags(req, c.Journey, corrID),
		},
	}
	if c.Secondary != nil {
		decision.Meta.Secondary = &SecondaryCTA{
			Label:    e.bundle.Resolve(c.Secondary.LabelKey, req.Locale),
			DeepLink: e.links.BuildDeepLink(c.Secondary.Path, req.Channel, c.Journey, req.Locale),
		}
	}
	decision.Meta.LatencyMS = e.sinceMS(start)
	return decision
}

func (e *Engine) storeDecision(ctx context.Context, key string, decision *Decision, req *Request) {
	entry := cachedDecision{
		Decision:     *decision,
		TokenBalance: req.TokenBalance,
		LastActionID: latestActionID(req),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		e.logger.Debug("decision marshal failed", "key", key, "error", err)
		return
	}
	// Write failures are dropped: the decision path never fails on cache.
	if err := e.decisions.Set(ctx, key, data, decisionTTL, cache.Replace); err != nil {
		e.logger.Debug("decision cache write failed", "key", key, "error", err)
	}
}

func (e *Engine) record(ctx context.Context, req *Request, decision *Decision, origin string) {
	payload := map[string]any{
		"journey":           decision.Journey,
		"channel":           decision.Channel,
		"locale":            req.Locale,
		"streak":            req.Streak,
		"cache_hit":         decision.Meta.CacheHit,
		"context_cache_hit": decision.Meta.ContextCacheHit,
		"correlation_id":    decision.Meta.Tags["correlation_id"],
	}
	duration := time.Duration(decision.Meta.LatencyMS * float64(time.Millisecond))
	e.telemetry.Record(ctx, payload, duration, nil, origin)
}

func (e *Engine) analyticsTags(req *Request, journey, corrID string) map[string]string {
	return map[string]string{
		"channel":        req.Channel,
		"locale":         req.Locale,
		"release":        e.releaseID,
		"journey":        journey,
		"correlation_id": corrID,
	}
}

func (e *Engine) sinceMS(start time.Time) float64 {
	return e.clock.Now().Sub(start).Seconds() * 1000
}
