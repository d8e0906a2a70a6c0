// Package main implements the nudge CLI: feed it a raw payload and it prints
// the next best action the engine would select for that user.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/platewise/nudge/pkg/cache"
	"github.com/platewise/nudge/pkg/nudge"
)

var (
	redisAddr = flag.String("redis", "", "Redis address for shared caching (or set REDIS_ADDR)")
	releaseID = flag.String("release", "dev", "Release identifier used in analytics tags")
	disabled  = flag.Bool("disabled", false, "Serve the fallback decision for every call")
	asJSON    = flag.Bool("json", false, "Print the raw decision JSON")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	version   = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("nudge CLI v1.0.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <payload.json | ->\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if *redisAddr == "" {
		*redisAddr = os.Getenv("REDIS_ADDR")
	}

	payload, err := readPayload(args[0])
	if err != nil {
		logger.Error("reading payload", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := []nudge.Option{
		nudge.WithReleaseID(*releaseID),
		nudge.WithEnabled(!*disabled),
	}
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := pingRedis(ctx, rdb, logger); err != nil {
			logger.Warn("redis unavailable, using in-process caches", "addr", *redisAddr, "error", err)
		} else {
			store := cache.NewRedis(rdb, logger)
			opts = append(opts, nudge.WithDecisionCache(store), nudge.WithContextCache(store))
		}
	}

	engine := nudge.NewWithLogger(logger, opts...)
	decision := engine.SelectAction(ctx, payload)

	if *asJSON {
		out, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			logger.Error("encoding decision", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	printDecision(decision)
}

func readPayload(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	return payload, nil
}

// pingRedis verifies the Redis backend is reachable before the engine is
// wired to it. Retry lives here, at startup, never on the decision path.
func pingRedis(ctx context.Context, rdb *redis.Client, logger *slog.Logger) error {
	return retry.Do(
		func() error {
			return rdb.Ping(ctx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying redis ping", "attempt", n+1, "error", err)
		}),
	)
}

func printDecision(d *nudge.Decision) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Printf("Journey:   %s\n", d.Journey)
	fmt.Printf("Channel:   %s\n", d.Channel)
	fmt.Printf("Message:   %s\n", d.Message)
	fmt.Printf("CTA:       %s (%s)\n", d.CTALabel, d.DeepLink)
	if d.Meta.Secondary != nil {
		fmt.Printf("Also:      %s (%s)\n", d.Meta.Secondary.Label, d.Meta.Secondary.DeepLink)
	}
	fmt.Printf("Score:     %.1f\n", d.Meta.Score)
	for name, value := range d.Meta.Breakdown {
		fmt.Printf("           %s %+.1f\n", name, value)
	}
	if len(d.Meta.Reasons) > 0 {
		fmt.Printf("Why:       %s\n", strings.Join(d.Meta.Reasons, "; "))
	}

	switch {
	case d.Meta.ShouldQueue && d.Meta.ResumeAt != nil:
		yellow.Printf("Queued:    quiet hours, resumes %s\n", d.Meta.ResumeAt.Format(time.RFC1123))
	case d.Meta.Fallback:
		yellow.Println("Fallback:  orchestration disabled")
	default:
		green.Println("Sendable now")
	}

	if d.Meta.CacheHit {
		fmt.Println("Served from decision cache")
	}
}
