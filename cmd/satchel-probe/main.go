// SPDX-License-Identifier: MIT

// satchel-probe checks that a configured catalog server is reachable,
// authenticates correctly and returns resolvable media. It is meant for
// first-time setup and for diagnosing connectivity reports.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/satchel/internal/catalog"
	"github.com/ManuGH/satchel/internal/config"
	"github.com/ManuGH/satchel/internal/log"
	"github.com/ManuGH/satchel/internal/stream"
	"github.com/ManuGH/satchel/internal/version"
)

type ProbeReport struct {
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	BaseURL   string        `json:"base_url"`
	Checks    []CheckResult `json:"checks"`
}

type CheckResult struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	LatencyMs int64  `json:"latency_ms"`
	Details   string `json:"details,omitempty"`
}

var (
	configPath  = flag.String("config", "satchel.yaml", "Path to the configuration file")
	baseURLFlag = flag.String("base-url", "", "Override server.baseUrl from the config")
	apiKeyFlag  = flag.String("api-key", "", "Override the API key from config/env")
	jsonOut     = flag.Bool("json", false, "Emit the full report as JSON on stdout")
	timeoutFlag = flag.Duration("timeout", 30*time.Second, "Overall probe deadline")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("satchel-probe %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		return
	}
	log.Configure(log.Config{Output: os.Stderr})

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}
}

type reporter struct {
	mu     sync.Mutex
	report *ProbeReport
	failed bool
}

func (r *reporter) runCheck(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start).Milliseconds()

	res := CheckResult{Name: name, Passed: err == nil, LatencyMs: latency}
	if err != nil {
		res.Details = err.Error()
	}

	r.mu.Lock()
	r.report.Checks = append(r.report.Checks, res)
	if err != nil {
		r.failed = true
	}
	r.mu.Unlock()

	if err != nil {
		fmt.Printf("FAIL: %s (%s)\n", name, err)
	} else {
		fmt.Printf("PASS: %s (%dms)\n", name, latency)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		// A missing file is fine when the base URL comes from the flag.
		if *baseURLFlag == "" {
			return err
		}
		cfg = &config.Config{BaseURL: *baseURLFlag}
	}
	if *baseURLFlag != "" {
		cfg.BaseURL = *baseURLFlag
	}
	if *apiKeyFlag != "" {
		cfg.APIKey = *apiKeyFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	client, err := catalog.New(cfg.BaseURL, cfg.APIKey, catalog.Options{Timeout: cfg.Timeout})
	if err != nil {
		return err
	}

	rep := &reporter{report: &ProbeReport{
		Timestamp: time.Now(),
		Version:   version.Version,
		BaseURL:   cfg.BaseURL,
		Checks:    make([]CheckResult, 0),
	}}

	// Reachability and auth first; everything else depends on it.
	var firstScene *catalog.Scene
	rep.runCheck("server_reachable", func() error {
		probe := func() (*catalog.ScenesResult, error) {
			return client.FindScenes(ctx, catalog.FindFilter{Page: 1, PerPage: 1}, nil)
		}
		res, err := probe()
		var srvErr *catalog.ServerError
		if errors.As(err, &srvErr) && srvErr.Retryable() {
			// One backoff-and-retry before declaring the server down.
			if werr := catalog.WaitBeforeRetry(ctx, 0); werr == nil {
				res, err = probe()
			}
		}
		if err != nil {
			if errors.Is(err, catalog.ErrAuthFailed) {
				return fmt.Errorf("server is up but rejected the API key: %w", err)
			}
			return err
		}
		if len(res.Scenes) > 0 {
			firstScene = &res.Scenes[0]
		}
		return nil
	})

	if !rep.failed {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			rep.runCheck("tags_query", func() error {
				_, err := client.AllTags(gctx)
				return err
			})
			return nil
		})
		g.Go(func() error {
			rep.runCheck("saved_filters_query", func() error {
				_, err := client.SavedFilters(gctx, "SCENES")
				return err
			})
			return nil
		})
		g.Go(func() error {
			rep.runCheck("markers_query", func() error {
				_, err := client.FindMarkers(gctx, catalog.FindFilter{Page: 1, PerPage: 1}, nil)
				return err
			})
			return nil
		})
		_ = g.Wait()

		rep.runCheck("stream_resolve", func() error {
			if firstScene == nil {
				return fmt.Errorf("catalog is empty, nothing to resolve")
			}
			file := firstScene.PrimaryFile()
			resolver := stream.NewResolver(cfg.APIKey)
			target, err := resolver.Resolve(stream.MediaRef{
				ID:             firstScene.ID,
				Codec:          file.VideoCodec,
				DurationHint:   file.Duration,
				BaseStreamPath: firstScene.Paths.Stream,
			}, 0, 0, stream.Policy{ForceTranscode: cfg.ForceTranscode, Resolution: cfg.Resolution})
			if err != nil {
				return err
			}
			mode := "transcode"
			if target.DirectPlay {
				mode = "direct"
			}
			fmt.Printf("  scene %s resolves to %s playback\n", firstScene.ID, mode)
			return nil
		})
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep.report); err != nil {
			return err
		}
	}
	if rep.failed {
		return fmt.Errorf("%d of %d checks failed", countFailed(rep.report.Checks), len(rep.report.Checks))
	}
	fmt.Printf("All %d checks passed.\n", len(rep.report.Checks))
	return nil
}

func countFailed(checks []CheckResult) int {
	n := 0
	for _, c := range checks {
		if !c.Passed {
			n++
		}
	}
	return n
}
