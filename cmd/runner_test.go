package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/store"
	"github.com/desertthunder/trax/internal/sync"
	tu "github.com/desertthunder/trax/internal/testing"
	"github.com/desertthunder/trax/internal/track"
	"github.com/desertthunder/trax/internal/trackers"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			registry := trackers.Registry{track.TrackerMAL: &tu.MockTracker{}}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Registry:   registry,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if len(runner.registry) != 1 {
				t.Error("expected registry to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil registry builds all adapters", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			for _, tracker := range track.Trackers {
				if _, ok := runner.registry[tracker]; !ok {
					t.Errorf("expected adapter for %s", tracker)
				}
			}
		})

		t.Run("with store wires the engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Store: store.NewMemoryStore(),
			})

			if runner.engine == nil {
				t.Error("expected engine to be wired from the provided store")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"n": 1}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if got := output.String(); got != "{\"n\":1}\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("parseTrackerArg", func(t *testing.T) {
		if _, err := parseTrackerArg("mal"); err != nil {
			t.Errorf("expected mal to parse, got %v", err)
		}
		if _, err := parseTrackerArg("letterboxd"); err == nil {
			t.Error("expected error for unknown tracker")
		}
	})

	t.Run("parseKindFlag", func(t *testing.T) {
		for _, valid := range []string{"anime", "manga", "manhwa", "manhua", "novel"} {
			if _, err := parseKindFlag(valid); err != nil {
				t.Errorf("expected %s to parse, got %v", valid, err)
			}
		}
		if _, err := parseKindFlag("podcast"); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

func TestRunnerActions(t *testing.T) {
	newTestRunner := func(t *testing.T) (*Runner, *bytes.Buffer, *tu.MockTracker) {
		t.Helper()
		output := &bytes.Buffer{}
		mal := &tu.MockTracker{TrackerName: track.TrackerMAL}
		runner := NewRunner(RunnerOpts{
			Output:   output,
			Store:    store.NewMemoryStore(),
			Registry: trackers.Registry{track.TrackerMAL: mal},
		})
		return runner, output, mal
	}

	seedLogin := func(t *testing.T, r *Runner) {
		t.Helper()
		ctx := context.Background()
		err := r.engine.SaveAuth(ctx, track.TrackerMAL, track.Auth{AccessToken: "token", Username: "tester"})
		if err != nil {
			t.Fatalf("failed to seed auth: %v", err)
		}
	}

	t.Run("detect then link round trip", func(t *testing.T) {
		runner, output, mal := newTestRunner(t)
		ctx := context.Background()
		seedLogin(t, runner)

		err := runner.engine.HandleDetection(ctx, sync.Detection{
			Platform: "webtoon", Title: "Tower of God", Kind: track.KindManhwa, Progress: 8,
		})
		if err != nil {
			t.Fatalf("detection failed: %v", err)
		}

		key := track.MakeKey("webtoon", "Tower of God")
		if _, err := runner.engine.Link(ctx, key, track.TrackerMAL, 91, ""); err != nil {
			t.Fatalf("link failed: %v", err)
		}

		if mal.UpdateCount() != 1 || mal.LastUpdate().Progress != 8 {
			t.Errorf("expected one sync at 8, got %d calls", mal.UpdateCount())
		}
		if !strings.Contains(output.String(), "Tower of God") {
			t.Errorf("expected link proposal hint on output, got %q", output.String())
		}
	})

	t.Run("auth status lists all trackers", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		seedLogin(t, runner)

		if err := runner.AuthStatus(context.Background(), nil); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "tester") {
			t.Errorf("expected username in output, got %q", got)
		}
		for _, tracker := range track.Trackers {
			if !strings.Contains(got, string(tracker)) {
				t.Errorf("expected %s in output", tracker)
			}
		}
	})
}
