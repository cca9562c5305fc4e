package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/examiner/pkg/lifecycle"
)

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		hooks    map[string]error
		want     bool
		failures int
	}{
		{"no hooks", nil, true, 0},
		{"all succeed", map[string]error{"database": nil, "storage": nil}, true, 0},
		{"one fails", map[string]error{"database": errors.New("ping failed"), "storage": nil}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.New()
			for name, err := range tt.hooks {
				lc.OnStartup(name, func(context.Context) error { return err })
			}

			if lc.Ready() {
				t.Fatal("ready before WaitForStartup")
			}
			lc.WaitForStartup()

			if got := lc.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
			if got := len(lc.Failures()); got != tt.failures {
				t.Errorf("Failures() = %d entries, want %d", got, tt.failures)
			}
		})
	}
}

func TestFailuresMessage(t *testing.T) {
	lc := lifecycle.New()
	lc.OnStartup("database", func(context.Context) error { return errors.New("connection refused") })
	lc.WaitForStartup()

	if msg := lc.Failures()["database"]; msg != "connection refused" {
		t.Errorf("failure message = %q", msg)
	}
}

func TestShutdown(t *testing.T) {
	t.Run("runs hooks after cancel", func(t *testing.T) {
		lc := lifecycle.New()
		closed := make(chan struct{})
		lc.OnShutdown("database", func() { close(closed) })

		select {
		case <-closed:
			t.Fatal("shutdown hook ran before Shutdown")
		case <-time.After(10 * time.Millisecond):
		}

		if err := lc.Shutdown(time.Second); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
		select {
		case <-closed:
		default:
			t.Error("shutdown hook did not run")
		}
		if lc.Context().Err() == nil {
			t.Error("context not cancelled")
		}
	})

	t.Run("timeout names pending hooks", func(t *testing.T) {
		lc := lifecycle.New()
		release := make(chan struct{})
		defer close(release)
		lc.OnShutdown("http", func() { <-release })
		lc.OnShutdown("storage", func() {})

		err := lc.Shutdown(20 * time.Millisecond)
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if !strings.Contains(err.Error(), "http") || strings.Contains(err.Error(), "storage") {
			t.Errorf("error = %v, want only http pending", err)
		}
	})
}
