package tests

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// ConfigLoaderContractTest is a reusable test suite that verifies if an adapter complies
// with ports.ConfigLoader. want is the configuration the loader is expected to produce.
func ConfigLoaderContractTest(t *testing.T, loader ports.ConfigLoader, want *domain.Config) {
	t.Helper()

	t.Run("Load_Success", func(t *testing.T) {
		cfg, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("loaded config is invalid: %v", err)
		}

		got := cfg.StateIDs()
		wantIDs := want.StateIDs()
		if len(got) != len(wantIDs) {
			t.Fatalf("expected %d states, got %d (%v)", len(wantIDs), len(got), got)
		}
		for i := range wantIDs {
			if got[i] != wantIDs[i] {
				t.Errorf("state %d: got %q, want %q (document order must be kept)", i, got[i], wantIDs[i])
			}
		}
		if cfg.Initial() != want.Initial() {
			t.Errorf("initial state: got %q, want %q", cfg.Initial(), want.Initial())
		}
	})

	t.Run("Load_Transitions", func(t *testing.T) {
		cfg, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading config: %v", err)
		}
		for i, ws := range want.States {
			if i >= len(cfg.States) {
				break
			}
			gs := cfg.States[i]
			if len(gs.Transitions) != len(ws.Transitions) {
				t.Errorf("state %s: expected %d transitions, got %d", ws.ID, len(ws.Transitions), len(gs.Transitions))
				continue
			}
			for j, wt := range ws.Transitions {
				if gs.Transitions[j] != wt {
					t.Errorf("state %s transition %d: got %+v, want %+v", ws.ID, j, gs.Transitions[j], wt)
				}
			}
		}
	})

	t.Run("Load_Repeatable", func(t *testing.T) {
		a, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("first load: %v", err)
		}
		b, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("second load: %v", err)
		}
		if len(a.States) > 0 && len(b.States) > 0 && &a.States[0] == &b.States[0] {
			t.Error("loads must not share state slices")
		}
	})
}
