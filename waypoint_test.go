package waypoint_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOpen_Scenario(t *testing.T) {
	for _, path := range []string{"testdata/walker.xml", "testdata/walker.yaml", "testdata/vault"} {
		t.Run(path, func(t *testing.T) {
			ctx := context.Background()
			eng, err := waypoint.Open(ctx, path, waypoint.WithDefaultAction(domain.Always()))
			require.NoError(t, err)

			assert.Equal(t, []domain.StateID{"START", "INTERMEDIATE", "ANKIT"}, eng.States())
			assert.Equal(t, domain.StateID("START"), eng.Current())

			steps := []struct {
				msg     domain.MessageID
				want    domain.StateID
				outcome domain.Outcome
			}{
				{"MOVE", "START", domain.OutcomeCommitted},
				{"JUMP", "START", domain.OutcomeUnhandled},
				{"MOVELEFT", "INTERMEDIATE", domain.OutcomeCommitted},
				{"MOVELEFT", "INTERMEDIATE", domain.OutcomeUnhandled},
				{"MOVERIGHT", "ANKIT", domain.OutcomeCommitted},
				{"MOVERIGHT", "ANKIT", domain.OutcomeUnhandled},
			}
			for _, step := range steps {
				res, err := eng.Dispatch(ctx, step.msg)
				require.NoError(t, err)
				assert.Equal(t, step.outcome, res.Outcome, step.msg)
				assert.Equal(t, step.want, eng.Current(), step.msg)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := waypoint.Open(ctx, "testdata/missing.xml")
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = waypoint.Open(ctx, "testdata/broken.xml")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.ErrorIs(t, err, domain.ErrUnknownNextState)
}

func TestNew_LoaderFailure(t *testing.T) {
	boom := errors.New("backend down")
	loader := ports.LoaderFunc(func(context.Context) (*domain.Config, error) {
		return nil, boom
	})

	_, err := waypoint.New(context.Background(), loader)
	assert.ErrorIs(t, err, boom)

	_, err = waypoint.New(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewFromConfig_Validation(t *testing.T) {
	_, err := waypoint.NewFromConfig(&domain.Config{})
	assert.ErrorIs(t, err, domain.ErrNoStates)

	_, err = waypoint.NewFromConfig(&domain.Config{States: []domain.StateConfig{
		{ID: "A", Transitions: []domain.TransitionConfig{{Message: "GO", Next: "A"}, {Message: "GO", Next: "A"}}},
	}})
	assert.ErrorIs(t, err, domain.ErrDuplicateMessage)
}

func TestEngines_AreIsolated(t *testing.T) {
	ctx := context.Background()
	loader, err := memory.FromPairs([]domain.StateID{"A", "B"}, map[domain.StateID]map[domain.MessageID]string{
		"A": {"GO": "go:B"},
		"B": {"BACK": "back:A"},
	})
	require.NoError(t, err)

	first, err := waypoint.New(ctx, loader)
	require.NoError(t, err)
	second, err := waypoint.New(ctx, loader)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	first.SetAction("GO", domain.ActionFunc(func(domain.StateID, domain.MessageID, domain.StateID, any) (bool, error) {
		return false, nil
	}))
	first.SetSharedContext("only-first")

	_, err = first.Dispatch(ctx, "GO")
	require.NoError(t, err)
	_, err = second.Dispatch(ctx, "GO")
	require.NoError(t, err)

	assert.Equal(t, domain.StateID("A"), first.Current())
	assert.Equal(t, domain.StateID("B"), second.Current())
	assert.Nil(t, second.Shared())

	infos, err := second.Transitions("A")
	require.NoError(t, err)
	assert.False(t, infos[0].BoundAction)
}

func TestEngine_Metadata(t *testing.T) {
	eng, err := waypoint.Open(context.Background(), "testdata/walker.xml")
	require.NoError(t, err)

	assert.Equal(t, "walker", eng.Name)
	_, err = uuid.Parse(eng.ID())
	assert.NoError(t, err)

	cfg := eng.Config()
	cfg.States[0].ID = "CHANGED"
	assert.Equal(t, domain.StateID("START"), eng.Config().Initial())

	named, err := waypoint.NewFromConfig(eng.Config(), waypoint.WithName("custom"), waypoint.WithInstanceID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "custom", named.Name)
	assert.Equal(t, "fixed", named.ID())
	assert.Nil(t, named.Loader())
}

func TestEngine_Watch(t *testing.T) {
	eng, err := waypoint.NewFromConfig(&domain.Config{States: []domain.StateConfig{{ID: "A"}}})
	require.NoError(t, err)

	_, err = eng.Watch(context.Background())
	assert.ErrorIs(t, err, waypoint.ErrNotWatchable)
}

func TestEngine_LoggerEnrichment(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng, err := waypoint.Open(context.Background(), "testdata/walker.yaml",
		waypoint.WithLogger(logger),
		waypoint.WithInstanceID("walker-1"),
	)
	require.NoError(t, err)

	buf.Reset()
	_, err = eng.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)

	var rec map[string]any
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	assert.Equal(t, "dispatch", rec["msg"])
	assert.Equal(t, "walker", rec["machine"])
	assert.Equal(t, "walker-1", rec["instance"])
	assert.Equal(t, "none", rec["hook"])
	assert.Equal(t, "committed", rec["outcome"])
}

func TestEngine_LifecycleHooksChain(t *testing.T) {
	var calls []string
	eng, err := waypoint.Open(context.Background(), "testdata/walker.xml",
		waypoint.WithLifecycleHooks(domain.LifecycleHooks{
			OnDispatch: func(context.Context, *domain.DispatchEvent) { calls = append(calls, "first") },
		}),
		waypoint.WithLifecycleHooks(domain.LifecycleHooks{
			OnDispatch: func(context.Context, *domain.DispatchEvent) { calls = append(calls, "second") },
		}),
	)
	require.NoError(t, err)

	_, err = eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEngine_DispatchSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	eng, err := waypoint.Open(context.Background(), "testdata/walker.xml",
		waypoint.WithTracerProvider(tp),
		waypoint.WithInstanceID("walker-2"),
	)
	require.NoError(t, err)

	_, err = eng.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := make(map[string]any)
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "walker", attrs["waypoint.machine"])
	assert.Equal(t, "walker-2", attrs["waypoint.instance"])
	assert.Equal(t, "START", attrs["waypoint.from"])
	assert.Equal(t, "INTERMEDIATE", attrs["waypoint.next"])
	assert.Equal(t, "committed", attrs["waypoint.outcome"])
}
