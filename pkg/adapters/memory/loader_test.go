package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	contract "github.com/aretw0/waypoint/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *domain.Config {
	return &domain.Config{States: []domain.StateConfig{
		{ID: "START", Transitions: []domain.TransitionConfig{
			{Message: "MOVE", Action: "move", Next: "START"},
			{Message: "MOVELEFT", Action: "moveLeft", Next: "END"},
		}},
		{ID: "END"},
	}}
}

func TestInMemoryLoader_Contract(t *testing.T) {
	contract.ConfigLoaderContractTest(t, memory.NewLoader(sample()), sample())
}

func TestFromPairs_Contract(t *testing.T) {
	loader, err := memory.FromPairs(
		[]domain.StateID{"START", "END"},
		map[domain.StateID]map[domain.MessageID]string{
			"START": {"MOVELEFT": "moveLeft:END", "MOVE": "move:START"},
		},
	)
	require.NoError(t, err)
	contract.ConfigLoaderContractTest(t, loader, sample())
}

func TestFromPairs_Errors(t *testing.T) {
	_, err := memory.FromPairs([]domain.StateID{"A"}, map[domain.StateID]map[domain.MessageID]string{
		"A": {"GO": "no-separator"},
	})
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = memory.FromPairs([]domain.StateID{"A"}, map[domain.StateID]map[domain.MessageID]string{
		"B": {"GO": "go:A"},
	})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestInMemoryLoader_CopiesInput(t *testing.T) {
	cfg := sample()
	loader := memory.NewLoader(cfg)
	cfg.States[0].ID = "CHANGED"

	got, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateID("START"), got.Initial())

	got.States[0].Transitions[0].Next = "END"
	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateID("START"), again.States[0].Transitions[0].Next)
}

func TestInMemoryLoader_Nil(t *testing.T) {
	_, err := memory.NewLoader(nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfig)
}
