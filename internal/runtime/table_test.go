package runtime

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(&domain.Config{States: []domain.StateConfig{
		{ID: "A", Transitions: []domain.TransitionConfig{
			{Message: "z", Action: "last", Next: "B"},
			{Message: "a", Action: "first", Next: "A"},
		}},
		{ID: "B", Transitions: []domain.TransitionConfig{{Message: "a", Next: "A"}}},
		{ID: "C"},
	}})
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, []domain.StateID{"A", "B", "C"}, table.States())
	assert.Equal(t, domain.StateID("A"), table.Current())
	assert.True(t, table.Has("C"))
	assert.False(t, table.Has("D"))

	infos, err := table.Transitions("A")
	require.NoError(t, err)
	assert.Equal(t, []domain.TransitionInfo{
		{Message: "z", Action: "last", Next: "B"},
		{Message: "a", Action: "first", Next: "A"},
	}, infos, "declaration order is kept")

	infos, err = table.Transitions("C")
	require.NoError(t, err)
	assert.Empty(t, infos)

	_, err = table.Transitions("D")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestTable_StatesIsACopy(t *testing.T) {
	table := sampleTable(t)
	ids := table.States()
	ids[0] = "X"
	assert.Equal(t, domain.StateID("A"), table.States()[0])
}

func TestTable_Bind(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, 2, table.bind("a", domain.Always(), nil))
	assert.Equal(t, 1, table.bind("z", domain.Always(), []domain.StateID{"A", "A", "B", "missing"}))
	assert.Equal(t, 0, table.bind("nope", domain.Always(), nil))

	for _, id := range []domain.StateID{"A", "B"} {
		infos, err := table.Transitions(id)
		require.NoError(t, err)
		for _, info := range infos {
			assert.True(t, info.BoundAction, "%s --%s-->", id, info.Message)
		}
	}

	assert.Equal(t, 1, table.bind("a", nil, []domain.StateID{"B"}))
	s, _ := table.lookup("B")
	assert.Nil(t, s.transitions["a"].bound)
}

func TestTable_StateHooks(t *testing.T) {
	table := sampleTable(t)
	hook := domain.StateHookFunc(func(domain.StateID, any) error { return nil })

	assert.Equal(t, 3, table.setBefore(hook, nil))
	assert.Equal(t, 1, table.setAfter(hook, []domain.StateID{"C", "C", "missing"}))

	for _, s := range table.states {
		assert.NotNil(t, s.before, s.id)
		assert.Equal(t, s.id == "C", s.after != nil, s.id)
	}
}

func TestTable_SetCurrent(t *testing.T) {
	table := sampleTable(t)
	require.NoError(t, table.SetCurrent("C"))
	assert.Equal(t, domain.StateID("C"), table.Current())
	assert.ErrorIs(t, table.SetCurrent("D"), domain.ErrStateNotFound)
	assert.Equal(t, domain.StateID("C"), table.Current())
}
