package memory

import (
	"slices"

	"github.com/aretw0/waypoint/pkg/domain"
)

func sortedMessages(m map[domain.MessageID]string) []domain.MessageID {
	keys := make([]domain.MessageID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys) // Deterministic order
	return keys
}

func containsState(order []domain.StateID, id domain.StateID) bool {
	return slices.Contains(order, id)
}
