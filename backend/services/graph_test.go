package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopoSort(t *testing.T) {
	order, ok := topoSort([]uint{4, 3, 2, 1}, []edgePair{{1, 3}, {2, 3}, {3, 4}})
	assert.True(t, ok)
	assert.Equal(t, []uint{1, 2, 3, 4}, order)

	order, ok = topoSort([]uint{1, 2, 5}, []edgePair{{5, 1}})
	assert.True(t, ok)
	assert.Equal(t, []uint{2, 5, 1}, order)

	_, ok = topoSort([]uint{1, 2, 3}, []edgePair{{1, 2}, {2, 3}, {3, 1}})
	assert.False(t, ok)
}

func TestValidateEdges(t *testing.T) {
	nodes := []uint{1, 2, 3}

	assert.NoError(t, validateEdges(nodes, []edgePair{{1, 2}, {1, 3}, {2, 3}}))
	assert.ErrorIs(t, validateEdges(nodes, []edgePair{{1, 1}}), ErrInvalidEdge)
	assert.ErrorIs(t, validateEdges(nodes, []edgePair{{1, 9}}), ErrInvalidEdge)
	assert.ErrorIs(t, validateEdges(nodes, []edgePair{{1, 2}, {1, 2}}), ErrConflict)
	assert.ErrorIs(t, validateEdges(nodes, []edgePair{{1, 2}, {2, 3}, {3, 1}}), ErrCycle)
}
