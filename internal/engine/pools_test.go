package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}
	return items
}

func TestAllocatePoolsDisjoint(t *testing.T) {
	eng := newTestEngine(9)
	items := testItems(50)

	pools, err := eng.AllocatePools(items, 4, 3)
	require.NoError(t, err)
	require.Len(t, pools, 4)

	seen := make(map[string]bool)
	for _, pool := range pools {
		require.Len(t, pool, 3)
		for _, item := range pool {
			assert.False(t, seen[item], "item %s assigned twice", item)
			assert.Contains(t, items, item)
			seen[item] = true
		}
	}
	// 50 items, 12 assigned; the rest stay unassigned.
	assert.Len(t, seen, 12)
}

func TestAllocatePoolsExactFit(t *testing.T) {
	eng := newTestEngine(9)

	pools, err := eng.AllocatePools(testItems(6), 2, 3)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Len(t, pools[0], 3)
	assert.Len(t, pools[1], 3)
}

func TestAllocatePoolsInsufficient(t *testing.T) {
	eng := newTestEngine(9)

	pools, err := eng.AllocatePools(testItems(5), 2, 3)
	assert.ErrorIs(t, err, ErrInsufficientItems)
	assert.Nil(t, pools)
}

func TestAllocatePoolsDeterministicWithSeed(t *testing.T) {
	items := testItems(20)

	first, err := newTestEngine(11).AllocatePools(items, 3, 4)
	require.NoError(t, err)
	second, err := newTestEngine(11).AllocatePools(items, 3, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAllocatePoolsDoesNotMutateInput(t *testing.T) {
	eng := newTestEngine(13)
	items := testItems(10)
	original := append([]string(nil), items...)

	_, err := eng.AllocatePools(items, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, original, items)
}
