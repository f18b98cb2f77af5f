package arena_test

import (
	"testing"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/arena"
	"github.com/dargueta/diskalloc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markAll(t *testing.T, o *arena.Occupancy, blocks ...diskalloc.BlockIndex) {
	for _, block := range blocks {
		require.NoErrorf(t, o.Mark(block), "failed to mark block %d", block)
	}
}

func TestOccupancy__MarkClear(t *testing.T) {
	o := arena.New(16)
	assert.EqualValues(t, 16, o.FreeBlocks())

	markAll(t, o, 0, 5, 15)
	assert.EqualValues(t, 13, o.FreeBlocks())
	assert.True(t, o.InUse(5))
	assert.False(t, o.InUse(6))

	assert.ErrorIs(t, o.Mark(5), errors.ErrInvariantViolation, "double mark must fail")
	assert.EqualValues(t, 13, o.FreeBlocks(), "failed mark changed the counter")

	require.NoError(t, o.Clear(5))
	assert.ErrorIs(t, o.Clear(5), errors.ErrInvariantViolation, "double clear must fail")
	assert.EqualValues(t, 14, o.FreeBlocks())
}

func TestOccupancy__OutOfBounds(t *testing.T) {
	o := arena.New(8)
	assert.ErrorIs(t, o.Mark(8), errors.ErrArgumentOutOfRange)
	assert.ErrorIs(t, o.Clear(100), errors.ErrArgumentOutOfRange)
	assert.False(t, o.InUse(8))
	assert.False(t, o.IsFreeRun(6, 3), "run extends past the end of the arena")
	assert.True(t, o.IsFreeRun(6, 2))
	assert.True(t, o.IsFreeRun(8, 0))
}

func TestOccupancy__FindFreeRun(t *testing.T) {
	o := arena.New(12)
	// Layout: X . . X . . . X . . . .
	markAll(t, o, 0, 3, 7)

	start, ok := o.FindFreeRun(1)
	assert.True(t, ok)
	assert.EqualValues(t, 1, start)

	start, ok = o.FindFreeRun(2)
	assert.True(t, ok)
	assert.EqualValues(t, 1, start)

	start, ok = o.FindFreeRun(3)
	assert.True(t, ok)
	assert.EqualValues(t, 4, start)

	start, ok = o.FindFreeRun(4)
	assert.True(t, ok)
	assert.EqualValues(t, 8, start)

	_, ok = o.FindFreeRun(5)
	assert.False(t, ok, "there's no run of 5 free blocks even though 9 are free")
}

func TestOccupancy__FindFreeBlocks(t *testing.T) {
	o := arena.New(8)
	markAll(t, o, 1, 2, 4)

	assert.Equal(t, []diskalloc.BlockIndex{0, 3, 5}, o.FindFreeBlocks(3))
	assert.Equal(t, []diskalloc.BlockIndex{0, 3, 5, 6, 7}, o.FindFreeBlocks(10))
	assert.Empty(t, o.FindFreeBlocks(0))
}
