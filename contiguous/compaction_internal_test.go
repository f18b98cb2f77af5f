package contiguous

import (
	"testing"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, totalBlocks uint32, lengths ...uint32) *Engine {
	engine, err := New(diskalloc.Config{TotalBlocks: totalBlocks, BytesPerBlock: 1})
	require.NoError(t, err)
	for i, length := range lengths {
		require.NoError(t, engine.CreateFile(diskalloc.FileID(i+1), length))
	}
	return engine
}

func ownerIDs(engine *Engine) []int {
	ids := make([]int, 0, engine.TotalBlocks())
	for _, owner := range engine.Slice(0, diskalloc.BlockIndex(engine.TotalBlocks())) {
		if owner.InUse {
			ids = append(ids, int(owner.ID))
		} else {
			ids = append(ids, 0)
		}
	}
	return ids
}

func TestMove__OverlappingForward(t *testing.T) {
	engine := newTestEngine(t, 8, 3)
	require.NoError(t, engine.move(1, 2))
	assert.Equal(t, []int{0, 0, 1, 1, 1, 0, 0, 0}, ownerIDs(engine))

	record, err := engine.table.Get(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, record.Start)
	assert.EqualValues(t, 5, engine.occupancy.FreeBlocks())
}

func TestMove__OverlappingBackward(t *testing.T) {
	engine := newTestEngine(t, 8, 1, 3)
	require.NoError(t, engine.Shrink(1, 1))
	require.NoError(t, engine.move(2, 0))
	assert.Equal(t, []int{2, 2, 2, 0, 0, 0, 0, 0}, ownerIDs(engine))
}

func TestMove__SameStartIsNoop(t *testing.T) {
	engine := newTestEngine(t, 4, 2)
	require.NoError(t, engine.move(1, 0))
	assert.Equal(t, []int{1, 1, 0, 0}, ownerIDs(engine))
}

func TestMove__DestinationOccupied(t *testing.T) {
	engine := newTestEngine(t, 8, 2, 2)
	err := engine.move(1, 1)
	assert.ErrorIs(t, err, errors.ErrDestinationOccupied)
	assert.Equal(t, []int{1, 1, 2, 2, 0, 0, 0, 0}, ownerIDs(engine), "failed move changed the arena")
}

func TestMove__PastEnd(t *testing.T) {
	engine := newTestEngine(t, 8, 3)
	assert.ErrorIs(t, engine.move(1, 6), errors.ErrArgumentOutOfRange)
}

func TestMove__MissingFile(t *testing.T) {
	engine := newTestEngine(t, 8)
	assert.ErrorIs(t, engine.move(5, 0), errors.ErrNotFound)
}

func TestFill__OccupiedBlocksFail(t *testing.T) {
	engine := newTestEngine(t, 4, 2)
	assert.ErrorIs(t, engine.fill(9, 1, 2), errors.ErrInvariantViolation)
	assert.Equal(t, []int{1, 1, 0, 0}, ownerIDs(engine))
}

func TestRelease__WrongOwnerFails(t *testing.T) {
	engine := newTestEngine(t, 4, 2, 1)
	assert.ErrorIs(t, engine.release(1, 1, 2), errors.ErrInvariantViolation)
	assert.Equal(t, []int{1, 1, 2, 0}, ownerIDs(engine))
}

func TestCreateFile__RollbackOnFillFailure(t *testing.T) {
	engine := newTestEngine(t, 4)
	// Corrupt the arena: block 0 is marked in use but belongs to no file, while
	// the free counter says everything is free.
	require.NoError(t, engine.occupancy.Mark(0))

	err := engine.CreateFile(1, 4)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
	assert.False(t, engine.table.Exists(1), "failed create left a directory entry")
	assert.EqualValues(t, 4, engine.AvailableSpace())
}
