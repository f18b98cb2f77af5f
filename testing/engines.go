// Package testing contains helpers shared by the tests of the allocation
// engines and the replay harness. Import it as `alloctest`.
package testing

import (
	"sort"
	"testing"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/contiguous"
	"github.com/dargueta/diskalloc/linked"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// EngineFactory creates an engine of one strategy from a configuration.
type EngineFactory func(config diskalloc.Config) (diskalloc.Engine, error)

// Strategy pairs a strategy name with its factory.
type Strategy struct {
	Name string
	New  EngineFactory
}

// Strategies lists every allocation strategy in the module.
var Strategies = []Strategy{
	{
		Name: "contiguous",
		New: func(config diskalloc.Config) (diskalloc.Engine, error) {
			return contiguous.New(config)
		},
	},
	{
		Name: "linked",
		New: func(config diskalloc.Config) (diskalloc.Engine, error) {
			return linked.New(config)
		},
	},
}

// ForEachStrategy runs `test` as a subtest once per strategy, each time with a
// fresh engine of `totalBlocks` blocks of `bytesPerBlock` bytes.
func ForEachStrategy(
	t *testing.T,
	totalBlocks,
	bytesPerBlock uint32,
	test func(t *testing.T, engine diskalloc.Engine),
) {
	for _, strategy := range Strategies {
		strategy := strategy
		t.Run(
			strategy.Name,
			func(tSub *testing.T) {
				engine, err := strategy.New(
					diskalloc.Config{TotalBlocks: totalBlocks, BytesPerBlock: bytesPerBlock})
				require.NoError(tSub, err, "failed to create engine")
				test(tSub, engine)
			},
		)
	}
}

// OwnerSets returns the sorted block indices of every file in the engine.
func OwnerSets(t *testing.T, engine diskalloc.Engine) map[diskalloc.FileID][]diskalloc.BlockIndex {
	sets := make(map[diskalloc.FileID][]diskalloc.BlockIndex)
	for _, entry := range engine.Table() {
		blocks, err := engine.Blocks(entry.ID)
		require.NoErrorf(t, err, "failed to get blocks of file %d", entry.ID)

		sorted := append([]diskalloc.BlockIndex(nil), blocks...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		sets[entry.ID] = sorted
	}
	return sets
}

// AssertConsistent checks the invariants every engine must hold between
// operations:
//
//   - Free space plus the blocks of every file equals the arena size.
//   - Each file has exactly ceil(ByteLength / BytesPerBlock) blocks.
//   - The blocks marked in use are exactly the union of all files' blocks, and
//     no block belongs to two files.
func AssertConsistent(t *testing.T, engine diskalloc.Engine) {
	t.Helper()

	table := engine.Table()
	slice := engine.Slice(0, diskalloc.BlockIndex(engine.TotalBlocks()))
	require.Len(t, slice, int(engine.TotalBlocks()), "slice dump has the wrong length")

	totalFileBlocks := uint64(0)
	expectedOwners := make([]diskalloc.BlockOwner, len(slice))

	for _, entry := range table {
		totalFileBlocks += uint64(entry.BlockCount)

		expectedBlocks := (uint64(entry.ByteLength) + uint64(engine.BytesPerBlock()) - 1) /
			uint64(engine.BytesPerBlock())
		assert.EqualValuesf(
			t, expectedBlocks, entry.BlockCount, "file %d has the wrong block count", entry.ID)

		blocks, err := engine.Blocks(entry.ID)
		if !assert.NoErrorf(t, err, "failed to get blocks of file %d", entry.ID) {
			continue
		}
		assert.Lenf(t, blocks, int(entry.BlockCount), "file %d chain length is wrong", entry.ID)
		if len(blocks) > 0 {
			assert.Equalf(t, entry.Start, blocks[0], "file %d starts at the wrong block", entry.ID)
		}

		for _, block := range blocks {
			if !assert.Lessf(t, int(block), len(slice), "file %d has block out of range", entry.ID) {
				continue
			}
			assert.Falsef(
				t,
				expectedOwners[block].InUse,
				"block %d belongs to both file %d and file %d",
				block,
				expectedOwners[block].ID,
				entry.ID,
			)
			expectedOwners[block] = diskalloc.OwnedBy(entry.ID)
		}
	}

	assert.EqualValues(
		t,
		engine.TotalBlocks(),
		uint64(engine.AvailableSpace())+totalFileBlocks,
		"available space plus file blocks doesn't equal the arena size",
	)
	assert.Equal(t, expectedOwners, slice, "slice dump doesn't match the directory table")
}
