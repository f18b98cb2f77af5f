package replay_test

import (
	"context"
	"testing"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The contiguous engine puts file 2 after file 1, while the linked engine fills
// the two-block hole file 0 left behind.
const fragmentingWorkload = `c:32
a:0:30
e:0:2
c:32
sh:0:2
c:64
e:2:32748
a:2:9
`

func TestCompare__NoFragmentation(t *testing.T) {
	config := diskalloc.Config{TotalBlocks: 64, BytesPerBlock: 8}
	commands := loadCommands(t, "c:32\nc:40\ne:1:3\na:1:12\nsh:1:2\nc:8\na:0:30\n")

	report, err := replay.Compare(context.Background(), config, commands, nil)
	require.NoError(t, err)
	assert.Equal(t, len(commands), report.Steps)
	assert.Empty(t, report.Divergences)
	assert.True(t, report.Equivalent())
}

func TestCompare__LayoutOnlyDivergence(t *testing.T) {
	config := diskalloc.Config{TotalBlocks: 32768, BytesPerBlock: 8}
	commands := loadCommands(t, fragmentingWorkload)

	report, err := replay.Compare(context.Background(), config, commands, nil)
	require.NoError(t, err)
	require.NotEmpty(t, report.Divergences)
	assert.True(t, report.Equivalent(), "only layouts should differ: %v", report.Divergences)

	first := report.Divergences[0]
	assert.Equal(t, 5, first.Step)
	assert.Equal(t, replay.LayoutMismatch, first.Kind)
	assert.Equal(t, diskalloc.OpCreate, first.Command.Op)
}

func TestCompare__CompactionKeepsStatuses(t *testing.T) {
	// The contiguous engine has to compact to place the four-block file. The
	// linked engine uses the hole and the last block directly.
	config := diskalloc.Config{TotalBlocks: 10, BytesPerBlock: 1}
	commands := loadCommands(t, "c:3\nc:3\nc:3\nsh:1:3\nc:4\nc:1\n")

	report, err := replay.Compare(context.Background(), config, commands, nil)
	require.NoError(t, err)
	assert.True(t, report.Equivalent(), "divergences: %v", report.Divergences)
}

func TestCompare__Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := replay.Compare(
		ctx, diskalloc.Config{TotalBlocks: 8, BytesPerBlock: 8}, loadCommands(t, "c:8\n"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompare__InvalidConfig(t *testing.T) {
	_, err := replay.Compare(context.Background(), diskalloc.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestReport__Equivalent(t *testing.T) {
	report := replay.Report{
		Divergences: []replay.Divergence{{Kind: replay.LayoutMismatch}, {Kind: replay.LayoutMismatch}},
	}
	assert.True(t, report.Equivalent())

	report.Divergences = append(report.Divergences, replay.Divergence{Kind: replay.SizeMismatch})
	assert.False(t, report.Equivalent())
	assert.True(t, replay.Report{}.Equivalent())
}

func TestDivergenceString(t *testing.T) {
	divergence := replay.Divergence{
		Step:    4,
		Command: replay.Command{Op: diskalloc.OpExtend, Line: 7, FileIndex: 1, Argument: 3},
		Kind:    replay.StatusMismatch,
		Detail:  "details",
	}
	assert.Equal(t, "step 4 (line 7, e:1:3): status: details", divergence.String())
	assert.Equal(t, "unknown", replay.DivergenceKind(99).String())
}
