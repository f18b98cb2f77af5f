package replay

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/contiguous"
	"github.com/dargueta/diskalloc/linked"
	"golang.org/x/sync/errgroup"
)

// DivergenceKind says how two engines disagreed after a step.
type DivergenceKind int

const (
	// StatusMismatch means the same command succeeded, was rejected, or failed
	// differently in the two engines.
	StatusMismatch DivergenceKind = iota
	// AccessMismatch means an access resolved to different positions within
	// the file.
	AccessMismatch
	// SizeMismatch means the engines disagree on which files exist or how big
	// they are.
	SizeMismatch
	// LayoutMismatch means a file occupies different blocks in the two
	// engines. This is expected once the contiguous engine has compacted.
	LayoutMismatch
)

func (k DivergenceKind) String() string {
	switch k {
	case StatusMismatch:
		return "status"
	case AccessMismatch:
		return "access"
	case SizeMismatch:
		return "size"
	case LayoutMismatch:
		return "layout"
	default:
		return "unknown"
	}
}

type Divergence struct {
	Step    int
	Command Command
	Kind    DivergenceKind
	Detail  string
}

func (d Divergence) String() string {
	return fmt.Sprintf("step %d (line %d, %s): %s: %s", d.Step, d.Command.Line, d.Command, d.Kind, d.Detail)
}

// Report is the result of comparing two engines over a workload.
type Report struct {
	Steps       int
	Divergences []Divergence
}

// Equivalent returns true if the engines agreed on everything except the
// physical placement of blocks.
func (r Report) Equivalent() bool {
	for _, divergence := range r.Divergences {
		if divergence.Kind != LayoutMismatch {
			return false
		}
	}
	return true
}

// snapshot is the observable state of an engine after one step.
type snapshot struct {
	outcome Outcome
	table   []diskalloc.FileEntry
	// files holds each file's blocks in file order.
	files map[diskalloc.FileID][]diskalloc.BlockIndex
}

func takeSnapshot(engine diskalloc.Engine, outcome Outcome) snapshot {
	table := engine.Table()
	files := make(map[diskalloc.FileID][]diskalloc.BlockIndex, len(table))
	for _, entry := range table {
		// The table and the blocks come from the same engine, so this can only
		// fail if the engine is broken. A nil block list shows up as a layout
		// mismatch.
		blocks, _ := engine.Blocks(entry.ID)
		files[entry.ID] = blocks
	}
	return snapshot{outcome: outcome, table: table, files: files}
}

func positionInFile(blocks []diskalloc.BlockIndex, block diskalloc.BlockIndex) int {
	for i, b := range blocks {
		if b == block {
			return i
		}
	}
	return -1
}

func sortedCopy(blocks []diskalloc.BlockIndex) []diskalloc.BlockIndex {
	sorted := append([]diskalloc.BlockIndex(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

func diffSnapshots(step int, left, right snapshot) []Divergence {
	command := left.outcome.Command
	divergences := []Divergence{}
	add := func(kind DivergenceKind, format string, args ...interface{}) {
		divergences = append(
			divergences,
			Divergence{Step: step, Command: command, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	if left.outcome.Status != right.outcome.Status {
		add(
			StatusMismatch,
			"contiguous: %s (%v), linked: %s (%v)",
			left.outcome.Status,
			left.outcome.Err,
			right.outcome.Status,
			right.outcome.Err)
	} else if command.Op == diskalloc.OpAccess && left.outcome.Status == diskalloc.Success {
		leftPosition := positionInFile(left.files[left.outcome.FileID], left.outcome.Block)
		rightPosition := positionInFile(right.files[right.outcome.FileID], right.outcome.Block)
		if leftPosition != rightPosition {
			add(
				AccessMismatch,
				"contiguous: block %d of the file, linked: block %d of the file",
				leftPosition,
				rightPosition)
		}
	}

	if len(left.table) != len(right.table) {
		add(SizeMismatch, "contiguous has %d files, linked has %d", len(left.table), len(right.table))
		return divergences
	}

	for i := range left.table {
		l := left.table[i]
		r := right.table[i]
		if l.ID != r.ID || l.BlockCount != r.BlockCount || l.ByteLength != r.ByteLength {
			add(SizeMismatch, "contiguous: %s, linked: %s", l, r)
			continue
		}
		if !reflect.DeepEqual(sortedCopy(left.files[l.ID]), sortedCopy(right.files[r.ID])) {
			add(
				LayoutMismatch,
				"file %d: contiguous %v, linked %v",
				l.ID,
				left.files[l.ID],
				right.files[r.ID])
		}
	}
	return divergences
}

func replayWithSnapshots(
	ctx context.Context, engine diskalloc.Engine, strategy string, metrics *Metrics, commands []Command,
) ([]snapshot, error) {
	snapshots := make([]snapshot, 0, len(commands))
	replayer := NewReplayer(engine, strategy)
	replayer.Metrics = metrics
	replayer.Observe = func(step int, outcome Outcome) {
		snapshots = append(snapshots, takeSnapshot(engine, outcome))
	}

	// Failed commands are part of what's being compared, not an error.
	replayer.Run(ctx, commands)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Compare replays `commands` against a new contiguous engine and a new linked
// engine built from `config`, and reports every step after which they disagree.
// The engines run concurrently, each confined to its own goroutine. `metrics`
// is optional.
func Compare(
	ctx context.Context, config diskalloc.Config, commands []Command, metrics *Metrics,
) (Report, error) {
	contiguousEngine, err := contiguous.New(config)
	if err != nil {
		return Report{}, err
	}
	linkedEngine, err := linked.New(config)
	if err != nil {
		return Report{}, err
	}

	var contiguousSnapshots, linkedSnapshots []snapshot
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		contiguousSnapshots, err = replayWithSnapshots(
			groupCtx, contiguousEngine, "contiguous", metrics, commands)
		return err
	})
	group.Go(func() error {
		var err error
		linkedSnapshots, err = replayWithSnapshots(groupCtx, linkedEngine, "linked", metrics, commands)
		return err
	})
	if err := group.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Steps: len(commands), Divergences: []Divergence{}}
	for step := range contiguousSnapshots {
		report.Divergences = append(
			report.Divergences,
			diffSnapshots(step, contiguousSnapshots[step], linkedSnapshots[step])...)
	}
	return report, nil
}
