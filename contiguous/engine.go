package contiguous

import (
	"fmt"
	"math"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/arena"
	"github.com/dargueta/diskalloc/directory"
	"github.com/dargueta/diskalloc/errors"
)

// ExtendPolicy controls what Extend does with the hole a relocated file leaves
// behind.
type ExtendPolicy int

const (
	// RecompactAfterExtend runs a second compaction pass from the relocated
	// file's old start, so that free space stays in one region.
	RecompactAfterExtend ExtendPolicy = iota
	// SingleCompactionExtend leaves the hole for later allocations to use.
	SingleCompactionExtend
)

// Engine is a contiguous allocation arena. The zero value isn't usable; create
// engines with [New].
type Engine struct {
	config       diskalloc.Config
	diagnostics  diskalloc.Diagnostics
	table        *directory.Table
	occupancy    *arena.Occupancy
	owners       []diskalloc.FileID
	available    uint32
	extendPolicy ExtendPolicy
}

var _ diskalloc.Engine = (*Engine)(nil)

func New(config diskalloc.Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config:      config,
		diagnostics: config.DiagnosticsOrDefault(),
		table:       directory.New(),
		occupancy:   arena.New(config.TotalBlocks),
		owners:      make([]diskalloc.FileID, config.TotalBlocks),
		available:   config.TotalBlocks,
	}, nil
}

// SetExtendPolicy changes how future calls to Extend relocate files.
func (e *Engine) SetExtendPolicy(policy ExtendPolicy) {
	e.extendPolicy = policy
}

func (e *Engine) AvailableSpace() uint32 {
	return e.available
}

func (e *Engine) TotalBlocks() uint32 {
	return e.config.TotalBlocks
}

func (e *Engine) BytesPerBlock() uint32 {
	return e.config.BytesPerBlock
}

func (e *Engine) report(op diskalloc.Operation, id diskalloc.FileID, err error) error {
	if err != nil {
		e.diagnostics.OperationFailed(op, id, err)
	}
	return err
}

func (e *Engine) CreateFile(id diskalloc.FileID, byteLength uint32) error {
	return e.report(diskalloc.OpCreate, id, e.createFile(id, byteLength))
}

func (e *Engine) createFile(id diskalloc.FileID, byteLength uint32) error {
	if e.table.Exists(id) {
		return errors.ErrExists.WithMessage(fmt.Sprintf("file %d", id))
	}

	need := e.config.BlocksForBytes(byteLength)
	if need == 0 {
		return errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("file %d must occupy at least one block", id))
	}
	if need > e.available {
		return errors.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("file %d needs %d blocks, %d available", id, need, e.available))
	}

	start, found := e.occupancy.FindFreeRun(need)
	if !found {
		// There's enough space in total, so once everything is packed toward
		// the beginning the free region at the end is guaranteed to be large
		// enough.
		if err := e.ApplyCompaction(0); err != nil {
			return err
		}
		start = e.frontier()
	}

	record := directory.Record{Start: start, BlockCount: need, ByteLength: byteLength}
	if err := e.table.Add(id, record); err != nil {
		return err
	}
	if err := e.fill(id, start, need); err != nil {
		// The record was added just above, so removing it can't fail.
		e.table.Remove(id)
		return err
	}

	e.available -= need
	return nil
}

func (e *Engine) Access(id diskalloc.FileID, byteOffset uint32) (diskalloc.BlockIndex, error) {
	block, err := e.access(id, byteOffset)
	return block, e.report(diskalloc.OpAccess, id, err)
}

func (e *Engine) access(id diskalloc.FileID, byteOffset uint32) (diskalloc.BlockIndex, error) {
	record, err := e.table.Get(id)
	if err != nil {
		return 0, err
	}
	if byteOffset > record.ByteLength {
		return 0, errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"offset %d is past the end of file %d (%d bytes)",
				byteOffset,
				id,
				record.ByteLength,
			),
		)
	}
	return record.Start + diskalloc.BlockIndex(e.config.BlockOffset(byteOffset)), nil
}

func (e *Engine) Extend(id diskalloc.FileID, blocks uint32) error {
	return e.report(diskalloc.OpExtend, id, e.extend(id, blocks))
}

func (e *Engine) extend(id diskalloc.FileID, amount uint32) error {
	if amount == 0 {
		return errors.ErrInvalidArgument.WithMessage("can't extend a file by zero blocks")
	}

	record, err := e.table.Get(id)
	if err != nil {
		return err
	}
	if amount > e.available {
		return errors.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("can't extend file %d by %d blocks, %d available", id, amount, e.available))
	}

	newByteLength := uint64(record.ByteLength) + uint64(amount)*uint64(e.config.BytesPerBlock)
	if newByteLength > math.MaxUint32 {
		return errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf("file %d would grow to %d bytes", id, newByteLength))
	}

	if e.canExtend(record, amount) {
		err = e.grow(id, amount)
	} else {
		err = e.extendByRelocation(id, amount)
	}
	if err != nil {
		return err
	}

	e.available -= amount
	return e.table.UpdateByteLength(id, uint32(newByteLength))
}

// canExtend returns true if the `amount` blocks right after the file's run are
// free.
func (e *Engine) canExtend(record directory.Record, amount uint32) bool {
	return e.occupancy.IsFreeRun(record.Start+diskalloc.BlockIndex(record.BlockCount), amount)
}

// grow gives a file the `amount` blocks right after its run and records the new
// block count. The byte length is left to the caller.
func (e *Engine) grow(id diskalloc.FileID, amount uint32) error {
	record, err := e.table.Get(id)
	if err != nil {
		return err
	}
	if err := e.fill(id, record.Start+diskalloc.BlockIndex(record.BlockCount), amount); err != nil {
		return err
	}
	return e.table.UpdateBlockLength(id, record.BlockCount+amount)
}

// extendByRelocation appends `amount` blocks to a file whose run can't grow in
// place.
func (e *Engine) extendByRelocation(id diskalloc.FileID, amount uint32) error {
	if err := e.ApplyCompaction(0); err != nil {
		return err
	}

	record, err := e.table.Get(id)
	if err != nil {
		return err
	}
	count := record.BlockCount

	// The file may have been the last one in the arena.
	if e.canExtend(record, amount) {
		return e.grow(id, amount)
	}

	oldStart := record.Start
	if uint64(count)+uint64(amount) <= uint64(e.available) {
		if err := e.move(id, e.frontier()); err != nil {
			return err
		}
		if err := e.grow(id, amount); err != nil {
			return err
		}
		if e.extendPolicy == RecompactAfterExtend {
			return e.ApplyCompaction(oldStart)
		}
		return nil
	}

	// The free region can't hold a second copy of the file plus the new blocks.
	// Take the file out of the arena, close up the space it occupied, and put
	// it back at the new frontier. Nothing after the release can fail unless
	// the arena and the table already disagree, in which case the file is
	// left without blocks and the invariant error is returned.
	if err := e.release(id, oldStart, count); err != nil {
		return err
	}
	if err := e.ApplyCompaction(oldStart); err != nil {
		return err
	}

	newStart := diskalloc.BlockIndex(e.config.TotalBlocks - e.available - count)
	if err := e.fill(id, newStart, count); err != nil {
		return err
	}
	if err := e.table.UpdateStart(id, newStart); err != nil {
		return err
	}
	return e.grow(id, amount)
}

func (e *Engine) Shrink(id diskalloc.FileID, blocks uint32) error {
	return e.report(diskalloc.OpShrink, id, e.shrink(id, blocks))
}

func (e *Engine) shrink(id diskalloc.FileID, amount uint32) error {
	if amount == 0 {
		return errors.ErrInvalidArgument.WithMessage("can't shrink a file by zero blocks")
	}

	record, err := e.table.Get(id)
	if err != nil {
		return err
	}
	if amount > record.BlockCount {
		return errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"can't shrink file %d by %d blocks, it only has %d",
				id,
				amount,
				record.BlockCount,
			),
		)
	}

	remaining := record.BlockCount - amount
	if err := e.release(id, record.Start+diskalloc.BlockIndex(remaining), amount); err != nil {
		return err
	}

	e.available += amount
	if remaining == 0 {
		return e.table.Remove(id)
	}
	freedBytes := uint64(amount) * uint64(e.config.BytesPerBlock)
	return e.table.Resize(id, remaining, uint32(uint64(record.ByteLength)-freedBytes))
}

func (e *Engine) Blocks(id diskalloc.FileID) ([]diskalloc.BlockIndex, error) {
	record, err := e.table.Get(id)
	if err != nil {
		return nil, err
	}

	blocks := make([]diskalloc.BlockIndex, record.BlockCount)
	for i := range blocks {
		blocks[i] = record.Start + diskalloc.BlockIndex(i)
	}
	return blocks, nil
}

func (e *Engine) Slice(start, end diskalloc.BlockIndex) []diskalloc.BlockOwner {
	if uint32(end) > e.config.TotalBlocks {
		end = diskalloc.BlockIndex(e.config.TotalBlocks)
	}
	if start >= end {
		return []diskalloc.BlockOwner{}
	}

	owners := make([]diskalloc.BlockOwner, 0, end-start)
	for i := start; i < end; i++ {
		if e.occupancy.InUse(i) {
			owners = append(owners, diskalloc.OwnedBy(e.owners[i]))
		} else {
			owners = append(owners, diskalloc.EmptyBlock)
		}
	}
	return owners
}

func (e *Engine) Table() []diskalloc.FileEntry {
	return e.table.Entries()
}

// frontier gives the first block of the free region at the end of a compacted
// arena.
func (e *Engine) frontier() diskalloc.BlockIndex {
	return diskalloc.BlockIndex(e.config.TotalBlocks - e.available)
}

// fill assigns `count` free blocks starting at `start` to a file. If any of them
// are in use, nothing is modified.
func (e *Engine) fill(id diskalloc.FileID, start diskalloc.BlockIndex, count uint32) error {
	if !e.occupancy.IsFreeRun(start, count) {
		return errors.ErrInvariantViolation.WithMessage(
			fmt.Sprintf(
				"can't give file %d blocks [%d, %d): not all of them are free",
				id,
				start,
				uint64(start)+uint64(count),
			),
		)
	}

	for i := uint32(0); i < count; i++ {
		block := start + diskalloc.BlockIndex(i)
		if err := e.occupancy.Mark(block); err != nil {
			return err
		}
		e.owners[block] = id
	}
	return nil
}

// release frees `count` blocks starting at `start`, all of which must belong to
// file `id`.
func (e *Engine) release(id diskalloc.FileID, start diskalloc.BlockIndex, count uint32) error {
	for i := uint32(0); i < count; i++ {
		block := start + diskalloc.BlockIndex(i)
		if !e.occupancy.InUse(block) || e.owners[block] != id {
			return errors.ErrInvariantViolation.WithMessage(
				fmt.Sprintf("block %d doesn't belong to file %d", block, id))
		}
	}

	for i := uint32(0); i < count; i++ {
		block := start + diskalloc.BlockIndex(i)
		if err := e.occupancy.Clear(block); err != nil {
			return err
		}
		e.owners[block] = 0
	}
	return nil
}
