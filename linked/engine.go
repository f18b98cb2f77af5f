// Package linked implements linked allocation: every file is a singly linked
// chain of blocks that can be anywhere in the arena. Free space never needs
// compacting, but finding a byte offset, the end of a file, or the place to
// cut it means walking the chain from its first block.
package linked

import (
	"fmt"
	"math"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/arena"
	"github.com/dargueta/diskalloc/directory"
	"github.com/dargueta/diskalloc/errors"
)

type node struct {
	owner diskalloc.FileID
	next  Link
}

type Engine struct {
	config      diskalloc.Config
	diagnostics diskalloc.Diagnostics
	table       *directory.Table
	occupancy   *arena.Occupancy
	nodes       []node
	available   uint32
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
		nodes:       make([]node, config.TotalBlocks),
		available:   config.TotalBlocks,
	}, nil
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

	slots, err := e.findFreeSlots(need)
	if err != nil {
		return err
	}

	record := directory.Record{Start: slots[0], BlockCount: need, ByteLength: byteLength}
	if err := e.table.Add(id, record); err != nil {
		return err
	}
	if err := e.chain(id, slots); err != nil {
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

	// Every block we step past accounts for BytesPerBlock bytes of the offset.
	hops := uint32(0)
	for remaining := byteOffset; remaining > e.config.BytesPerBlock; remaining -= e.config.BytesPerBlock {
		hops++
	}
	return e.walk(id, record, hops)
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

	tail, err := e.walk(id, record, record.BlockCount-1)
	if err != nil {
		return err
	}
	slots, err := e.findFreeSlots(amount)
	if err != nil {
		return err
	}
	if err := e.chain(id, slots); err != nil {
		return err
	}
	e.nodes[tail].next = LinkTo(slots[0])

	e.available -= amount
	return e.table.Resize(id, record.BlockCount+amount, uint32(newByteLength))
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
	if remaining == 0 {
		if _, err := e.freeChain(id, LinkTo(record.Start)); err != nil {
			return err
		}
		e.available += amount
		return e.table.Remove(id)
	}

	cut, err := e.walk(id, record, remaining-1)
	if err != nil {
		return err
	}
	rest := e.nodes[cut].next
	e.nodes[cut].next = End

	freed, err := e.freeChain(id, rest)
	if err != nil {
		return err
	}
	if freed != amount {
		return errors.ErrInvariantViolation.WithMessage(
			fmt.Sprintf("file %d: expected to free %d blocks, freed %d", id, amount, freed))
	}

	freedBytes := uint64(amount) * uint64(e.config.BytesPerBlock)
	e.available += amount
	return e.table.Resize(id, remaining, uint32(uint64(record.ByteLength)-freedBytes))
}

func (e *Engine) Blocks(id diskalloc.FileID) ([]diskalloc.BlockIndex, error) {
	record, err := e.table.Get(id)
	if err != nil {
		return nil, err
	}

	blocks := make([]diskalloc.BlockIndex, 0, record.BlockCount)
	current := LinkTo(record.Start)
	for {
		block, ok := current.Index()
		if !ok {
			break
		}
		if uint32(len(blocks)) == record.BlockCount {
			return nil, errors.ErrInvariantViolation.WithMessage(
				fmt.Sprintf("chain of file %d is longer than %d blocks", id, record.BlockCount))
		}
		blocks = append(blocks, block)
		current = e.nodes[block].next
	}

	if uint32(len(blocks)) != record.BlockCount {
		return nil, errors.ErrInvariantViolation.WithMessage(
			fmt.Sprintf(
				"chain of file %d has %d blocks, expected %d",
				id,
				len(blocks),
				record.BlockCount,
			),
		)
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
			owners = append(owners, diskalloc.OwnedBy(e.nodes[i].owner))
		} else {
			owners = append(owners, diskalloc.EmptyBlock)
		}
	}
	return owners
}

// Links returns the next pointer of every node in [start, end), clamped to the
// arena like [Engine.Slice].
func (e *Engine) Links(start, end diskalloc.BlockIndex) []Link {
	if uint32(end) > e.config.TotalBlocks {
		end = diskalloc.BlockIndex(e.config.TotalBlocks)
	}
	if start >= end {
		return []Link{}
	}

	links := make([]Link, 0, end-start)
	for i := start; i < end; i++ {
		links = append(links, e.nodes[i].next)
	}
	return links
}

func (e *Engine) Table() []diskalloc.FileEntry {
	return e.table.Entries()
}

// findFreeSlots returns the first `count` free blocks in ascending order.
func (e *Engine) findFreeSlots(count uint32) ([]diskalloc.BlockIndex, error) {
	slots := e.occupancy.FindFreeBlocks(count)
	if uint32(len(slots)) < count {
		return nil, errors.ErrSlotShortfall.WithMessage(
			fmt.Sprintf(
				"needed %d free blocks but only found %d; %d should be available",
				count,
				len(slots),
				e.available,
			),
		)
	}
	return slots, nil
}

// chain gives every block in `slots` to file `id`, linking them in the order
// given. The last block's link is [End].
func (e *Engine) chain(id diskalloc.FileID, slots []diskalloc.BlockIndex) error {
	for i, block := range slots {
		if err := e.occupancy.Mark(block); err != nil {
			return err
		}

		next := End
		if i+1 < len(slots) {
			next = LinkTo(slots[i+1])
		}
		e.nodes[block] = node{owner: id, next: next}
	}
	return nil
}

// walk follows `hops` links from the start of a file and returns the block it
// lands on.
func (e *Engine) walk(
	id diskalloc.FileID, record directory.Record, hops uint32,
) (diskalloc.BlockIndex, error) {
	current := record.Start
	for i := uint32(0); i < hops; i++ {
		next, ok := e.nodes[current].next.Index()
		if !ok {
			return 0, errors.ErrInvariantViolation.WithMessage(
				fmt.Sprintf(
					"chain of file %d ends after %d blocks, expected %d",
					id,
					i+1,
					record.BlockCount,
				),
			)
		}
		current = next
	}

	if !e.occupancy.InUse(current) || e.nodes[current].owner != id {
		return 0, errors.ErrInvariantViolation.WithMessage(
			fmt.Sprintf("block %d is in the chain of file %d but doesn't belong to it", current, id))
	}
	return current, nil
}

// freeChain releases every block from `head` to the end of its chain and
// returns how many it freed.
func (e *Engine) freeChain(id diskalloc.FileID, head Link) (uint32, error) {
	freed := uint32(0)
	current := head

	for {
		block, ok := current.Index()
		if !ok {
			return freed, nil
		}
		if e.nodes[block].owner != id {
			return freed, errors.ErrInvariantViolation.WithMessage(
				fmt.Sprintf("block %d is in the chain of file %d but doesn't belong to it", block, id))
		}
		if err := e.occupancy.Clear(block); err != nil {
			return freed, err
		}

		current = e.nodes[block].next
		e.nodes[block] = node{}
		freed++
	}
}
