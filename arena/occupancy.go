// Package arena tracks which blocks of a fixed-size arena are in use. It knows
// nothing about who owns a block; that's up to the allocation strategy.

package arena

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/errors"
)

type Occupancy struct {
	inUse       bitmap.Bitmap
	totalBlocks uint32
	usedBlocks  uint32
}

// New creates an occupancy map of `totalBlocks` blocks, all of them free.
func New(totalBlocks uint32) *Occupancy {
	return &Occupancy{
		inUse:       bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
	}
}

func (o *Occupancy) TotalBlocks() uint32 {
	return o.totalBlocks
}

// FreeBlocks gives the number of blocks not marked in use.
func (o *Occupancy) FreeBlocks() uint32 {
	return o.totalBlocks - o.usedBlocks
}

func (o *Occupancy) checkBounds(block diskalloc.BlockIndex) error {
	if uint32(block) >= o.totalBlocks {
		msg := fmt.Sprintf(
			"invalid block index: %d not in range [0, %d)",
			block,
			o.totalBlocks)
		return errors.ErrArgumentOutOfRange.WithMessage(msg)
	}
	return nil
}

// InUse returns true if `block` is marked in use. Out-of-range blocks are never
// in use.
func (o *Occupancy) InUse(block diskalloc.BlockIndex) bool {
	if uint32(block) >= o.totalBlocks {
		return false
	}
	return o.inUse.Get(int(block))
}

// Mark flags a free block as in use. Marking a block that's already in use is
// an invariant violation.
func (o *Occupancy) Mark(block diskalloc.BlockIndex) error {
	if err := o.checkBounds(block); err != nil {
		return err
	}
	if o.inUse.Get(int(block)) {
		msg := fmt.Sprintf("block %d is already in use", block)
		return errors.ErrInvariantViolation.WithMessage(msg)
	}

	o.inUse.Set(int(block), true)
	o.usedBlocks++
	return nil
}

// Clear frees a block that's in use. Trying to free a block that's already free
// is an invariant violation.
func (o *Occupancy) Clear(block diskalloc.BlockIndex) error {
	if err := o.checkBounds(block); err != nil {
		return err
	}
	if !o.inUse.Get(int(block)) {
		msg := fmt.Sprintf("block %d is already free", block)
		return errors.ErrInvariantViolation.WithMessage(msg)
	}

	o.inUse.Set(int(block), false)
	o.usedBlocks--
	return nil
}

// IsFreeRun returns true if all `count` blocks starting at `start` exist and are
// free. A run of zero blocks is always free.
func (o *Occupancy) IsFreeRun(start diskalloc.BlockIndex, count uint32) bool {
	if uint64(start)+uint64(count) > uint64(o.totalBlocks) {
		return false
	}

	for i := uint32(0); i < count; i++ {
		if o.inUse.Get(int(uint32(start) + i)) {
			return false
		}
	}
	return true
}

// FindFreeRun returns the start of the first run of `count` contiguous free
// blocks, scanning in ascending order. The second return value is false if no
// such run exists.
func (o *Occupancy) FindFreeRun(count uint32) (diskalloc.BlockIndex, bool) {
	if count == 0 {
		return 0, true
	}

	runSize := uint32(0)
	runStart := uint32(0)

	for i := uint32(0); i < o.totalBlocks; i++ {
		if o.inUse.Get(int(i)) {
			// We hit an allocated block, so this is the end of the run. Reset
			// the size to 0 and try again.
			runSize = 0
			continue
		}

		if runSize == 0 {
			// First free block in our latest attempt at finding a run.
			runStart = i
		}
		runSize++
		if runSize == count {
			return diskalloc.BlockIndex(runStart), true
		}
	}

	// We ran off the end of the bitmap before we reached the necessary count.
	return 0, false
}

// FindFreeBlocks returns up to `count` free blocks in ascending order. It
// returns fewer if the arena doesn't have that many.
func (o *Occupancy) FindFreeBlocks(count uint32) []diskalloc.BlockIndex {
	found := make([]diskalloc.BlockIndex, 0, count)
	for i := uint32(0); i < o.totalBlocks && uint32(len(found)) < count; i++ {
		if !o.inUse.Get(int(i)) {
			found = append(found, diskalloc.BlockIndex(i))
		}
	}
	return found
}
