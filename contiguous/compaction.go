package contiguous

import (
	"fmt"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/errors"
)

// ApplyCompaction slides every file that starts at or after block `from` toward
// `from`, keeping their order, so that all free blocks in [from, end) end up in
// one region at the end of the arena. A file whose run straddles `from` stays
// where it is. Compacting an arena that's already compact changes nothing.
func (e *Engine) ApplyCompaction(from diskalloc.BlockIndex) error {
	total := e.config.TotalBlocks
	cursor := uint32(from)
	filesMoved := 0

	for i := uint32(from); i < total; {
		if !e.occupancy.InUse(diskalloc.BlockIndex(i)) {
			i++
			continue
		}

		id := e.owners[i]
		record, ok := e.table.Lookup(id)
		if !ok {
			return errors.ErrInvariantViolation.WithMessage(
				fmt.Sprintf("block %d belongs to file %d, which doesn't exist", i, id))
		}

		end := uint32(record.Start) + record.BlockCount
		if uint32(record.Start) != i {
			if uint32(record.Start) < uint32(from) {
				// Run began before the compaction window; leave it be.
				cursor = end
				i = end
				continue
			}
			return errors.ErrInvariantViolation.WithMessage(
				fmt.Sprintf(
					"block %d is in the middle of file %d, which starts at %d",
					i,
					id,
					record.Start,
				),
			)
		}

		if i != cursor {
			if err := e.move(id, diskalloc.BlockIndex(cursor)); err != nil {
				return err
			}
			filesMoved++
		}
		i = end
		cursor += record.BlockCount
	}

	e.diagnostics.Compacted(from, filesMoved)
	return nil
}

func inRun(block, start diskalloc.BlockIndex, count uint32) bool {
	return block >= start && uint64(block) < uint64(start)+uint64(count)
}

// move relocates a file's run so that it begins at `newStart`. Every block in
// the destination must be free or already belong to the file. The source and
// destination may overlap.
func (e *Engine) move(id diskalloc.FileID, newStart diskalloc.BlockIndex) error {
	record, err := e.table.Get(id)
	if err != nil {
		return err
	}
	if newStart == record.Start {
		return nil
	}

	count := record.BlockCount
	if uint64(newStart)+uint64(count) > uint64(e.config.TotalBlocks) {
		return errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"can't move file %d to block %d: run of %d blocks would pass the end",
				id,
				newStart,
				count,
			),
		)
	}

	for i := uint32(0); i < count; i++ {
		block := newStart + diskalloc.BlockIndex(i)
		if e.occupancy.InUse(block) && e.owners[block] != id {
			return errors.ErrDestinationOccupied.WithMessage(
				fmt.Sprintf(
					"can't move file %d to block %d: block %d belongs to file %d",
					id,
					newStart,
					block,
					e.owners[block],
				),
			)
		}
	}

	// Blocks hold nothing but their owner, so a move is the same as giving up
	// the source blocks the destination doesn't cover and claiming the
	// destination blocks the source doesn't cover.
	for i := uint32(0); i < count; i++ {
		block := record.Start + diskalloc.BlockIndex(i)
		if inRun(block, newStart, count) {
			continue
		}
		if err := e.occupancy.Clear(block); err != nil {
			return err
		}
		e.owners[block] = 0
	}

	for i := uint32(0); i < count; i++ {
		block := newStart + diskalloc.BlockIndex(i)
		if inRun(block, record.Start, count) {
			continue
		}
		if err := e.occupancy.Mark(block); err != nil {
			return err
		}
		e.owners[block] = id
	}

	return e.table.UpdateStart(id, newStart)
}
