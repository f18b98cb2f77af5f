package diskalloc

import (
	"fmt"
	"strconv"
)

// FileID is the caller-chosen identifier of a simulated file. IDs are unique
// for as long as the file exists.
type FileID int32

// BlockIndex is the position of a block in an engine's arena, starting at 0.
type BlockIndex uint32

// BlockOwner identifies the file that owns a block. The zero value is an empty
// block.
type BlockOwner struct {
	ID    FileID
	InUse bool
}

// EmptyBlock is the owner of every block that doesn't belong to a file.
var EmptyBlock = BlockOwner{}

// OwnedBy returns the owner value for a block belonging to file `id`.
func OwnedBy(id FileID) BlockOwner {
	return BlockOwner{ID: id, InUse: true}
}

func (o BlockOwner) String() string {
	if !o.InUse {
		return "-"
	}
	return strconv.FormatInt(int64(o.ID), 10)
}

// FileEntry is one row of a directory table dump.
type FileEntry struct {
	ID         FileID
	Start      BlockIndex
	BlockCount uint32
	ByteLength uint32
}

func (e FileEntry) String() string {
	return fmt.Sprintf(
		"file %d: start=%d blocks=%d bytes=%d",
		e.ID,
		e.Start,
		e.BlockCount,
		e.ByteLength,
	)
}

// Engine is the interface shared by every allocation strategy.
//
// Engines are not safe for concurrent use. Each operation runs to completion
// before returning, so callers never observe a partially-compacted arena.
type Engine interface {
	// CreateFile allocates enough blocks to hold `byteLength` bytes for a new
	// file with the given ID.
	CreateFile(id FileID, byteLength uint32) error

	// Access returns the index of the block holding the byte at `byteOffset`.
	// Offsets count from 1, so an offset equal to the file's byte length names
	// its last byte. Offset 0 is treated as the first byte.
	Access(id FileID, byteOffset uint32) (BlockIndex, error)

	// Extend appends `blocks` blocks to the end of the file.
	Extend(id FileID, blocks uint32) error

	// Shrink releases the last `blocks` blocks of the file. Shrinking a file to
	// zero blocks deletes it.
	Shrink(id FileID, blocks uint32) error

	// Blocks returns the indices of the blocks owned by a file, in file order.
	Blocks(id FileID) ([]BlockIndex, error)

	// Slice returns the owner of each block in [start, end). `end` is clamped
	// to the arena size.
	Slice(start, end BlockIndex) []BlockOwner

	// Table returns every file in the directory table, ordered by ID.
	Table() []FileEntry

	AvailableSpace() uint32
	TotalBlocks() uint32
	BytesPerBlock() uint32
}
