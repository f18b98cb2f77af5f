package diskalloc

import (
	"fmt"

	"github.com/dargueta/diskalloc/errors"
)

// Config holds the construction parameters of an engine. They can't be changed
// once the engine exists.
type Config struct {
	// TotalBlocks is the fixed number of blocks in the arena.
	TotalBlocks uint32
	// BytesPerBlock is the size of a single block.
	BytesPerBlock uint32
	// Diagnostics receives reports of rejected and failed operations. If nil,
	// reports are discarded.
	Diagnostics Diagnostics
}

func (c Config) Validate() error {
	if c.TotalBlocks == 0 {
		return errors.ErrInvalidArgument.WithMessage("arena must have at least one block")
	}
	if c.BytesPerBlock == 0 {
		return errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("block size must be positive, got %d", c.BytesPerBlock))
	}
	return nil
}

// DiagnosticsOrDefault returns the configured diagnostics sink, or
// [NopDiagnostics] if there isn't one.
func (c Config) DiagnosticsOrDefault() Diagnostics {
	if c.Diagnostics == nil {
		return NopDiagnostics{}
	}
	return c.Diagnostics
}

// BlocksForBytes gives the number of blocks needed to hold `byteLength` bytes.
func (c Config) BlocksForBytes(byteLength uint32) uint32 {
	return uint32((uint64(byteLength) + uint64(c.BytesPerBlock) - 1) / uint64(c.BytesPerBlock))
}

// BlockOffset gives the zero-based position within a file of the block holding
// byte `byteOffset`. Offsets count from 1; offset 0 is treated like offset 1.
func (c Config) BlockOffset(byteOffset uint32) uint32 {
	if byteOffset == 0 {
		return 0
	}
	return (byteOffset - 1) / c.BytesPerBlock
}
