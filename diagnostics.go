package diskalloc

import (
	"log"
)

// Operation names an engine operation in diagnostic reports.
type Operation int

const (
	OpCreate Operation = iota
	OpAccess
	OpExtend
	OpShrink
)

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpAccess:
		return "access"
	case OpExtend:
		return "extend"
	case OpShrink:
		return "shrink"
	default:
		return "unknown"
	}
}

//go:generate mockgen -destination mock/diagnostics.go -package mock github.com/dargueta/diskalloc Diagnostics

// Diagnostics is the reporting sink engines write to. Reports are advisory;
// nothing an engine does depends on them.
type Diagnostics interface {
	// OperationFailed is called for every operation that returns an error,
	// whether it was rejected or failed.
	OperationFailed(op Operation, id FileID, err error)
	// Compacted is called after a compaction pass starting at `from` that
	// relocated `filesMoved` files.
	Compacted(from BlockIndex, filesMoved int)
}

// NopDiagnostics discards all reports.
type NopDiagnostics struct{}

func (NopDiagnostics) OperationFailed(Operation, FileID, error) {}
func (NopDiagnostics) Compacted(BlockIndex, int)                {}

// LogDiagnostics writes reports to a standard logger.
type LogDiagnostics struct {
	Logger *log.Logger
}

func (d LogDiagnostics) OperationFailed(op Operation, id FileID, err error) {
	d.Logger.Printf("%s(%d): %s: %s", op, id, StatusOf(err), err)
}

func (d LogDiagnostics) Compacted(from BlockIndex, filesMoved int) {
	d.Logger.Printf("compaction from block %d moved %d files", from, filesMoved)
}
