package replay

import (
	"io"

	"github.com/dargueta/diskalloc"
	"github.com/gocarina/gocsv"
)

type tableRow struct {
	FileID     int32  `csv:"file_id"`
	Start      uint32 `csv:"start"`
	BlockCount uint32 `csv:"block_count"`
	ByteLength uint32 `csv:"byte_length"`
}

type sliceRow struct {
	Block uint32 `csv:"block"`
	Owner string `csv:"owner"`
}

type outcomeRow struct {
	Line      int    `csv:"line"`
	Command   string `csv:"command"`
	FileID    int32  `csv:"file_id"`
	Status    string `csv:"status"`
	Block     uint32 `csv:"block"`
	ElapsedNS int64  `csv:"elapsed_ns"`
	Error     string `csv:"error"`
}

// WriteTable writes a directory table dump as CSV, one row per file.
func WriteTable(writer io.Writer, entries []diskalloc.FileEntry) error {
	rows := make([]tableRow, len(entries))
	for i, entry := range entries {
		rows[i] = tableRow{
			FileID:     int32(entry.ID),
			Start:      uint32(entry.Start),
			BlockCount: entry.BlockCount,
			ByteLength: entry.ByteLength,
		}
	}
	return gocsv.Marshal(&rows, writer)
}

// WriteSlice writes a slice dump as CSV, one row per block. `start` is the index
// of the first block in `owners`. Empty blocks have an owner of "-".
func WriteSlice(writer io.Writer, start diskalloc.BlockIndex, owners []diskalloc.BlockOwner) error {
	rows := make([]sliceRow, len(owners))
	for i, owner := range owners {
		rows[i] = sliceRow{Block: uint32(start) + uint32(i), Owner: owner.String()}
	}
	return gocsv.Marshal(&rows, writer)
}

// WriteOutcomes writes the result of every replayed command as CSV.
func WriteOutcomes(writer io.Writer, outcomes []Outcome) error {
	rows := make([]outcomeRow, len(outcomes))
	for i, outcome := range outcomes {
		rows[i] = outcomeRow{
			Line:      outcome.Command.Line,
			Command:   outcome.Command.String(),
			FileID:    int32(outcome.FileID),
			Status:    outcome.Status.String(),
			Block:     uint32(outcome.Block),
			ElapsedNS: outcome.Elapsed.Nanoseconds(),
		}
		if outcome.Err != nil {
			rows[i].Error = outcome.Err.Error()
		}
	}
	return gocsv.Marshal(&rows, writer)
}
