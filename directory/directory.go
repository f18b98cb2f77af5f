// Package directory implements the table mapping file IDs to the location and
// size of their data. Both allocation strategies share it.
package directory

import (
	"fmt"
	"sort"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/errors"
)

// Record is the metadata kept for one file. BlockCount is always
// ceil(ByteLength / block size).
type Record struct {
	Start      diskalloc.BlockIndex
	BlockCount uint32
	ByteLength uint32
}

// Table maps file IDs to records. A file exists exactly as long as it has an
// entry in the table.
type Table struct {
	records map[diskalloc.FileID]Record
}

func New() *Table {
	return &Table{records: make(map[diskalloc.FileID]Record)}
}

func notFound(id diskalloc.FileID) error {
	return errors.ErrNotFound.WithMessage(fmt.Sprintf("file %d", id))
}

func (t *Table) Exists(id diskalloc.FileID) bool {
	_, ok := t.records[id]
	return ok
}

// Lookup returns the record for `id` and whether it exists.
func (t *Table) Lookup(id diskalloc.FileID) (Record, bool) {
	record, ok := t.records[id]
	return record, ok
}

// Get returns the record for `id`, or an [errors.ErrNotFound] error.
func (t *Table) Get(id diskalloc.FileID) (Record, error) {
	record, ok := t.records[id]
	if !ok {
		return Record{}, notFound(id)
	}
	return record, nil
}

func (t *Table) Add(id diskalloc.FileID, record Record) error {
	if _, ok := t.records[id]; ok {
		return errors.ErrExists.WithMessage(fmt.Sprintf("file %d", id))
	}
	t.records[id] = record
	return nil
}

func (t *Table) Remove(id diskalloc.FileID) error {
	if _, ok := t.records[id]; !ok {
		return notFound(id)
	}
	delete(t.records, id)
	return nil
}

func (t *Table) update(id diskalloc.FileID, mutate func(record *Record)) error {
	record, ok := t.records[id]
	if !ok {
		return notFound(id)
	}
	mutate(&record)
	t.records[id] = record
	return nil
}

func (t *Table) UpdateStart(id diskalloc.FileID, start diskalloc.BlockIndex) error {
	return t.update(id, func(record *Record) { record.Start = start })
}

func (t *Table) UpdateByteLength(id diskalloc.FileID, byteLength uint32) error {
	return t.update(id, func(record *Record) { record.ByteLength = byteLength })
}

func (t *Table) UpdateBlockLength(id diskalloc.FileID, blockCount uint32) error {
	return t.update(id, func(record *Record) { record.BlockCount = blockCount })
}

// Resize sets a file's block count and byte length together.
func (t *Table) Resize(id diskalloc.FileID, blockCount, byteLength uint32) error {
	return t.update(id, func(record *Record) {
		record.BlockCount = blockCount
		record.ByteLength = byteLength
	})
}

// Len gives the number of files in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// TotalBlocks gives the sum of the block counts of every file.
func (t *Table) TotalBlocks() uint64 {
	total := uint64(0)
	for _, record := range t.records {
		total += uint64(record.BlockCount)
	}
	return total
}

// Entries returns every file in the table, sorted by ID.
func (t *Table) Entries() []diskalloc.FileEntry {
	entries := make([]diskalloc.FileEntry, 0, len(t.records))
	for id, record := range t.records {
		entries = append(
			entries,
			diskalloc.FileEntry{
				ID:         id,
				Start:      record.Start,
				BlockCount: record.BlockCount,
				ByteLength: record.ByteLength,
			},
		)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
