package directory_test

import (
	"testing"

	"github.com/dargueta/diskalloc"
	"github.com/dargueta/diskalloc/directory"
	"github.com/dargueta/diskalloc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable__AddGetRemove(t *testing.T) {
	table := directory.New()
	assert.False(t, table.Exists(1))

	record := directory.Record{Start: 4, BlockCount: 2, ByteLength: 13}
	require.NoError(t, table.Add(1, record))
	assert.True(t, table.Exists(1))

	fetched, err := table.Get(1)
	require.NoError(t, err)
	assert.Equal(t, record, fetched)

	fetched, ok := table.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, record, fetched)

	require.NoError(t, table.Remove(1))
	assert.False(t, table.Exists(1))
	assert.Equal(t, 0, table.Len())
}

func TestTable__AddDuplicateFails(t *testing.T) {
	table := directory.New()
	require.NoError(t, table.Add(7, directory.Record{BlockCount: 1, ByteLength: 1}))

	err := table.Add(7, directory.Record{Start: 9, BlockCount: 3, ByteLength: 20})
	assert.ErrorIs(t, err, errors.ErrExists)

	// The original record must be untouched.
	record, _ := table.Get(7)
	assert.EqualValues(t, 0, record.Start)
	assert.EqualValues(t, 1, record.BlockCount)
}

func TestTable__MissingFile(t *testing.T) {
	table := directory.New()

	_, err := table.Get(3)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, ok := table.Lookup(3)
	assert.False(t, ok)

	assert.ErrorIs(t, table.Remove(3), errors.ErrNotFound)
	assert.ErrorIs(t, table.UpdateStart(3, 1), errors.ErrNotFound)
	assert.ErrorIs(t, table.UpdateByteLength(3, 1), errors.ErrNotFound)
	assert.ErrorIs(t, table.UpdateBlockLength(3, 1), errors.ErrNotFound)
	assert.ErrorIs(t, table.Resize(3, 1, 1), errors.ErrNotFound)
	assert.False(t, table.Exists(3), "failed updates must not create the file")
}

func TestTable__Updates(t *testing.T) {
	table := directory.New()
	require.NoError(t, table.Add(2, directory.Record{Start: 0, BlockCount: 1, ByteLength: 5}))

	require.NoError(t, table.UpdateStart(2, 10))
	require.NoError(t, table.UpdateBlockLength(2, 3))
	require.NoError(t, table.UpdateByteLength(2, 21))

	record, err := table.Get(2)
	require.NoError(t, err)
	assert.Equal(t, directory.Record{Start: 10, BlockCount: 3, ByteLength: 21}, record)

	require.NoError(t, table.Resize(2, 1, 8))
	record, err = table.Get(2)
	require.NoError(t, err)
	assert.Equal(t, directory.Record{Start: 10, BlockCount: 1, ByteLength: 8}, record)
}

func TestTable__EntriesSortedByID(t *testing.T) {
	table := directory.New()
	require.NoError(t, table.Add(5, directory.Record{Start: 0, BlockCount: 2, ByteLength: 16}))
	require.NoError(t, table.Add(-1, directory.Record{Start: 2, BlockCount: 1, ByteLength: 3}))
	require.NoError(t, table.Add(3, directory.Record{Start: 3, BlockCount: 4, ByteLength: 30}))

	assert.Equal(
		t,
		[]diskalloc.FileEntry{
			{ID: -1, Start: 2, BlockCount: 1, ByteLength: 3},
			{ID: 3, Start: 3, BlockCount: 4, ByteLength: 30},
			{ID: 5, Start: 0, BlockCount: 2, ByteLength: 16},
		},
		table.Entries())
	assert.EqualValues(t, 7, table.TotalBlocks())
	assert.Equal(t, 3, table.Len())
}
