// Package replay runs workload scripts against allocation engines.
//
// A workload is a text file with one command per line. Blank lines and lines
// starting with `#` are ignored.
//
//	c:<byteLength>             create a file
//	a:<fileIndex>:<byteOffset> find the block holding a byte of a file
//	e:<fileIndex>:<blocks>     add blocks to the end of a file
//	sh:<fileIndex>:<blocks>    remove blocks from the end of a file
//
// Files are referred to by the zero-based order of the `c` commands that
// created them. Every `c` command takes the next index, even one that gets
// rejected; referring to such a file later fails because it doesn't exist.
package replay
