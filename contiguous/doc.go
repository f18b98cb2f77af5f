// Package contiguous implements contiguous allocation: every file occupies a
// single run of adjacent blocks.
//
// New files are placed with a first-fit search. When the free space is large
// enough in total but too fragmented to hold the run, the arena is compacted:
// every file is slid toward block 0 in order, so that all free blocks end up in
// one region at the end of the arena. Compaction runs in time linear in the
// size of the arena and needs no storage beyond the arena itself.
//
// Extending a file appends blocks directly after its run when they're free.
// Otherwise the arena is compacted, the file is moved to the start of the free
// region, and the new blocks are appended there. This leaves a hole where the
// file used to be, which by default is closed with a second compaction pass
// starting at the file's old location (see [ExtendPolicy]).
//
//	before:  A A B B . . . .      Extend(A, 2)
//	move:    . . B B A A . .
//	fill:    . . B B A A A A
//	compact: B B A A A A . .
package contiguous
