package linked

import (
	"fmt"

	"github.com/dargueta/diskalloc"
)

// Link is the "next block" pointer of a node. It's either the index of another
// block in the same arena or [End]. It can't be mistaken for an index by
// accident; callers must go through [Link.Index].
type Link struct {
	index diskalloc.BlockIndex
	valid bool
}

// End terminates a chain. It's the zero value of [Link].
var End = Link{}

// LinkTo returns a link pointing at `block`.
func LinkTo(block diskalloc.BlockIndex) Link {
	return Link{index: block, valid: true}
}

// Index returns the block the link points to. The second return value is false
// if this is [End].
func (l Link) Index() (diskalloc.BlockIndex, bool) {
	return l.index, l.valid
}

func (l Link) IsEnd() bool {
	return !l.valid
}

func (l Link) String() string {
	if !l.valid {
		return "end"
	}
	return fmt.Sprintf("-> %d", l.index)
}
