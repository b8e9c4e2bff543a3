package descriptor

import (
	"sync"
	"sync/atomic"

	"github.com/glacya/memfs/errno"
	"github.com/glacya/memfs/flags"
	"github.com/glacya/memfs/inode"
)

// Table is the concurrent map from descriptor id to Descriptor, with ids
// drawn from a monotonically increasing counter that never repeats
// during the table's lifetime, even across Close calls.
type Table struct {
	mu      sync.RWMutex
	entries map[uint64]*Descriptor
	next    atomic.Uint64
}

// NewTable builds an empty descriptor table.
func NewTable() *Table {
	return &Table{entries: make(map[uint64]*Descriptor)}
}

// Open allocates a fresh id and inserts a new Descriptor bound to target.
// target's reference count is incremented to reflect this new holder.
func (t *Table) Open(f flags.OpenFlags, target *inode.FileNode) uint64 {
	target.IncRef()

	id := t.next.Add(1) - 1
	d := newDescriptor(id, f, target)

	t.mu.Lock()
	t.entries[id] = d
	t.mu.Unlock()

	return id
}

// Get returns the descriptor for id, or EBADF if unknown.
func (t *Table) Get(id uint64) (*Descriptor, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.entries[id]
	if !ok {
		return nil, errno.EBADF
	}
	return d, nil
}

// Close removes id from the table, decrementing its target's reference
// count. EBADF if id is unknown or already closed.
func (t *Table) Close(id uint64) error {
	t.mu.Lock()
	d, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	t.mu.Unlock()

	if !ok {
		return errno.EBADF
	}
	d.target.DecRef()
	return nil
}

// Len reports the number of live descriptors, for metrics and tests.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
