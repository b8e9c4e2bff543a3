package inode

import (
	"fmt"

	"github.com/jacobsa/syncutil"

	"github.com/glacya/memfs/errno"
)

// DirNode is an interior tree node: a concurrent name->child mapping plus
// a weak, non-owning back-reference to its parent. The parent owns the
// child through its own children map; DirNode never owns its parent.
//
// LOCK ORDERING: parent before child. Create and lookup touch exactly one
// DirNode's mu; RemoveDirectory holds the parent's mu while briefly
// read-locking the child to check that it is empty, and no operation
// locks a child and then its parent. A coarse per-directory lock was chosen over a sharded or
// lock-free map (see the three strategies a children-map protocol may
// use); it is the simplest to audit and sufficient for the exactly-one-
// winner contract required of concurrent O_CREAT|O_EXCL races.
type DirNode struct {
	// mu guards children. Constructed via syncutil.NewInvariantMutex so
	// every Unlock re-validates the uniqueness invariant below.
	mu syncutil.InvariantMutex

	// GUARDED_BY(mu)
	children map[string]Entry

	// parent is set once at construction and never mutated again, so it
	// may be read without holding mu. nil for the root directory.
	parent *DirNode
}

// NewRoot constructs the filesystem's single root directory, which has no
// parent.
func NewRoot() *DirNode {
	d := &DirNode{children: make(map[string]Entry)}
	d.mu = syncutil.NewInvariantMutex(d.checkInvariants)
	return d
}

// newChild constructs a directory entry with parent as its (weak) back
// reference.
func newChild(parent *DirNode) *DirNode {
	d := &DirNode{children: make(map[string]Entry), parent: parent}
	d.mu = syncutil.NewInvariantMutex(d.checkInvariants)
	return d
}

func (d *DirNode) checkInvariants() {
	seen := make(map[string]struct{}, len(d.children))
	for name := range d.children {
		if _, dup := seen[name]; dup {
			panic(fmt.Sprintf("DirNode: duplicate child name %q", name))
		}
		seen[name] = struct{}{}
	}
}

// Parent returns the weak back-reference, or nil at the root.
func (d *DirNode) Parent() *DirNode {
	return d.parent
}

// Lookup returns the child named name, or (nil, false) if absent.
func (d *DirNode) Lookup(name string) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.children[name]
	return e, ok
}

// CreateFile implements create_new_file: insert-if-absent when excl is
// false (existing file is a no-op success, per the open() tie-break that
// O_CREAT without O_EXCL against an existing name proceeds on that
// entry); strict insert-if-absent, EEXIST on conflict, when excl is true.
// buf becomes the new FileNode's backing storage on insert.
func (d *DirNode) CreateFile(name string, excl bool, buf []byte, release func()) (fn *FileNode, created bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.children[name]; ok {
		if excl {
			return nil, false, errno.EEXIST
		}
		existingFile, ok := existing.(*FileNode)
		if !ok {
			return nil, false, errno.EISDIR
		}
		return existingFile, false, nil
	}

	fn = newFileNode(buf, release)
	d.children[name] = fn
	return fn, true, nil
}

// CreateDirectory implements create_new_directory: strict insert-if-
// absent, EEXIST on conflict.
func (d *DirNode) CreateDirectory(name string) (*DirNode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.children[name]; ok {
		return nil, errno.EEXIST
	}

	child := newChild(d)
	d.children[name] = child
	return child, nil
}

// RemoveFile implements remove_file: the named entry must exist and be a
// File; on success its reference count is decremented by one (the
// children-map's share), which may trigger pool reclamation.
func (d *DirNode) RemoveFile(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.children[name]
	if !ok {
		return errno.ENOENT
	}
	fn, ok := existing.(*FileNode)
	if !ok {
		return errno.EISDIR
	}

	delete(d.children, name)
	fn.refs.Dec(1)
	return nil
}

// RemoveDirectory implements remove_directory: the named entry must
// exist, be a Directory, and be empty.
func (d *DirNode) RemoveDirectory(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.children[name]
	if !ok {
		return errno.ENOENT
	}
	child, ok := existing.(*DirNode)
	if !ok {
		return errno.ENOTDIR
	}

	child.mu.RLock()
	empty := len(child.children) == 0
	child.mu.RUnlock()
	if !empty {
		return errno.ENOTEMPTY
	}

	delete(d.children, name)
	return nil
}

// Names returns a snapshot of the current child names, primarily for
// tests asserting round-trip laws (mkdir then rmdir restores the name
// set).
func (d *DirNode) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.children))
	for name := range d.children {
		names = append(names, name)
	}
	return names
}
