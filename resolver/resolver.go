// Package resolver implements the stateless path tokenizer and tree
// walker every memfs operation uses to turn a path string into a tree
// Entry or a (parent DirNode, name) pair.
package resolver

import (
	"strings"

	"github.com/glacya/memfs/errno"
	"github.com/glacya/memfs/inode"
)

// tokenize splits path on '/', dropping empty components and "." entirely
// and reporting whether the path was absolute (led with '/'). Trailing
// slashes fall out naturally since they produce a trailing empty
// component that gets dropped.
func tokenize(path string) (components []string, absolute bool) {
	absolute = strings.HasPrefix(path, "/")
	for _, c := range strings.Split(path, "/") {
		if c == "" || c == "." {
			continue
		}
		components = append(components, c)
	}
	return
}

func startingPoint(root, cwd *inode.DirNode, absolute bool) *inode.DirNode {
	if absolute {
		return root
	}
	return cwd
}

// GetNode resolves path in full, starting from root if path is absolute
// and from cwd otherwise. An empty path is ENOENT; a non-empty path that
// tokenizes to zero components ("/", "/./" ...) short-circuits to that
// starting directory.
func GetNode(root, cwd *inode.DirNode, path string) (inode.Entry, error) {
	if path == "" {
		return nil, errno.ENOENT
	}

	components, absolute := tokenize(path)
	start := startingPoint(root, cwd, absolute)

	if len(components) == 0 {
		return start, nil
	}
	return walk(start, components)
}

// GetParent resolves the parent directory of path's final component and
// returns that directory along with the bare final component name. If
// walking the parent chain lands on the RootSentinel (upward navigation
// reached root), it is remapped to the real root handle. If it lands on a
// File — the directory-shaped original source treats this uniformly as
// ENOENT, not ENOTDIR, and this implementation keeps that behavior.
func GetParent(root, cwd *inode.DirNode, path string) (*inode.DirNode, string, error) {
	dir, name, _, err := GetParentDetectRoot(root, cwd, path)
	return dir, name, err
}

// GetParentDetectRoot behaves like GetParent but additionally reports
// whether the parent chain resolved through the RootSentinel — i.e. an
// upward ".." navigation that ran off the top of the tree and landed on
// root's own (nonexistent) parent — before being remapped to the real
// root handle. Mkdir needs this distinction (such a path must fail
// EEXIST per §4.5); Unlink/Rmdir do not and call GetParent instead.
func GetParentDetectRoot(root, cwd *inode.DirNode, path string) (dir *inode.DirNode, name string, viaRootSentinel bool, err error) {
	if path == "" {
		return nil, "", false, errno.ENOENT
	}

	components, absolute := tokenize(path)
	if len(components) == 0 {
		return nil, "", false, errno.ENOENT
	}

	start := startingPoint(root, cwd, absolute)
	name = components[len(components)-1]
	parentComponents := components[:len(components)-1]

	if len(parentComponents) == 0 {
		return start, name, false, nil
	}

	entry, werr := walk(start, parentComponents)
	if werr != nil {
		return nil, "", false, werr
	}

	if inode.IsRootSentinel(entry) {
		return root, name, true, nil
	}

	d, ok := entry.(*inode.DirNode)
	if !ok {
		return nil, "", false, errno.ENOENT
	}
	return d, name, false, nil
}

// walk implements the §4.4 per-component traversal rule starting from
// start, for a non-empty components slice.
func walk(start *inode.DirNode, components []string) (inode.Entry, error) {
	current := start

	for i, c := range components {
		final := i == len(components)-1

		if !final {
			if c == ".." {
				if p := current.Parent(); p != nil {
					current = p
				}
				continue
			}

			child, ok := current.Lookup(c)
			if !ok {
				return nil, errno.ENOENT
			}
			dir, ok := child.(*inode.DirNode)
			if !ok {
				return nil, errno.ENOTDIR
			}
			current = dir
			continue
		}

		if c == ".." {
			if p := current.Parent(); p != nil {
				return p, nil
			}
			return inode.RootSentinel, nil
		}

		child, ok := current.Lookup(c)
		if !ok {
			return nil, errno.ENOENT
		}
		return child, nil
	}

	// Unreachable: components is always non-empty when walk is called.
	return current, nil
}
