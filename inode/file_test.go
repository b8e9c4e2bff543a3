package inode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glacya/memfs/errno"
	"github.com/glacya/memfs/inode"
)

func newTestFile(t *testing.T, capacity int64) (*inode.FileNode, *bool) {
	t.Helper()
	released := false
	buf := make([]byte, capacity)
	fn, created, err := inode.NewRoot().CreateFile("f", true, buf, func() { released = true })
	require.NoError(t, err)
	require.True(t, created)
	return fn, &released
}

func TestWriteAtThenReadAt(t *testing.T) {
	fn, _ := newTestFile(t, 64)

	n, err := fn.WriteAt([]byte{1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.EqualValues(t, 4, fn.Size())

	dst := make([]byte, 4)
	got := fn.ReadAt(dst, 0)
	assert.Equal(t, 4, got)
	assert.Equal(t, []byte{1, 2, 3, 4}, dst)
}

func TestWriteAtExceedingCapacityFails(t *testing.T) {
	fn, _ := newTestFile(t, 4)

	_, err := fn.WriteAt([]byte{1, 2, 3, 4, 5}, 0)
	assert.ErrorIs(t, err, errno.EFBIG)
	assert.EqualValues(t, 0, fn.Size())
}

func TestAppendAtGrowsSize(t *testing.T) {
	fn, _ := newTestFile(t, 8)

	newSize, err := fn.AppendAt([]byte{9, 9}, fn.Size())
	require.NoError(t, err)
	assert.EqualValues(t, 2, newSize)

	newSize, err = fn.AppendAt([]byte{1}, newSize)
	require.NoError(t, err)
	assert.EqualValues(t, 3, newSize)

	dst := make([]byte, 3)
	fn.ReadAt(dst, 0)
	assert.Equal(t, []byte{9, 9, 1}, dst)
}

func TestReadAtPastSizeReturnsZero(t *testing.T) {
	fn, _ := newTestFile(t, 8)
	_, err := fn.WriteAt([]byte{1}, 0)
	require.NoError(t, err)

	dst := make([]byte, 8)
	n := fn.ReadAt(dst, 5)
	assert.Equal(t, 0, n)
}

func TestRefCountReleasesOnLastHolder(t *testing.T) {
	fn, released := newTestFile(t, 4)

	fn.IncRef() // simulate one open descriptor
	fn.DecRef() // descriptor closes
	assert.False(t, *released, "children-map slot still holds a reference")

	fn.DecRef() // removed from children map (unlink)
	assert.True(t, *released)
}
