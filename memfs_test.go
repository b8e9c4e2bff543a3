package memfs_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memfs "github.com/glacya/memfs"
	"github.com/glacya/memfs/errno"
	"github.com/glacya/memfs/flags"
	"github.com/glacya/memfs/metrics"
)

// poolInUseRecorder wraps the noop handle and records every PoolInUse
// observation, so Open/Close's wiring of the gauge can be asserted
// without a real otel/prometheus backend.
type poolInUseRecorder struct {
	metrics.MetricHandle
	samples []int64
}

func (r *poolInUseRecorder) PoolInUse(ctx context.Context, inUse int64) {
	r.samples = append(r.samples, inUse)
}

func newFS(t *testing.T) (*memfs.Filesystem, context.Context) {
	t.Helper()
	return memfs.New(64, 4096), context.Background()
}

// Scenario 1: mkdir + open under it succeeds with fd 0; opening the
// directory itself fails EISDIR.
func TestScenarioOpenDirectoryFails(t *testing.T) {
	fs, ctx := newFS(t)

	require.NoError(t, fs.Mkdir(ctx, "/dir"))
	fd, err := fs.Open(ctx, "/dir/f", flags.O_CREAT|flags.O_RDONLY)
	require.NoError(t, err)
	assert.EqualValues(t, 0, fd)

	_, err = fs.Open(ctx, "/dir", flags.O_CREAT|flags.O_RDONLY)
	assert.ErrorIs(t, err, errno.EISDIR)
}

// Scenario 2: write-then-read round trip through a SEEK_SET rewind.
func TestScenarioWriteReadRoundTrip(t *testing.T) {
	fs, ctx := newFS(t)

	fd, err := fs.Open(ctx, "/a", flags.O_CREAT|flags.O_RDWR)
	require.NoError(t, err)

	n, err := fs.Write(ctx, fd, []byte{1, 2, 3, 4}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	off, err := fs.Lseek(ctx, fd, 0, flags.SEEK_SET)
	require.NoError(t, err)
	assert.EqualValues(t, 0, off)

	buf := make([]byte, 4)
	n, err = fs.Read(ctx, fd, buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
}

// Scenario 3: SEEK_SET/SEEK_CUR/SEEK_END agree for every offset in range.
func TestScenarioSeekFamily(t *testing.T) {
	fs, ctx := newFS(t)

	fd, err := fs.Open(ctx, "/b", flags.O_CREAT|flags.O_RDWR)
	require.NoError(t, err)

	v64 := make([]byte, 64)
	_, err = fs.Write(ctx, fd, v64, 64)
	require.NoError(t, err)

	for r := int64(0); r <= 64; r++ {
		off, err := fs.Lseek(ctx, fd, r, flags.SEEK_SET)
		require.NoError(t, err)
		assert.Equal(t, r, off)

		off, err = fs.Lseek(ctx, fd, r, flags.SEEK_CUR)
		require.NoError(t, err)
		want := r + r
		if want > 64 {
			want = 64
		}
		assert.Equal(t, want, off)

		off, err = fs.Lseek(ctx, fd, r, flags.SEEK_END)
		require.NoError(t, err)
		assert.EqualValues(t, 64, off)
	}
}

// Scenario 4: 256 racers on O_CREAT|O_EXCL, exactly one wins.
func TestScenarioExclRaceExactlyOneWinner(t *testing.T) {
	fs, ctx := newFS(t)

	const racers = 256
	var wg sync.WaitGroup
	var oks, exists int32
	var mu sync.Mutex

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fs.Open(ctx, "/x", flags.O_CREAT|flags.O_EXCL|flags.O_RDWR)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else {
				require.ErrorIs(t, err, errno.EEXIST)
				exists++
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, oks)
	assert.EqualValues(t, 255, exists)
}

// Scenario 5: nested mkdir/open/close/unlink/rmdir sequence.
func TestScenarioNestedTeardown(t *testing.T) {
	fs, ctx := newFS(t)

	require.NoError(t, fs.Mkdir(ctx, "/d1"))
	require.NoError(t, fs.Mkdir(ctx, "/d1/d2"))

	fd, err := fs.Open(ctx, "/d1/d2/q", flags.O_CREAT|flags.O_RDONLY)
	require.NoError(t, err)
	require.NoError(t, fs.Close(ctx, fd))

	assert.ErrorIs(t, fs.Rmdir(ctx, "/d1"), errno.ENOTEMPTY)

	require.NoError(t, fs.Unlink(ctx, "/d1/d2/q"))
	require.NoError(t, fs.Rmdir(ctx, "/d1/d2"))
	require.NoError(t, fs.Rmdir(ctx, "/d1"))
}

// Scenario 6: messy slashes normalize and chdir lands back at root.
func TestScenarioMessyPathsAndChdir(t *testing.T) {
	fs, ctx := newFS(t)

	require.NoError(t, fs.Mkdir(ctx, "////one"))
	require.NoError(t, fs.Mkdir(ctx, "///one//two"))
	require.NoError(t, fs.Chdir(ctx, "one"))
	require.NoError(t, fs.Chdir(ctx, "two/"))
	require.NoError(t, fs.Chdir(ctx, "..//.."))

	// Back at root: "one" must still be reachable from an absolute path.
	require.NoError(t, fs.Chdir(ctx, "/one/two"))
	require.NoError(t, fs.Chdir(ctx, "/"))
}

// Mkdir through a path whose parent chain runs off the top of the tree
// via ".." must fail EEXIST rather than silently remapping to root.
func TestMkdirThroughDotDotAtRootFailsEexist(t *testing.T) {
	fs, ctx := newFS(t)

	err := fs.Mkdir(ctx, "/../newdir")
	assert.ErrorIs(t, err, errno.EEXIST)

	_, err = fs.Open(ctx, "/newdir", flags.O_RDONLY)
	assert.ErrorIs(t, err, errno.ENOENT)
}

func TestBoundaryBehaviors(t *testing.T) {
	fs, ctx := newFS(t)

	_, err := fs.Open(ctx, "", flags.O_RDONLY)
	assert.ErrorIs(t, err, errno.ENOENT)

	assert.ErrorIs(t, fs.Mkdir(ctx, "/"), errno.EEXIST)
	assert.ErrorIs(t, fs.Rmdir(ctx, "/"), errno.EBUSY)
	assert.ErrorIs(t, fs.Rmdir(ctx, "/."), errno.EINVAL)
	assert.ErrorIs(t, fs.Rmdir(ctx, "/.."), errno.ENOTEMPTY)

	fd, err := fs.Open(ctx, "/ro", flags.O_CREAT|flags.O_RDONLY)
	require.NoError(t, err)
	_, err = fs.Write(ctx, fd, []byte{1}, 1)
	assert.ErrorIs(t, err, errno.EBADF)

	wfd, err := fs.Open(ctx, "/wo", flags.O_CREAT|flags.O_WRONLY)
	require.NoError(t, err)
	_, err = fs.Read(ctx, wfd, make([]byte, 1), 1)
	assert.ErrorIs(t, err, errno.EBADF)
}

func TestUnlinkLeavesOpenDescriptorUsable(t *testing.T) {
	fs, ctx := newFS(t)

	fd, err := fs.Open(ctx, "/f", flags.O_CREAT|flags.O_RDWR)
	require.NoError(t, err)
	_, err = fs.Write(ctx, fd, []byte{1, 2, 3}, 3)
	require.NoError(t, err)

	require.NoError(t, fs.Unlink(ctx, "/f"))

	_, err = fs.Open(ctx, "/f", flags.O_RDONLY)
	assert.ErrorIs(t, err, errno.ENOENT)

	_, err = fs.Lseek(ctx, fd, 0, flags.SEEK_SET)
	require.NoError(t, err)
	buf := make([]byte, 3)
	n, err := fs.Read(ctx, fd, buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, buf)
}

func TestOpenAndCloseReportPoolInUse(t *testing.T) {
	rec := &poolInUseRecorder{MetricHandle: metrics.NewNoopMetrics()}
	fs := memfs.New(4, 16, memfs.WithMetrics(rec))
	ctx := context.Background()

	fd, err := fs.Open(ctx, "/f", flags.O_CREAT|flags.O_RDONLY)
	require.NoError(t, err)
	require.NotEmpty(t, rec.samples)
	assert.EqualValues(t, 1, rec.samples[len(rec.samples)-1])

	require.NoError(t, fs.Close(ctx, fd))
	assert.EqualValues(t, 1, rec.samples[len(rec.samples)-1])
}

func TestRoundTripOpenCloseUnlinkRestoresState(t *testing.T) {
	fs, ctx := newFS(t)
	before, _ := fs.PoolStats()

	fd, err := fs.Open(ctx, "/tmp", flags.O_CREAT|flags.O_RDONLY)
	require.NoError(t, err)
	require.NoError(t, fs.Close(ctx, fd))
	require.NoError(t, fs.Unlink(ctx, "/tmp"))

	after, _ := fs.PoolStats()
	assert.Equal(t, before, after)
}
