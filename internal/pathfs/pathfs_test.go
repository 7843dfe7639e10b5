package pathfs

import (
	"syscall"
	"testing"

	"fusebridge/internal/config"
	"fusebridge/internal/demo"
	"fusebridge/internal/state"
	"fusebridge/internal/trampoline"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func setupHello(t *testing.T) *BridgeFS {
	t.Helper()
	t.Cleanup(state.Clear)
	state.Register(demo.Hello{})
	return NewBridgeFS(trampoline.NewCaller(trampoline.NewOperations[demo.Hello]()))
}

func readAll(t *testing.T, file nodefs.File, size int, off int64) string {
	t.Helper()
	dest := make([]byte, size)
	result, status := file.Read(dest, off)
	require.Equal(t, fuse.OK, status)

	data, status := result.Bytes(dest)
	require.Equal(t, fuse.OK, status)
	return string(data)
}

func TestGetAttr(t *testing.T) {
	m := setupHello(t)

	root, status := m.GetAttr("", nil)
	require.Equal(t, fuse.OK, status)
	assert.Equal(t, uint32(unix.S_IFDIR|0o755), root.Mode)
	assert.EqualValues(t, 2, root.Nlink)

	file, status := m.GetAttr("hello.txt", nil)
	require.Equal(t, fuse.OK, status)
	assert.Equal(t, uint32(unix.S_IFREG|0o444), file.Mode)
	assert.EqualValues(t, len(demo.HelloContent), file.Size)

	_, status = m.GetAttr("missing", nil)
	assert.Equal(t, fuse.ENOENT, status)
}

func TestOpenDir(t *testing.T) {
	m := setupHello(t)

	entries, status := m.OpenDir("", nil)
	require.Equal(t, fuse.OK, status)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello.txt", entries[0].Name)

	_, status = m.OpenDir("hello.txt", nil)
	assert.Equal(t, fuse.ENOENT, status)
}

func TestOpenAndRead(t *testing.T) {
	m := setupHello(t)

	file, status := m.Open("hello.txt", uint32(unix.O_RDONLY), nil)
	require.Equal(t, fuse.OK, status)

	assert.Equal(t, "world", readAll(t, file, 5, 6))
	assert.Equal(t, demo.HelloContent, readAll(t, file, 4096, 0))
	assert.Empty(t, readAll(t, file, 4096, 13))

	_, status = m.Open("hello.txt", uint32(unix.O_RDWR), nil)
	assert.Equal(t, fuse.Status(syscall.EACCES), status)

	_, status = m.Open("missing", uint32(unix.O_RDONLY), nil)
	assert.Equal(t, fuse.ENOENT, status)
}

func TestOpenFlags(t *testing.T) {
	t.Cleanup(state.Clear)
	state.Register(demo.DefaultTree())
	m := NewBridgeFS(trampoline.NewCaller(trampoline.NewOperations[*demo.Tree]()))

	file, status := m.Open("foo/fux", uint32(unix.O_RDONLY), nil)
	require.Equal(t, fuse.OK, status)

	withFlags, ok := file.(*nodefs.WithFlags)
	require.True(t, ok, "got %T", file)
	assert.Equal(t, uint32(fuse.FOPEN_DIRECT_IO), withFlags.FuseFlags)
	assert.Equal(t, "blub", readAll(t, file, 16, 0))
}

func TestUnimplemented(t *testing.T) {
	m := setupHello(t)

	assert.Equal(t, fuse.ENOSYS, m.Mkdir("new", 0o755, nil))
	assert.Equal(t, fuse.ENOSYS, m.Unlink("hello.txt", nil))
	assert.Contains(t, m.String(), "demo.Hello")
}

func TestMountOptions(t *testing.T) {
	opts := mountOptions(config.MountOptions{
		FSName:             "hello",
		Subtype:            "demo",
		AllowOther:         true,
		DefaultPermissions: true,
		ReadOnly:           true,
	})
	assert.True(t, opts.SingleThreaded)
	assert.True(t, opts.AllowOther)
	assert.Equal(t, "hello", opts.FsName)
	assert.Equal(t, "demo", opts.Name)
	assert.Equal(t, []string{"default_permissions", "ro"}, opts.Options)

	assert.Equal(t, "fusebridge", mountOptions(config.MountOptions{}).FsName)
}

type fakeServer struct {
	waitErr   error
	unmounted bool
}

func (s *fakeServer) WaitMount() error { return s.waitErr }

func (s *fakeServer) Unmount() error {
	s.unmounted = true
	return nil
}

func TestAwaitMount(t *testing.T) {
	t.Run("Ready", func(t *testing.T) {
		server := &fakeServer{}
		require.NoError(t, awaitMount(server, make(chan struct{})))
		assert.False(t, server.unmounted)
	})

	t.Run("NotReady", func(t *testing.T) {
		server := &fakeServer{waitErr: syscall.ENODEV}
		done := make(chan struct{})
		close(done)

		err := awaitMount(server, done)
		require.ErrorIs(t, err, syscall.ENODEV)
		assert.True(t, server.unmounted)
	})
}

func TestOwnerOverride(t *testing.T) {
	t.Setenv("PUID", "4242")
	t.Setenv("PGID", "4343")
	m := setupHello(t)

	attr, status := m.GetAttr("hello.txt", nil)
	require.Equal(t, fuse.OK, status)
	assert.Equal(t, fuse.Owner{Uid: 4242, Gid: 4343}, attr.Owner)
}
