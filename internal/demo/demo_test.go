package demo

import (
	"syscall"
	"testing"

	"fusebridge/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHello(t *testing.T) {
	fs := Hello{}

	root, err := fs.GetAttributes("/")
	require.NoError(t, err)
	assert.Equal(t, filesystem.Directory, root.Status.Mode().Type())
	assert.EqualValues(t, 2, root.Status.Links())

	file, err := fs.GetAttributes(HelloPath)
	require.NoError(t, err)
	assert.Equal(t, filesystem.RegularFile, file.Status.Mode().Type())
	assert.EqualValues(t, 13, file.Status.Size())

	_, err = fs.GetAttributes("/missing")
	assert.ErrorIs(t, err, syscall.ENOENT)

	listing, err := fs.ListDirectory("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.txt"}, listing.Entries)

	read, err := fs.Read(HelloPath, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", string(read.Content))

	read, err = fs.Read(HelloPath, 100, 13)
	require.NoError(t, err)
	assert.Empty(t, read.Content)

	_, err = fs.Read(HelloPath, 1, -1)
	assert.ErrorIs(t, err, syscall.ENOENT)
}

func TestTree(t *testing.T) {
	tree := NewTree(map[string]Generator{
		"/a.txt":       func() string { return "alpha" },
		"/foo/bar/baz": func() string { return "blub" },
		"/foo/fux":     func() string { return "blub" },
		"/foo/bar/qux": func() string { return "blub" },
	})

	t.Run("ListRoot", func(t *testing.T) {
		listing, err := tree.ListDirectory("/")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "foo"}, listing.Entries)
	})

	t.Run("ListNested", func(t *testing.T) {
		listing, err := tree.ListDirectory("/foo")
		require.NoError(t, err)
		assert.Equal(t, []string{"bar", "fux"}, listing.Entries)

		listing, err = tree.ListDirectory("/foo/bar")
		require.NoError(t, err)
		assert.Equal(t, []string{"baz", "qux"}, listing.Entries)
	})

	t.Run("ListFile", func(t *testing.T) {
		_, err := tree.ListDirectory("/a.txt")
		assert.ErrorIs(t, err, syscall.ENOTDIR)
	})

	t.Run("Attributes", func(t *testing.T) {
		root, err := tree.GetAttributes("/")
		require.NoError(t, err)
		assert.EqualValues(t, 3, root.Status.Links())

		foo, err := tree.GetAttributes("/foo")
		require.NoError(t, err)
		assert.Equal(t, filesystem.Directory, foo.Status.Mode().Type())

		file, err := tree.GetAttributes("/a.txt")
		require.NoError(t, err)
		assert.EqualValues(t, 5, file.Status.Size())
	})

	t.Run("OpenAndRead", func(t *testing.T) {
		opened, err := tree.Open("/a.txt", filesystem.NewOpenFlags(0))
		require.NoError(t, err)
		assert.True(t, opened.DirectIO)

		_, err = tree.Open("/foo", filesystem.NewOpenFlags(0))
		assert.ErrorIs(t, err, syscall.EISDIR)

		read, err := tree.Read("/a.txt", 3, 1)
		require.NoError(t, err)
		assert.Equal(t, "lph", string(read.Content))
	})
}

func TestDefaultTree(t *testing.T) {
	listing, err := DefaultTree().ListDirectory("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "hello.txt", "pid", "time"}, listing.Entries)
}
