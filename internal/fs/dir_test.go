package fs

import (
	"context"
	"errors"
	"os"
	"sort"
	"syscall"
	"testing"

	"fusebridge/internal/demo"
	"fusebridge/internal/state"
	"fusebridge/internal/trampoline"

	"bazil.org/fuse"
)

func setupTestFS(t *testing.T) *BridgeFS {
	t.Helper()
	t.Cleanup(state.Clear)

	tree := demo.NewTree(map[string]demo.Generator{
		"/file1.txt":           func() string { return "test" },
		"/dir1/file2.txt":      func() string { return "test file content" },
		"/dir1/dir2/file3.txt": func() string { return "" },
	})
	state.Register(tree)

	return NewBridgeFS(trampoline.NewCaller(trampoline.NewOperations[*demo.Tree]()))
}

func direntNames(entries []fuse.Dirent) []string {
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}

func TestDirOperations(t *testing.T) {
	vfs := setupTestFS(t)
	ctx := context.Background()

	// Test root directory
	t.Run("RootDirectory", func(t *testing.T) {
		root, rootErr := vfs.Root()
		if rootErr != nil {
			t.Fatalf("Failed to get root: %v", rootErr)
		}

		// Check attributes
		attr := &fuse.Attr{}
		if attrErr := root.Attr(ctx, attr); attrErr != nil {
			t.Errorf("Failed to get root attributes: %v", attrErr)
		}
		if attr.Mode&os.ModeDir == 0 {
			t.Error("Root should be a directory")
		}
		if attr.Mode.Perm() != 0o755 {
			t.Errorf("Expected root permissions 0755, got %o", attr.Mode.Perm())
		}
		if attr.Nlink != 3 {
			t.Errorf("Expected root nlink 3, got %d", attr.Nlink)
		}

		// Check directory listing
		dir, ok := root.(*Dir)
		if !ok {
			t.Fatal("Root should be a Dir")
		}

		entries, readErr := dir.ReadDirAll(ctx)
		if readErr != nil {
			t.Fatalf("Failed to read root directory: %v", readErr)
		}

		want := []string{".", "..", "dir1", "file1.txt"}
		got := direntNames(entries)
		if len(got) != len(want) {
			t.Fatalf("Expected entries %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Expected entries %v, got %v", want, got)
				break
			}
		}
	})

	// Test lookup of nested nodes
	t.Run("LookupNested", func(t *testing.T) {
		root, _ := vfs.Root()

		dir1, err := root.(*Dir).Lookup(ctx, "dir1")
		if err != nil {
			t.Fatalf("Failed to lookup dir1: %v", err)
		}
		if _, ok := dir1.(*Dir); !ok {
			t.Fatalf("Expected dir1 to be a Dir, got %T", dir1)
		}

		dir2, err := dir1.(*Dir).Lookup(ctx, "dir2")
		if err != nil {
			t.Fatalf("Failed to lookup dir2: %v", err)
		}

		file3, err := dir2.(*Dir).Lookup(ctx, "file3.txt")
		if err != nil {
			t.Fatalf("Failed to lookup file3.txt: %v", err)
		}
		file, ok := file3.(*File)
		if !ok {
			t.Fatalf("Expected file3.txt to be a File, got %T", file3)
		}
		if file.path.String() != "/dir1/dir2/file3.txt" {
			t.Errorf("Unexpected path %q", file.path.String())
		}
	})

	// Test lookup of a missing entry
	t.Run("LookupMissing", func(t *testing.T) {
		root, _ := vfs.Root()

		_, err := root.(*Dir).Lookup(ctx, "missing")
		if !errors.Is(err, syscall.ENOENT) {
			t.Errorf("Expected ENOENT, got %v", err)
		}

		var fsErr *Error
		if !errors.As(err, &fsErr) {
			t.Fatalf("Expected *Error, got %T", err)
		}
		if fsErr.Op != OpLookup || fsErr.Path != "/missing" {
			t.Errorf("Unexpected error context: %+v", fsErr)
		}
		if fsErr.Errno() != fuse.Errno(syscall.ENOENT) {
			t.Errorf("Expected fuse errno ENOENT, got %v", fsErr.Errno())
		}
	})

	// Test listing a file as a directory
	t.Run("ListFile", func(t *testing.T) {
		dir := &Dir{fs: vfs, path: NewVirtualPath("/file1.txt")}
		if _, err := dir.ReadDirAll(ctx); !errors.Is(err, syscall.ENOTDIR) {
			t.Errorf("Expected ENOTDIR, got %v", err)
		}
	})
}

func TestDirAfterPanic(t *testing.T) {
	vfs := setupTestFS(t)
	ctx := context.Background()

	state.Clear()

	root, _ := vfs.Root()
	attr := &fuse.Attr{}
	if err := root.Attr(ctx, attr); !errors.Is(err, syscall.ENOTRECOVERABLE) {
		t.Errorf("Expected ENOTRECOVERABLE once the registry is cleared, got %v", err)
	}
}
