package demo

import (
	"os"
	"path"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fusebridge/filesystem"

	"github.com/tidwall/btree"
)

// Generator produces the content of a file each time it is read.
type Generator func() string

type treeNode struct {
	dir      bool
	generate Generator
}

// Tree serves a static hierarchy of generated files. Directories exist
// implicitly as the parents of files. Paths are kept in a btree so the
// children of a directory are one ordered range scan.
type Tree struct {
	nodes btree.Map[string, treeNode]
}

// NewTree builds a Tree from absolute file paths.
func NewTree(files map[string]Generator) *Tree {
	t := &Tree{}
	t.nodes.Set("/", treeNode{dir: true})
	for p, gen := range files {
		p = path.Clean("/" + p)
		t.nodes.Set(p, treeNode{generate: gen})
		for dir := path.Dir(p); dir != "/"; dir = path.Dir(dir) {
			t.nodes.Set(dir, treeNode{dir: true})
		}
	}
	return t
}

// DefaultTree is the sample hierarchy served by `hellofs -tree`.
func DefaultTree() *Tree {
	return NewTree(map[string]Generator{
		"/hello.txt":   func() string { return "Hello world!" },
		"/pid":         func() string { return strconv.Itoa(os.Getpid()) },
		"/time":        func() string { return time.Now().Format(time.ANSIC) },
		"/foo/bar/baz": func() string { return "blub" },
		"/foo/bar/qux": func() string { return "blub" },
		"/foo/fux":     func() string { return "blub" },
	})
}

// children returns the direct children of dir in lexical order.
func (t *Tree) children(dir string) []string {
	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}

	var names []string
	t.nodes.Ascend(prefix, func(key string, _ treeNode) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		rest := key[len(prefix):]
		if rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
		return true
	})
	return names
}

func (t *Tree) GetAttributes(p string) (filesystem.AttributeResult, error) {
	node, ok := t.nodes.Get(p)
	if !ok {
		return filesystem.AttributeResult{}, syscall.ENOENT
	}
	if node.dir {
		subdirs := 0
		for _, name := range t.children(p) {
			if child, _ := t.nodes.Get(path.Join(p, name)); child.dir {
				subdirs++
			}
		}
		return dirAttributes(uint64(2 + subdirs))
	}
	return fileAttributes(int64(len(node.generate())))
}

func (t *Tree) ListDirectory(p string) (filesystem.DirectoryResult, error) {
	node, ok := t.nodes.Get(p)
	if !ok {
		return filesystem.DirectoryResult{}, syscall.ENOENT
	}
	if !node.dir {
		return filesystem.DirectoryResult{}, syscall.ENOTDIR
	}
	return filesystem.DirectoryResult{Entries: t.children(p)}, nil
}

func (t *Tree) Open(p string, _ filesystem.OpenFlags) (filesystem.OpenResult, error) {
	node, ok := t.nodes.Get(p)
	switch {
	case !ok:
		return filesystem.OpenResult{}, syscall.ENOENT
	case node.dir:
		return filesystem.OpenResult{}, syscall.EISDIR
	}
	// content is generated per read, so the page cache must not be trusted
	return filesystem.OpenResult{DirectIO: true}, nil
}

func (t *Tree) Read(p string, maxBytes uint32, offset int64) (filesystem.ReadResult, error) {
	node, ok := t.nodes.Get(p)
	switch {
	case !ok:
		return filesystem.ReadResult{}, syscall.ENOENT
	case node.dir:
		return filesystem.ReadResult{}, syscall.EISDIR
	}
	content, err := window([]byte(node.generate()), maxBytes, offset)
	if err != nil {
		return filesystem.ReadResult{}, err
	}
	return filesystem.ReadResult{Content: content}, nil
}
