// Package demo contains small read-only filesystems served by the hellofs
// command and used by tests.
package demo

import (
	"syscall"

	"fusebridge/filesystem"
	"fusebridge/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("demo")
)

const (
	HelloPath    = "/hello.txt"
	HelloContent = "Hello world!\n"
)

// Hello serves a root directory holding a single file, hello.txt.
type Hello struct{}

func (Hello) GetAttributes(path string) (filesystem.AttributeResult, error) {
	switch path {
	case "/":
		// "/" and "/."
		return dirAttributes(2)
	case HelloPath:
		return fileAttributes(int64(len(HelloContent)))
	default:
		return filesystem.AttributeResult{}, syscall.ENOENT
	}
}

func (Hello) ListDirectory(path string) (filesystem.DirectoryResult, error) {
	if path != "/" {
		return filesystem.DirectoryResult{}, syscall.ENOENT
	}
	return filesystem.DirectoryResult{Entries: []string{HelloPath[1:]}}, nil
}

func (Hello) Open(path string, _ filesystem.OpenFlags) (filesystem.OpenResult, error) {
	if path != HelloPath {
		return filesystem.OpenResult{}, syscall.ENOENT
	}
	return filesystem.OpenResult{}, nil
}

func (Hello) Read(path string, maxBytes uint32, offset int64) (filesystem.ReadResult, error) {
	if path != HelloPath {
		return filesystem.ReadResult{}, syscall.ENOENT
	}
	content, err := window([]byte(HelloContent), maxBytes, offset)
	if err != nil {
		return filesystem.ReadResult{}, err
	}
	return filesystem.ReadResult{Content: content}, nil
}

// window returns at most maxBytes of content starting at offset. An offset
// at or past the end yields no bytes.
func window(content []byte, maxBytes uint32, offset int64) ([]byte, error) {
	if offset < 0 {
		logger.Error("negative offset is not supported")
		return nil, syscall.ENOENT
	}
	if offset >= int64(len(content)) {
		logger.Debug("offset out of bounds, returning 0 bytes read")
		return []byte{}, nil
	}
	end := offset + int64(maxBytes)
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return content[offset:end], nil
}

func dirAttributes(links uint64) (filesystem.AttributeResult, error) {
	status, err := filesystem.NewFileStatus(
		filesystem.MustMode(filesystem.Directory, filesystem.MustPermissions(0o755)),
		links,
		0,
	)
	return filesystem.AttributeResult{Status: status}, err
}

func fileAttributes(size int64) (filesystem.AttributeResult, error) {
	status, err := filesystem.NewFileStatus(
		filesystem.MustMode(filesystem.RegularFile, filesystem.MustPermissions(0o444)),
		1,
		size,
	)
	return filesystem.AttributeResult{Status: status}, err
}
