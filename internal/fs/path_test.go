package fs

import (
	"testing"
)

func TestVirtualPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple path",
			input:    "test.txt",
			expected: "/test.txt",
		},
		{
			name:     "nested path",
			input:    "dir/test.txt",
			expected: "/dir/test.txt",
		},
		{
			name:     "already absolute path",
			input:    "/dir/test.txt",
			expected: "/dir/test.txt",
		},
		{
			name:     "dot path gets cleaned",
			input:    "./test.txt",
			expected: "/test.txt",
		},
		{
			name:     "double dot path gets cleaned",
			input:    "dir/../test.txt",
			expected: "/test.txt",
		},
		{
			name:     "double dot cannot escape root",
			input:    "../../etc",
			expected: "/etc",
		},
		{
			name:     "empty path is root",
			input:    "",
			expected: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := NewVirtualPath(tt.input)
			if vp.String() != tt.expected {
				t.Errorf("Expected path %q, got %q", tt.expected, vp.String())
			}
		})
	}
}

func TestVirtualPathJoin(t *testing.T) {
	root := NewVirtualPath("/")
	if !root.IsRoot() {
		t.Fatal("Expected / to be root")
	}

	child := root.Join("hello.txt")
	if child.String() != "/hello.txt" {
		t.Errorf("Expected %q, got %q", "/hello.txt", child.String())
	}
	if child.IsRoot() {
		t.Error("Expected child not to be root")
	}

	nested := NewVirtualPath("/foo").Join("bar")
	if nested.String() != "/foo/bar" {
		t.Errorf("Expected %q, got %q", "/foo/bar", nested.String())
	}
}
