package io

import (
	"io/fs"
	"os"
)

// FileIO is an interface for file io operations
type FileIO interface {
	Stat(target string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFileAtomic(name string, data []byte, perm os.FileMode) error
	Remove(name string) error
	WalkDir(fsys fs.FS, root string, fn fs.WalkDirFunc) error
	MkdirAll(name string, perm os.FileMode) error
}
