// Package library lists and removes downloaded episodes in the download folder.
package library

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kasuboski/simulcast/pkg/apperr"
	mio "github.com/kasuboski/simulcast/pkg/io"
	"github.com/kasuboski/simulcast/pkg/logger"
	"go.uber.org/zap"
)

var videoExtensions = []string{".mp4", ".avi", ".mkv", ".m4v", ".iso", ".ts", ".m2ts", ".webm"}

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_library.go github.com/kasuboski/simulcast/pkg/library Library

type Library interface {
	Files(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, filename string) error
}

// Folder is a download folder on disk
type Folder struct {
	dir  string
	fsys fs.FS
	io   mio.FileIO
}

var _ Library = (*Folder)(nil)

func New(dir string, fileIO mio.FileIO) *Folder {
	return NewFromFS(dir, os.DirFS(dir), fileIO)
}

// NewFromFS lists files from fsys while removals go to dir
func NewFromFS(dir string, fsys fs.FS, fileIO mio.FileIO) *Folder {
	if fileIO == nil {
		fileIO = &mio.MediaFileSystem{}
	}
	return &Folder{
		dir:  dir,
		fsys: fsys,
		io:   fileIO,
	}
}

func (f *Folder) Dir() string {
	return f.dir
}

// Files returns the video files below the folder as slash separated relative paths
func (f *Folder) Files(ctx context.Context) ([]string, error) {
	log := logger.FromCtx(ctx)

	files := []string{}
	err := f.io.WalkDir(f.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			log.Debugw("skipping unreadable path", zap.String("path", p), zap.Error(err))
			return fs.SkipDir
		}

		if d.IsDir() {
			if p != "." && isHidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) || !isVideoFile(p) {
			return nil
		}

		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence("list download folder", err)
	}

	return files, nil
}

// Remove deletes filename, a path relative to the folder
func (f *Folder) Remove(ctx context.Context, filename string) error {
	name := path.Clean(filepath.ToSlash(filename))
	if !fs.ValidPath(name) || name == "." {
		return apperr.NotFound("remove file", errors.New("invalid file name "+filename))
	}

	err := f.io.Remove(filepath.Join(f.dir, filepath.FromSlash(name)))
	switch {
	case err == nil:
		logger.FromCtx(ctx).Infow("removed file", zap.String("file", name))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return apperr.NotFound("remove file", err)
	default:
		return apperr.Persistence("remove file", err)
	}
}

func isVideoFile(name string) bool {
	return slices.Contains(videoExtensions, strings.ToLower(path.Ext(name)))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
