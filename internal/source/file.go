// Package source provides uploadable files backed by an afero filesystem and
// the reader that turns them into text while reporting progress.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path/filepath"

	"github.com/spf13/afero"
)

// File is an uploadable file on an afero filesystem.
type File struct {
	fs          afero.Fs
	path        string
	name        string
	contentType string
	size        int64
}

// Open checks that path is a readable regular file and describes it. An empty
// contentType is derived from the file extension.
func Open(fsys afero.Fs, path, contentType string) (*File, error) {
	info, err := ValidateFilePath(fsys, path)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = TypeByExtension(path)
	}
	return &File{
		fs:          fsys,
		path:        path,
		name:        filepath.Base(path),
		contentType: contentType,
		size:        info.Size(),
	}, nil
}

func (f *File) Name() string { return f.name }
func (f *File) Type() string { return f.contentType }
func (f *File) Size() int64  { return f.size }
func (f *File) Path() string { return f.path }

func (f *File) Open() (io.ReadCloser, error) {
	h, err := f.fs.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	return h, nil
}

// TypeByExtension returns the media type registered for the extension of
// path without parameters, or "" when none is known.
func TypeByExtension(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if t == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return t
	}
	return mediaType
}

func ValidateFilePath(fsys afero.Fs, fp string) (fs.FileInfo, error) {
	if fp == "" {
		return nil, fmt.Errorf("file path is required")
	}
	info, err := fsys.Stat(fp)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("file not found: %s", fp)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("permission denied: %s", fp)
		default:
			return nil, fmt.Errorf("file not accessible: %w", err)
		}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path points to a directory: %s", fp)
	}
	f, err := fsys.Open(fp)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("permission denied: %s", fp)
		}
		return nil, fmt.Errorf("file is not readable: %w", err)
	}
	_ = f.Close()
	return info, nil
}
