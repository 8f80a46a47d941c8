package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/pkg/models"
)

// DefaultFileName is where the content is written when no path is configured.
const DefaultFileName = "scraped_content.txt"

// File keeps the content in a single file on an afero filesystem.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile creates a file-backed store. A nil fs uses the OS filesystem.
func NewFile(fsys afero.Fs, path string) *File {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultFileName
	}
	return &File{fs: fsys, path: path}
}

// Path returns the artifact location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Write(_ context.Context, page models.Page) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create content directory: %w", err)
		}
	}
	if err := afero.WriteFile(f.fs, f.path, []byte(page.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

func (f *File) Read(_ context.Context) (string, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", pipeline.ErrContentMissing, f.path)
		}
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return string(data), nil
}

func (f *File) Stat(_ context.Context) (Info, error) {
	fi, err := f.fs.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, fmt.Errorf("%w: %s", pipeline.ErrContentMissing, f.path)
		}
		return Info{}, fmt.Errorf("failed to stat content: %w", err)
	}
	return Info{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
