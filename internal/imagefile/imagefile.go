// Package imagefile models a user selected image and reads it into a data URL.
package imagefile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/pricetag-widget/internal/dataurl"
)

// ErrNotImage is returned when the selected file does not contain image data.
var ErrNotImage = errors.New("selected file is not an image")

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// File is a selected image that has not been read yet.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// New wraps an arbitrary opener. Mostly useful for tests and in-memory uploads.
func New(name string, size int64, open func() (io.ReadCloser, error)) *File {
	return &File{Name: name, Size: size, open: open}
}

// FromPath selects a file on the local filesystem.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory", path)
	}
	return New(filepath.Base(path), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// FromMultipart selects an uploaded form file.
func FromMultipart(header *multipart.FileHeader) *File {
	return New(header.Filename, header.Size, func() (io.ReadCloser, error) {
		return header.Open()
	})
}

type readResult struct {
	url string
	err error
}

// ReadDataURL reads the file and encodes it as a base64 data URL. The read runs
// in its own goroutine and is awaited here, so a cancelled context returns
// immediately even when the underlying reader blocks.
func ReadDataURL(ctx context.Context, f *File) (string, error) {
	if f == nil || f.open == nil {
		return "", errors.New("no file selected")
	}

	done := make(chan readResult, 1)
	go func() {
		url, err := f.read()
		done <- readResult{url: url, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.url, res.err
	}
}

func (f *File) read() (string, error) {
	rc, err := f.open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	mime := dataurl.SniffMIME(data)
	if !dataurl.IsImage(mime) {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return dataurl.Encode(mime, data), nil
}

// ListDir returns the image files directly inside dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !hasImageExtension(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func hasImageExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range imageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
