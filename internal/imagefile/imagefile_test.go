package imagefile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 32)...)

func TestReadDataURLFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tag.png")
	if err := os.WriteFile(path, pngBytes, 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	f, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath failed: %v", err)
	}
	if f.Name != "tag.png" || f.Size != int64(len(pngBytes)) {
		t.Fatalf("unexpected file metadata: %+v", f)
	}

	url, err := ReadDataURL(context.Background(), f)
	if err != nil {
		t.Fatalf("ReadDataURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL: %s", url)
	}
}

func TestReadDataURLRejectsNonImage(t *testing.T) {
	f := New("notes.txt", 5, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("hello")), nil
	})

	_, err := ReadDataURL(context.Background(), f)
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestReadDataURLPropagatesOpenError(t *testing.T) {
	f := New("gone.png", 0, func() (io.ReadCloser, error) {
		return nil, os.ErrNotExist
	})

	if _, err := ReadDataURL(context.Background(), f); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

type blockingReader struct{ release chan struct{} }

func (b blockingReader) Read(p []byte) (int, error) {
	<-b.release
	return 0, io.EOF
}

func TestReadDataURLHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := New("slow.png", 0, func() (io.ReadCloser, error) {
		return io.NopCloser(blockingReader{release: release}), nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := ReadDataURL(ctx, f); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestListDirFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "c.jpeg", "readme.md", "d.gif"} {
		if err := os.WriteFile(filepath.Join(dir, name), pngBytes, 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	paths, err := ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	if strings.Join(names, ",") != "a.jpg,b.PNG,c.jpeg" {
		t.Fatalf("unexpected listing: %v", names)
	}
}
