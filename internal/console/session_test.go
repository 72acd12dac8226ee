package console

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/example/pricetag-widget/internal/imageprocessor"
	"github.com/example/pricetag-widget/internal/usecase"
)

type stubProcessor struct {
	mu       sync.Mutex
	result   *imageprocessor.Result
	err      error
	requests []imageprocessor.Request
}

func (s *stubProcessor) Process(_ context.Context, req imageprocessor.Request) (*imageprocessor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 2048)...)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newSession(processor *stubProcessor) (*Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	uc := usecase.NewSubmissionUseCase(processor, nil, zap.NewNop())
	return NewSession(uc, out, "google"), out
}

func TestSubmitWithoutImagePrintsValidation(t *testing.T) {
	processor := &stubProcessor{}
	session, out := newSession(processor)

	session.Execute(context.Background(), "submit")

	if !strings.Contains(out.String(), "Please upload an image file.") {
		t.Fatalf("expected validation message, got %q", out.String())
	}
	if strings.Contains(out.String(), "Processing image") {
		t.Fatal("control must not change without an image")
	}
	if len(processor.requests) != 0 {
		t.Fatalf("expected no backend call, got %d", len(processor.requests))
	}
}

func TestSubmitPrintsLoadingAndResult(t *testing.T) {
	processor := &stubProcessor{result: &imageprocessor.Result{StatusCode: 200, OK: true, Body: []byte(`{"result": "ok"}`)}}
	session, out := newSession(processor)
	path := writeFile(t, t.TempDir(), "tag.png", pngBytes())

	ctx := context.Background()
	session.Execute(ctx, "model openai")
	session.Execute(ctx, "key secret-key")
	session.Execute(ctx, "image "+path)
	session.Execute(ctx, "submit")

	got := out.String()
	if !strings.Contains(got, "Image selected: tag.png (image/png, 2.0 KB)") {
		t.Fatalf("expected preview line, got %q", got)
	}
	if !strings.Contains(got, "[... Processing image, please wait...]") {
		t.Fatalf("expected loading line, got %q", got)
	}
	if !strings.Contains(got, "{\n  \"result\": \"ok\"\n}") {
		t.Fatalf("expected indented JSON, got %q", got)
	}
	if strings.Contains(got, "secret-key") {
		t.Fatal("API key must not be echoed")
	}

	if len(processor.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(processor.requests))
	}
	req := processor.requests[0]
	if req.Model != "openai" || req.APIKey != "secret-key" || !strings.HasPrefix(req.ImageBase64, "data:image/png;base64,") {
		t.Fatalf("unexpected request: model=%s", req.Model)
	}
}

func TestClearDropsSelection(t *testing.T) {
	processor := &stubProcessor{result: &imageprocessor.Result{StatusCode: 200, OK: true, Body: []byte(`{}`)}}
	session, out := newSession(processor)
	path := writeFile(t, t.TempDir(), "tag.png", pngBytes())

	ctx := context.Background()
	session.Execute(ctx, "image "+path)
	session.Execute(ctx, "clear")
	session.Execute(ctx, "submit")

	if !strings.Contains(out.String(), "No image selected") {
		t.Fatalf("expected placeholder after clear, got %q", out.String())
	}
	if len(processor.requests) != 0 {
		t.Fatalf("expected no backend call, got %d", len(processor.requests))
	}
}

func TestImageReportsUnreadableFile(t *testing.T) {
	session, out := newSession(&stubProcessor{})

	session.Execute(context.Background(), "image "+filepath.Join(t.TempDir(), "missing.png"))

	if !strings.Contains(out.String(), "Preview failed: Unable to read image:") {
		t.Fatalf("expected preview failure, got %q", out.String())
	}
}

func TestSubmitFailurePrintsErrorList(t *testing.T) {
	processor := &stubProcessor{result: &imageprocessor.Result{
		StatusCode: 422,
		Body:       []byte(`{"detail":[{"error":"bad image","detailed_info":"too small"}]}`),
	}}
	session, out := newSession(processor)
	path := writeFile(t, t.TempDir(), "tag.png", pngBytes())

	ctx := context.Background()
	session.Execute(ctx, "image "+path)
	session.Execute(ctx, "submit")

	if !strings.Contains(out.String(), "Errors:\n- bad image\n  detailed_info: too small") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestSubmitTransportErrorPrintsMessage(t *testing.T) {
	processor := &stubProcessor{err: errors.New("connection refused")}
	session, out := newSession(processor)
	path := writeFile(t, t.TempDir(), "tag.png", pngBytes())

	ctx := context.Background()
	session.Execute(ctx, "image "+path)
	session.Execute(ctx, "submit")

	if !strings.Contains(out.String(), "Error: connection refused") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestDirSubmitsEveryImageInOrder(t *testing.T) {
	processor := &stubProcessor{result: &imageprocessor.Result{StatusCode: 200, OK: true, Body: []byte(`{"name":"milk"}`)}}
	session, out := newSession(processor)

	dir := t.TempDir()
	writeFile(t, dir, "b.PNG", pngBytes())
	writeFile(t, dir, "a.png", pngBytes())
	writeFile(t, dir, "notes.txt", []byte("skip me"))

	session.Execute(context.Background(), "dir "+dir)

	if len(processor.requests) != 2 {
		t.Fatalf("expected two submissions, got %d", len(processor.requests))
	}
	got := out.String()
	first, second := strings.Index(got, "== a.png"), strings.Index(got, "== b.PNG")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected a.png before b.PNG, got %q", got)
	}
	if strings.Contains(got, "notes.txt") {
		t.Fatal("non-image files must be skipped")
	}
}

func TestExecuteCommands(t *testing.T) {
	session, out := newSession(&stubProcessor{})
	ctx := context.Background()

	if session.Execute(ctx, "help") {
		t.Fatal("help must not quit")
	}
	if !strings.Contains(out.String(), "dir <folder>") {
		t.Fatalf("expected help text, got %q", out.String())
	}
	if session.Execute(ctx, "bogus") {
		t.Fatal("unknown command must not quit")
	}
	if !strings.Contains(out.String(), `unknown command "bogus"`) {
		t.Fatalf("expected unknown command notice, got %q", out.String())
	}
	if !session.Execute(ctx, "quit") {
		t.Fatal("quit must end the session")
	}
}
