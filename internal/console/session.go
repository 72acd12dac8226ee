// Package console drives the submission widget from an interactive terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/pricetag-widget/internal/imagefile"
	"github.com/example/pricetag-widget/internal/render"
	"github.com/example/pricetag-widget/internal/usecase"
)

const helpText = `Commands:
  model <id>      select the processing model
  key <api key>   set the API key sent with each submission
  image <path>    select an image and show its preview
  clear           drop the selected image
  submit          send the selected image for processing
  dir <folder>    submit every .jpg/.jpeg/.png in folder, one at a time
  help            show this text
  quit            leave the console`

// Session holds the widget inputs of one terminal user.
type Session struct {
	uc      *usecase.SubmissionUseCase
	out     io.Writer
	id      string
	form    usecase.Form
	surface *terminalSurface
}

// NewSession creates a session writing to out with model preselected.
func NewSession(uc *usecase.SubmissionUseCase, out io.Writer, model string) *Session {
	return &Session{
		uc:      uc,
		out:     out,
		id:      "console:" + uuid.NewString(),
		form:    usecase.Form{Model: model},
		surface: &terminalSurface{out: out},
	}
}

// Execute runs one command line. It reports true when the user asked to quit.
func (s *Session) Execute(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit":
		return true
	case "help":
		s.println(helpText)
	case "model":
		if arg == "" {
			s.printf("model: %s\n", s.form.Model)
			return false
		}
		s.form.Model = arg
		s.printf("model set to %s\n", arg)
	case "key":
		s.form.APIKey = arg
		if arg == "" {
			s.println("API key cleared")
		} else {
			s.println("API key set")
		}
	case "image":
		s.selectImage(ctx, arg)
	case "clear":
		s.form.Image = nil
		s.println(render.PreviewText(render.NoImage()))
	case "submit":
		s.uc.Submit(ctx, s.id, s.surface, s.form)
	case "dir":
		s.submitDir(ctx, arg)
	default:
		s.printf("unknown command %q, type help\n", cmd)
	}
	return false
}

func (s *Session) selectImage(ctx context.Context, path string) {
	if path == "" {
		s.println("usage: image <path>")
		return
	}
	file, err := imagefile.FromPath(path)
	if err != nil {
		s.form.Image = nil
		s.println(render.PreviewText(render.PreviewFailed("Unable to read image: " + err.Error())))
		return
	}
	// a selection that fails to preview stays selected, like a file input
	s.form.Image = file
	s.println(render.PreviewText(s.uc.Preview(ctx, file)))
}

func (s *Session) submitDir(ctx context.Context, dir string) {
	if dir == "" {
		s.println("usage: dir <folder>")
		return
	}
	paths, err := imagefile.ListDir(dir)
	if err != nil {
		s.println(render.Text(render.Exception(err.Error())))
		return
	}
	if len(paths) == 0 {
		s.printf("no images in %s\n", dir)
		return
	}

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		s.printf("== %s\n", filepath.Base(path))
		file, err := imagefile.FromPath(path)
		if err != nil {
			s.println(render.Text(render.Exception("unable to read image: " + err.Error())))
			continue
		}
		form := s.form
		form.Image = file
		s.uc.Submit(ctx, s.id, s.surface, form)
	}
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// terminalSurface prints the widget as it changes. The idle control is not
// echoed; the prompt coming back already says so.
type terminalSurface struct {
	out io.Writer
}

func (t *terminalSurface) SetControl(c render.Control) {
	if c.Loading {
		fmt.Fprintln(t.out, render.ControlText(c))
	}
}

func (t *terminalSurface) SetResponse(r render.Response) {
	if text := render.Text(r); text != "" {
		fmt.Fprintln(t.out, text)
	}
}
