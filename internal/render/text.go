package render

import (
	"fmt"
	"strings"
)

// Text renders the response region for a terminal.
func Text(r Response) string {
	switch r.Kind {
	case ResponseValidation, ResponseBusy:
		return r.Message
	case ResponseSuccess:
		return r.JSON
	case ResponseFailure:
		var b strings.Builder
		b.WriteString("Errors:")
		for _, item := range r.Items {
			fmt.Fprintf(&b, "\n- %s\n  detailed_info: %s", item.Error, item.DetailedInfo)
		}
		return b.String()
	case ResponseFallback:
		return "Errors:\n- " + r.Message
	case ResponseException:
		return "Error: " + r.Message
	default:
		return ""
	}
}

// PreviewText describes the preview region. Terminals cannot draw the image,
// so the MIME type and size are shown instead.
func PreviewText(p Preview) string {
	switch p.Kind {
	case PreviewLoaded:
		mime := strings.TrimPrefix(p.DataURL, "data:")
		if semi := strings.IndexByte(mime, ';'); semi >= 0 {
			mime = mime[:semi]
		}
		return fmt.Sprintf("Image selected: %s (%s, %s)", p.Name, mime, humanSize(p.Size))
	case PreviewError:
		return "Preview failed: " + p.Message
	default:
		return NoImageMessage
	}
}

// ControlText renders the submit control as a status line.
func ControlText(c Control) string {
	if c.Loading {
		return "[... " + c.Label + "]"
	}
	return "[" + c.Label + "]"
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
