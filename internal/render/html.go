package render

import (
	"bytes"
	"html/template"
	"strings"
)

var fragments = template.Must(template.New("fragments").Parse(`
{{define "validation"}}<p style="color: red;">{{.Message}}</p>{{end}}
{{define "success"}}<pre>{{.JSON}}</pre>{{end}}
{{define "failure"}}<p style="color: red;">Errors:</p><ul style="color: red;">{{range .Items}}<li><p>{{.Error}}<br><strong>detailed_info:</strong> {{.DetailedInfo}}</p></li>{{end}}</ul>{{end}}
{{define "fallback"}}<p style="color: red;">Errors:</p><ul style="color: red;"><li>{{.Message}}</li></ul>{{end}}
{{define "exception"}}<p style="color: red;">Error: {{.Message}}</p>{{end}}
{{define "busy"}}<p style="color: orange;">{{.Message}}</p>{{end}}
{{define "preview_empty"}}<p>{{.}}</p>{{end}}
{{define "preview_image"}}<img src="{{.}}" alt="Image Preview">{{end}}
{{define "preview_error"}}<p style="color: red;">{{.}}</p>{{end}}
{{define "control"}}<button type="submit" id="submit_button"{{if not .Enabled}} disabled{{end}}>{{if .Loading}}<span class="spinner" aria-hidden="true"></span> {{end}}{{.Label}}</button>{{end}}
`))

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		// templates are static; a failure here is a programming error
		panic(err)
	}
	return template.HTML(buf.String())
}

// HTML renders the response region.
func HTML(r Response) template.HTML {
	switch r.Kind {
	case ResponseValidation:
		return execute("validation", r)
	case ResponseSuccess:
		return execute("success", r)
	case ResponseFailure:
		return execute("failure", r)
	case ResponseFallback:
		return execute("fallback", r)
	case ResponseException:
		return execute("exception", r)
	case ResponseBusy:
		return execute("busy", r)
	default:
		return ""
	}
}

// PreviewHTML renders the preview region.
func PreviewHTML(p Preview) template.HTML {
	switch p.Kind {
	case PreviewLoaded:
		if !strings.HasPrefix(p.DataURL, "data:image/") {
			return execute("preview_error", "Unable to preview the selected file")
		}
		return execute("preview_image", template.URL(p.DataURL))
	case PreviewError:
		return execute("preview_error", p.Message)
	default:
		return execute("preview_empty", NoImageMessage)
	}
}

// ControlHTML renders the submit button.
func ControlHTML(c Control) template.HTML {
	return execute("control", c)
}
