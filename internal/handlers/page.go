package handlers

import (
	"html/template"

	"github.com/example/pricetag-widget/internal/render"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Price tag image processing</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; }
label { display: block; margin-top: 1em; }
#preview img { max-width: 100%; max-height: 320px; margin-top: 1em; }
pre { background: #f4f4f4; padding: 1em; overflow-x: auto; }
.spinner { display: inline-block; width: 0.8em; height: 0.8em; border: 2px solid #999; border-top-color: transparent; border-radius: 50%; animation: spin 1s linear infinite; }
@keyframes spin { to { transform: rotate(360deg); } }
</style>
</head>
<body>
<h1>Price tag image processing</h1>
<form id="widget" method="post" action="/submit" enctype="multipart/form-data">
<input id="widget_id" name="widget_id" type="hidden" value="{{.WidgetID}}">
<label for="model">Model</label>
<select id="model" name="model">
{{- range .Models}}
<option value="{{.}}"{{if eq . $.Model}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<label for="api_key">API key</label>
<input id="api_key" name="api_key" type="password" autocomplete="off">
<label for="image_file">Price tag image</label>
<input id="image_file" name="image_file" type="file" accept="image/png,image/jpeg">
<button type="submit" formaction="/preview">Preview</button>
<div id="preview">{{.Preview}}</div>
{{.Control}}
</form>
<div id="response">{{.Response}}</div>
</body>
</html>
`))

type pageData struct {
	WidgetID string
	Models   []string
	Model    string
	Preview  template.HTML
	Control  template.HTML
	Response template.HTML
}

// pageSurface records what a submission draws so the page can be rendered
// once the request settles.
type pageSurface struct {
	control  render.Control
	response render.Response
	preview  render.Preview
}

func newPageSurface() *pageSurface {
	return &pageSurface{control: render.IdleControl(), response: render.Empty(), preview: render.NoImage()}
}

func (s *pageSurface) SetControl(c render.Control)   { s.control = c }
func (s *pageSurface) SetResponse(r render.Response) { s.response = r }

func (s *pageSurface) data(models []string, model, widgetID string) pageData {
	return pageData{
		WidgetID: widgetID,
		Models:   models,
		Model:    model,
		Preview:  render.PreviewHTML(s.preview),
		Control:  render.ControlHTML(s.control),
		Response: render.HTML(s.response),
	}
}
