package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/example/pricetag-widget/internal/imageprocessor"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return doc
}

func TestHTMLValidation(t *testing.T) {
	doc := parse(t, string(HTML(Validation())))
	if got := doc.Find("p").Text(); got != "Please upload an image file." {
		t.Fatalf("unexpected validation text: %q", got)
	}
}

func TestHTMLSuccessIsPreformattedJSON(t *testing.T) {
	doc := parse(t, string(HTML(Success("{\n  \"result\": \"ok\"\n}"))))
	pre := doc.Find("pre")
	if pre.Length() != 1 {
		t.Fatalf("expected one <pre>, got %d", pre.Length())
	}
	if pre.Text() != "{\n  \"result\": \"ok\"\n}" {
		t.Fatalf("unexpected <pre> content: %q", pre.Text())
	}
}

func TestHTMLFailureListsEachItem(t *testing.T) {
	resp := Failure([]imageprocessor.ErrorItem{
		{Error: "bad image", DetailedInfo: "too small"},
		{Error: "<script>", DetailedInfo: "escaped"},
	})
	html := string(HTML(resp))
	doc := parse(t, html)

	items := doc.Find("ul li")
	if items.Length() != 2 {
		t.Fatalf("expected 2 items, got %d", items.Length())
	}
	first := items.First().Text()
	if !strings.Contains(first, "bad image") || !strings.Contains(first, "too small") {
		t.Fatalf("first item missing content: %q", first)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("item text must be escaped")
	}
}

func TestHTMLFallbackHasSingleItem(t *testing.T) {
	doc := parse(t, string(HTML(Fallback())))
	items := doc.Find("ul li")
	if items.Length() != 1 {
		t.Fatalf("expected exactly one item, got %d", items.Length())
	}
	if items.Text() != "Unable to process" {
		t.Fatalf("unexpected fallback text: %q", items.Text())
	}
}

func TestHTMLException(t *testing.T) {
	doc := parse(t, string(HTML(Exception("connection refused"))))
	if got := doc.Find("p").Text(); got != "Error: connection refused" {
		t.Fatalf("unexpected exception text: %q", got)
	}
}

func TestHTMLEmpty(t *testing.T) {
	if HTML(Empty()) != "" {
		t.Fatal("expected empty response region")
	}
}

func TestPreviewHTML(t *testing.T) {
	url := "data:image/png;base64,iVBORw0KGgo="
	doc := parse(t, string(PreviewHTML(Loaded("tag.png", 8, url))))
	src, ok := doc.Find("img").Attr("src")
	if !ok || src != url {
		t.Fatalf("unexpected img src: %q", src)
	}
	if alt, _ := doc.Find("img").Attr("alt"); alt != "Image Preview" {
		t.Fatalf("unexpected alt: %q", alt)
	}

	doc = parse(t, string(PreviewHTML(NoImage())))
	if doc.Find("p").Text() != "No image selected" {
		t.Fatalf("unexpected placeholder: %q", doc.Find("p").Text())
	}

	doc = parse(t, string(PreviewHTML(Loaded("x", 1, "javascript:alert(1)"))))
	if doc.Find("img").Length() != 0 {
		t.Fatal("non image data URL must not be rendered as an image")
	}
}

func TestControlHTML(t *testing.T) {
	doc := parse(t, string(ControlHTML(LoadingControl())))
	button := doc.Find("button")
	if _, disabled := button.Attr("disabled"); !disabled {
		t.Fatal("loading control must be disabled")
	}
	if button.Find(".spinner").Length() != 1 {
		t.Fatal("loading control must show a spinner")
	}
	if !strings.Contains(button.Text(), LoadingLabel) {
		t.Fatalf("unexpected loading label: %q", button.Text())
	}

	doc = parse(t, string(ControlHTML(IdleControl())))
	button = doc.Find("button")
	if _, disabled := button.Attr("disabled"); disabled {
		t.Fatal("idle control must be enabled")
	}
	if button.Text() != "Submit" {
		t.Fatalf("unexpected idle label: %q", button.Text())
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		resp Response
		want string
	}{
		{Validation(), "Please upload an image file."},
		{Success("{}"), "{}"},
		{Failure([]imageprocessor.ErrorItem{{Error: "E1", DetailedInfo: "D1"}}), "Errors:\n- E1\n  detailed_info: D1"},
		{Fallback(), "Errors:\n- Unable to process"},
		{Exception("boom"), "Error: boom"},
		{Busy(), BusyMessage},
		{Empty(), ""},
	}
	for _, tc := range tests {
		if got := Text(tc.resp); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.resp.Kind, tc.want, got)
		}
	}
}

func TestPreviewText(t *testing.T) {
	got := PreviewText(Loaded("tag.png", 10*1024, "data:image/png;base64,AAAA"))
	if got != "Image selected: tag.png (image/png, 10.0 KB)" {
		t.Fatalf("unexpected preview text: %q", got)
	}
	if PreviewText(NoImage()) != NoImageMessage {
		t.Fatal("unexpected placeholder text")
	}
	if PreviewText(PreviewFailed("nope")) != "Preview failed: nope" {
		t.Fatal("unexpected preview error text")
	}
}
