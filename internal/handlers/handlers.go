package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/example/pricetag-widget/internal/auth"
	"github.com/example/pricetag-widget/internal/imagefile"
	"github.com/example/pricetag-widget/internal/render"
	"github.com/example/pricetag-widget/internal/usecase"
)

// MaxUploadSize is the default limit for an uploaded image.
const MaxUploadSize = 10 << 20

// multipartOverhead leaves room for the text fields and part headers.
const multipartOverhead = 1 << 20

// Options tunes the browser surface.
type Options struct {
	Models        []string
	MaxUploadSize int64
}

// RegisterRoutes wires the HTTP handlers to the Gin router. authMiddleware may
// be nil, in which case submissions are keyed by widget instance only.
func RegisterRoutes(router *gin.Engine, uc *usecase.SubmissionUseCase, opts Options, authMiddleware gin.HandlerFunc) {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = MaxUploadSize
	}
	h := &widgetHandler{uc: uc, opts: opts}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	if authMiddleware != nil {
		protected.Use(authMiddleware)
	}

	protected.GET("/", h.index)
	protected.POST("/preview", h.preview)
	protected.POST("/submit", h.submit)
	protected.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, uc.GetMetricsSummary())
	})
}

type widgetHandler struct {
	uc   *usecase.SubmissionUseCase
	opts Options
}

func (h *widgetHandler) index(c *gin.Context) {
	h.writePage(c, http.StatusOK, newPageSurface(), "", uuid.NewString())
}

func (h *widgetHandler) preview(c *gin.Context) {
	file, status, err := h.readImage(c)
	if err != nil {
		h.writeError(c, status, err)
		return
	}

	surface := newPageSurface()
	surface.preview = h.uc.Preview(c.Request.Context(), file)
	h.writePage(c, http.StatusOK, surface, c.PostForm("model"), widgetID(c))
}

func (h *widgetHandler) submit(c *gin.Context) {
	file, status, err := h.readImage(c)
	if err != nil {
		h.writeError(c, status, err)
		return
	}

	form := usecase.Form{
		Model:  c.PostForm("model"),
		APIKey: c.PostForm("api_key"),
		Image:  file,
	}

	surface := newPageSurface()
	if file != nil {
		surface.preview = h.uc.Preview(c.Request.Context(), file)
	}
	id := widgetID(c)
	h.uc.Submit(c.Request.Context(), auth.InstanceKey(c, id), surface, form)
	h.writePage(c, http.StatusOK, surface, form.Model, id)
}

// widgetID returns the instance id posted back by the page. A missing or
// malformed id starts a new instance.
func widgetID(c *gin.Context) string {
	if id, err := uuid.Parse(c.PostForm("widget_id")); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// readImage parses the multipart form and returns the selected image, or nil
// when the form carries no file.
func (h *widgetHandler) readImage(c *gin.Context) (*imagefile.File, int, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize+multipartOverhead)
	if err := c.Request.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, http.StatusRequestEntityTooLarge, errors.New("image exceeds the upload limit")
		case errors.Is(err, http.ErrNotMultipart):
			// url-encoded posts carry no file; the use case reports it
			return nil, http.StatusOK, nil
		default:
			return nil, http.StatusBadRequest, errors.New("unable to parse form")
		}
	}

	header, err := c.FormFile("image_file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, http.StatusOK, nil
	}
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("unable to read uploaded image")
	}
	if header.Size > h.opts.MaxUploadSize {
		return nil, http.StatusRequestEntityTooLarge, errors.New("image exceeds the upload limit")
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" && !strings.HasPrefix(ct, "image/") {
		return nil, http.StatusUnsupportedMediaType, errors.New("only image uploads are supported")
	}
	return imagefile.FromMultipart(header), http.StatusOK, nil
}

func (h *widgetHandler) writeError(c *gin.Context, status int, err error) {
	surface := newPageSurface()
	surface.response = render.Exception(err.Error())
	h.writePage(c, status, surface, "", uuid.NewString())
}

func (h *widgetHandler) writePage(c *gin.Context, status int, surface *pageSurface, model, instanceID string) {
	if model == "" && len(h.opts.Models) > 0 {
		model = h.opts.Models[0]
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, surface.data(h.opts.Models, model, instanceID)); err != nil {
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
