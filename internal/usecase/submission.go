package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/pricetag-widget/internal/imagefile"
	"github.com/example/pricetag-widget/internal/imageprocessor"
	"github.com/example/pricetag-widget/internal/logging"
	"github.com/example/pricetag-widget/internal/render"
)

// Phase is the position of a submission in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseEncoding
	PhaseAwaitingResponse
	PhaseRenderedSuccess
	PhaseRenderedFailure
	PhaseRenderedException
)

// Form holds the current values of the widget inputs.
type Form struct {
	Model  string
	APIKey string
	Image  *imagefile.File
}

// Surface is where a submission draws its state. Implementations bind the
// widget to a concrete display: an HTML page, a terminal, a test recorder.
type Surface interface {
	SetControl(render.Control)
	SetResponse(render.Response)
}

// PhaseObserver is optionally implemented by surfaces that want to follow the
// lifecycle transitions of a submission.
type PhaseObserver interface {
	SetPhase(Phase)
}

// SubmissionUseCase encapsulates the image submission widget.
type SubmissionUseCase struct {
	processor      imageprocessor.Client
	guard          Guard
	metrics        *metrics
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewSubmissionUseCase constructs a new use case instance. A nil guard falls
// back to an in-process guard.
func NewSubmissionUseCase(processor imageprocessor.Client, guard Guard, logger *zap.Logger) *SubmissionUseCase {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &SubmissionUseCase{
		processor:      processor,
		guard:          guard,
		metrics:        newMetrics(),
		logger:         logger.Named("submission_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// Preview reads the selected file for display. With no file the placeholder is
// returned without reading anything.
func (uc *SubmissionUseCase) Preview(ctx context.Context, file *imagefile.File) render.Preview {
	if file == nil {
		return render.NoImage()
	}

	url, err := imagefile.ReadDataURL(ctx, file)
	if err != nil {
		uc.logger.Warn("preview read failed", zap.String("file", file.Name), zap.Error(err))
		return render.PreviewFailed("Unable to read image: " + err.Error())
	}
	return render.Loaded(file.Name, file.Size, url)
}

// Submit runs one submission: validate, encode, post, render. The returned
// response is also the last one written to surface. instance scopes the
// in-flight guard; the submit control on surface is disabled while the
// request is outstanding and always restored afterwards.
func (uc *SubmissionUseCase) Submit(ctx context.Context, instance string, surface Surface, form Form) render.Response {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.submit", requestID)
	observer, _ := surface.(PhaseObserver)
	setPhase := func(p Phase) {
		if observer != nil {
			observer.SetPhase(p)
		}
	}

	surface.SetResponse(render.Empty())

	setPhase(PhaseValidating)
	if form.Image == nil {
		resp := render.Validation()
		uc.metrics.record(resp.Kind)
		surface.SetResponse(resp)
		setPhase(PhaseIdle)
		return resp
	}

	key := "submission:" + instance
	acquired := false
	err := uc.withGuardRetry(ctx, requestID, "guard.acquire", func() error {
		ok, err := uc.guard.Acquire(ctx, key, requestID)
		acquired = ok
		return err
	})
	// release is token-checked, so it is also safe when an acquire failed after
	// its write was applied
	release := acquired
	if err != nil {
		// the guard only prevents double submits; an unavailable guard must not
		// block the submission itself
		opLogger.Warn("submission guard unavailable, continuing without it", zap.Error(err))
		release = true
	} else if !acquired {
		resp := render.Busy()
		uc.metrics.record(resp.Kind)
		surface.SetResponse(resp)
		setPhase(PhaseIdle)
		return resp
	}

	surface.SetControl(render.LoadingControl())
	defer func() {
		surface.SetControl(render.IdleControl())
		if release {
			releaseCtx := context.WithoutCancel(ctx)
			if err := uc.withGuardRetry(releaseCtx, requestID, "guard.release", func() error {
				return uc.guard.Release(releaseCtx, key, requestID)
			}); err != nil {
				opLogger.Error("failed to release submission guard", zap.Error(err))
			}
		}
		setPhase(PhaseIdle)
	}()

	resp := uc.process(ctx, requestID, form, setPhase, opLogger)
	uc.metrics.record(resp.Kind)
	surface.SetResponse(resp)
	switch resp.Kind {
	case render.ResponseSuccess:
		setPhase(PhaseRenderedSuccess)
	case render.ResponseFailure, render.ResponseFallback:
		setPhase(PhaseRenderedFailure)
	default:
		setPhase(PhaseRenderedException)
	}
	return resp
}

func (uc *SubmissionUseCase) process(ctx context.Context, requestID string, form Form, setPhase func(Phase), opLogger *zap.Logger) render.Response {
	setPhase(PhaseEncoding)
	imageURL, err := imagefile.ReadDataURL(ctx, form.Image)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.encode_image", requestID, err)
		opLogger.Error("failed to encode image", zap.Error(wrapped), zap.String("file", form.Image.Name))
		return render.Exception("unable to read image: " + err.Error())
	}

	setPhase(PhaseAwaitingResponse)
	started := time.Now()
	result, err := uc.processor.Process(ctx, imageprocessor.Request{
		Model:       form.Model,
		APIKey:      form.APIKey,
		ImageBase64: imageURL,
	})
	if err != nil {
		wrapped := logging.NewOperationError("usecase.process_image", requestID, err)
		opLogger.Error("image processing request failed", zap.Error(wrapped), zap.String("model", form.Model))
		return render.Exception(describe(wrapped))
	}
	uc.metrics.observeRoundTrip(time.Since(started))

	fields := []zap.Field{zap.Int("status", result.StatusCode), zap.String("model", form.Model)}
	if result.OK {
		indented, err := imageprocessor.IndentJSON(result.Body)
		if err != nil {
			opLogger.Error("success response is not JSON", append(fields, zap.Error(err))...)
			return render.Exception(err.Error())
		}
		if product, ok := imageprocessor.DecodeProduct(result.Body); ok {
			fields = append(fields, zap.String("product", product.Name), zap.Float64("price", product.Price))
		}
		opLogger.Info("image processed", fields...)
		return render.Success(indented)
	}

	items, ok, err := imageprocessor.ParseErrorDetail(result.Body)
	if err != nil {
		opLogger.Error("failure response is not JSON", append(fields, zap.Error(err))...)
		return render.Exception(err.Error())
	}
	if !ok {
		opLogger.Warn("image processing failed without error details", fields...)
		return render.Fallback()
	}
	opLogger.Warn("image processing failed", append(fields, zap.Int("errors", len(items)))...)
	return render.Failure(items)
}

// describe returns the message shown to the user for a transport error.
func describe(err error) string {
	var opErr *logging.OperationError
	if errors.As(err, &opErr) {
		return opErr.Cause()
	}
	return err.Error()
}
