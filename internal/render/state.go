// Package render turns widget view state into HTML fragments or terminal text.
// Nothing here performs I/O; surfaces decide where the output goes.
package render

import "github.com/example/pricetag-widget/internal/imageprocessor"

const (
	ValidationMessage = "Please upload an image file."
	FallbackMessage   = "Unable to process"
	BusyMessage       = "A submission is already in progress."
	NoImageMessage    = "No image selected"

	IdleLabel    = "Submit"
	LoadingLabel = "Processing image, please wait..."
)

// ResponseKind selects how the response region is drawn.
type ResponseKind int

const (
	ResponseEmpty ResponseKind = iota
	ResponseValidation
	ResponseSuccess
	ResponseFailure
	ResponseFallback
	ResponseException
	ResponseBusy
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseValidation:
		return "validation"
	case ResponseSuccess:
		return "success"
	case ResponseFailure:
		return "failure"
	case ResponseFallback:
		return "failure_fallback"
	case ResponseException:
		return "exception"
	case ResponseBusy:
		return "busy"
	default:
		return "empty"
	}
}

// Response is the content of the response region.
type Response struct {
	Kind    ResponseKind
	JSON    string
	Items   []imageprocessor.ErrorItem
	Message string
}

// Empty clears the response region.
func Empty() Response { return Response{Kind: ResponseEmpty} }

// Validation reports a submit attempted without an image.
func Validation() Response { return Response{Kind: ResponseValidation, Message: ValidationMessage} }

// Busy reports a submit rejected while another one is in flight.
func Busy() Response { return Response{Kind: ResponseBusy, Message: BusyMessage} }

// Fallback is the single-item failure shown when the error body has no detail list.
func Fallback() Response { return Response{Kind: ResponseFallback, Message: FallbackMessage} }

// Success holds an already indented JSON document.
func Success(indented string) Response {
	return Response{Kind: ResponseSuccess, JSON: indented}
}

// Failure lists the backend's error items in order.
func Failure(items []imageprocessor.ErrorItem) Response {
	return Response{Kind: ResponseFailure, Items: items}
}

// Exception carries the description of a transport, parse or read error.
func Exception(message string) Response {
	return Response{Kind: ResponseException, Message: message}
}

// PreviewKind selects how the preview region is drawn.
type PreviewKind int

const (
	PreviewNoImage PreviewKind = iota
	PreviewLoaded
	PreviewError
)

// Preview is the content of the preview region. It only reflects the most
// recent selection.
type Preview struct {
	Kind    PreviewKind
	Name    string
	Size    int64
	DataURL string
	Message string
}

// NoImage is the placeholder shown before a file is selected.
func NoImage() Preview { return Preview{Kind: PreviewNoImage} }

// Loaded shows the selected image from its data URL.
func Loaded(name string, size int64, dataURL string) Preview {
	return Preview{Kind: PreviewLoaded, Name: name, Size: size, DataURL: dataURL}
}

// PreviewFailed reports a selection that could not be read.
func PreviewFailed(message string) Preview {
	return Preview{Kind: PreviewError, Message: message}
}

// Control is the state of the submit button.
type Control struct {
	Enabled bool
	Loading bool
	Label   string
}

// IdleControl is the enabled submit button.
func IdleControl() Control {
	return Control{Enabled: true, Label: IdleLabel}
}

// LoadingControl is the disabled button with the spinner shown while a
// request is outstanding.
func LoadingControl() Control {
	return Control{Enabled: false, Loading: true, Label: LoadingLabel}
}
