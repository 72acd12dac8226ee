package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/pricetag-widget/internal/imageprocessor"
	"github.com/example/pricetag-widget/internal/logging"
)

// DefaultEndpoint is the processing path exposed by the price tag backend.
const DefaultEndpoint = "/api/process"

// NewImageProcessor returns a client posting submissions to baseURL+endpoint.
// A nil httpClient means http.DefaultClient, which applies no timeout.
func NewImageProcessor(baseURL, endpoint string, httpClient *http.Client, logger *zap.Logger) imageprocessor.Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return &httpImageProcessor{
		url:    strings.TrimRight(baseURL, "/") + endpoint,
		client: httpClient,
		logger: logger.Named("httpclient"),
	}
}

type httpImageProcessor struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func (h *httpImageProcessor) Process(ctx context.Context, req imageprocessor.Request) (*imageprocessor.Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, logging.NewOperationError("httpclient.encode_request", "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return nil, logging.NewOperationError("httpclient.build_request", "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		wrapped := logging.NewOperationError("httpclient.process_image", "", err)
		h.logger.Error("image processor call failed", zap.Error(wrapped), zap.String("url", h.url), zap.String("model", req.Model))
		return nil, wrapped
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		wrapped := logging.NewOperationError("httpclient.read_response", "", fmt.Errorf("reading response body: %w", err))
		h.logger.Error("failed to read image processor response", zap.Error(wrapped), zap.Int("status", resp.StatusCode))
		return nil, wrapped
	}

	h.logger.Debug("image processor responded", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
	return &imageprocessor.Result{
		StatusCode: resp.StatusCode,
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		Body:       body,
	}, nil
}
