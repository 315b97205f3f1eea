// Package imagegen provides the image-generation service client.
//
// The service's policy surface is opaque: a prompt that names a
// protected property or reads as violent can be rejected with a
// content-policy error. Callers that need resilience wrap this client
// with the retry ladder in internal/imagine.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fenwick/mira-agent/internal/httpkit"
)

// LevelTrace is below Debug, used for wire-level payload logging.
const LevelTrace = slog.Level(-8)

// Request describes one generation call.
type Request struct {
	Prompt  string
	Size    string // e.g. 1024x1024, 1024x1792
	Quality string // standard, hd
	Style   string // natural, vivid
}

// Result is a successful generation.
type Result struct {
	URL           string // hosted image reference, when the service returns one
	B64           string // base64 payload, when requested/returned instead
	RevisedPrompt string // the service may rewrite the prompt before rendering
}

// Client generates images from prompts.
type Client interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// ErrNoImage means the service answered 200 but the response carried
// no image data. Observed with some gateways under load.
var ErrNoImage = errors.New("image service returned no image")

// APIError is a structured upstream failure. Code carries the
// service's machine-readable error code when one is present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("image service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("image service error %d: %s", e.StatusCode, e.Message)
}

// IsContentPolicyViolation reports whether err is a safety-system
// rejection. The retry ladder keys off this.
func IsContentPolicyViolation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if strings.Contains(apiErr.Code, "content_policy") {
		return true
	}
	// Some gateway deployments omit the code and only say so in prose.
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "content policy") || strings.Contains(msg, "safety system")
}

// IsQuota reports whether err is a rate-limit or payment failure.
func IsQuota(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests ||
		apiErr.StatusCode == http.StatusPaymentRequired ||
		strings.Contains(apiErr.Code, "insufficient_quota")
}

// HTTPClient talks to an OpenAI-compatible images endpoint.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an image-generation client. baseURL should
// include the /v1 prefix.
func NewHTTPClient(baseURL, apiKey, model string, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	// Image rendering routinely takes 30-90s before the response
	// arrives. Size the header timeout for that, not the default.
	t := httpkit.NewTransport()
	t.ResponseHeaderTimeout = 180 * time.Second

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		logger:  logger.With("provider", "images"),
		httpClient: httpkit.NewClient(
			httpkit.WithTimeout(0),
			httpkit.WithTransport(t),
		),
	}
}

type generationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

type generationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate renders one image.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (*Result, error) {
	wire := generationRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		N:       1,
		Size:    req.Size,
		Quality: req.Quality,
		Style:   req.Style,
	}

	jsonData, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.logger.Debug("generating image",
		"model", c.model,
		"prompt_len", len(req.Prompt),
		"size", req.Size,
		"quality", req.Quality,
	)
	c.logger.Log(ctx, LevelTrace, "request payload", "json", string(jsonData))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/images/generations", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp generationResponse
	if decodeErr := json.NewDecoder(httpResp.Body).Decode(&resp); decodeErr != nil {
		if httpResp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: httpResp.StatusCode, Message: "unreadable error body"}
		}
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	if httpResp.StatusCode != http.StatusOK || resp.Error != nil {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		if resp.Error != nil {
			apiErr.Code = resp.Error.Code
			apiErr.Message = resp.Error.Message
		}
		c.logger.Warn("generation rejected",
			"status", httpResp.StatusCode,
			"code", apiErr.Code,
		)
		return nil, apiErr
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoImage
	}

	d := resp.Data[0]
	c.logger.Debug("image generated", "has_url", d.URL != "", "revised", d.RevisedPrompt != "")

	return &Result{
		URL:           d.URL,
		B64:           d.B64JSON,
		RevisedPrompt: d.RevisedPrompt,
	}, nil
}
