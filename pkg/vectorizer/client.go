package vectorizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/menta2k/bg-remover/pkg/types"
)

// DefaultEndpoint is the vectorize API URL.
const DefaultEndpoint = "https://vectorizer.ai/api/v1/vectorize"

// ErrMissingCredentials is returned by NewClient when the key or secret is empty.
var ErrMissingCredentials = errors.New("API credentials not found: set VECTORIZER_API_KEY and VECTORIZER_SECRET")

// Credentials is the key/secret pair used for HTTP basic auth.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Complete reports whether both halves are present.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Options configures a Client.
type Options struct {
	Endpoint      string
	Mode          string
	RetentionDays int
	Tolerance     float64
	MinAreaPx     float64
	Timeout       time.Duration
	Logger        hclog.Logger
	HTTPClient    *http.Client
}

// DefaultOptions returns preview mode, no retention, 0.05 colour tolerance and
// a 1 px minimum shape area.
func DefaultOptions() Options {
	return Options{
		Endpoint:      DefaultEndpoint,
		Mode:          "test_preview",
		RetentionDays: 0,
		Tolerance:     0.05,
		MinAreaPx:     1.0,
		Timeout:       5 * time.Minute,
	}
}

// Request describes one upload.
type Request struct {
	Image        []byte
	Filename     string
	Background   types.Color
	OutputWidth  int
	OutputHeight int
}

// Result is the outcome of one upload. Failures are values, not errors, so a
// batch can keep going.
type Result struct {
	Success    bool
	StatusCode int
	Image      []byte
	Message    string
	Err        error
}

// ServiceError describes a non-success response from the API.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Body)
}

// Client uploads images to the background-removal service.
type Client struct {
	endpoint    string
	credentials Credentials
	opts        Options
	httpClient  *http.Client
	logger      hclog.Logger
}

// NewClient creates a client. Missing credentials are reported here, before
// any request can be attempted.
func NewClient(creds Credentials, opts Options) (*Client, error) {
	if !creds.Complete() {
		return nil, ErrMissingCredentials
	}

	defaults := DefaultOptions()
	if opts.Endpoint == "" {
		opts.Endpoint = defaults.Endpoint
	}
	if opts.Mode == "" {
		opts.Mode = defaults.Mode
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Client{
		endpoint:    strings.TrimSuffix(opts.Endpoint, "/"),
		credentials: creds,
		opts:        opts,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// Palette returns the palette directive mapping bg to transparent, e.g.
// "#FFFFFF -> #00000000 ~ 0.05;".
func Palette(bg types.Color, tolerance float64) string {
	return fmt.Sprintf("%s -> #00000000 ~ %s;", bg.Hex(), formatFloat(tolerance))
}

// Fields returns the form fields sent alongside the image.
func (c *Client) Fields(req Request) map[string]string {
	fields := map[string]string{
		"mode":                          c.opts.Mode,
		"policy.retention_days":         strconv.Itoa(c.opts.RetentionDays),
		"processing.palette":            Palette(req.Background, c.opts.Tolerance),
		"output.file_format":            "png",
		"processing.shapes.min_area_px": formatFloat(c.opts.MinAreaPx),
	}
	if req.OutputWidth > 0 {
		fields["output.size.width"] = strconv.Itoa(req.OutputWidth)
	}
	if req.OutputHeight > 0 {
		fields["output.size.height"] = strconv.Itoa(req.OutputHeight)
	}
	return fields
}

// RemoveBackground uploads req.Image and returns the service output. It never
// returns an error; failures are reported through Result.
func (c *Client) RemoveBackground(ctx context.Context, req Request) Result {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	c.logger.Debug("uploading image",
		"file", req.Filename,
		"bytes", len(req.Image),
		"background", req.Background.Hex(),
		"width", req.OutputWidth,
		"height", req.OutputHeight,
		"mode", c.opts.Mode,
	)

	status, body, err := c.sendRequest(ctx, req)
	if err != nil {
		c.logger.Warn("upload failed", "file", req.Filename, "error", err)
		return Result{Success: false, Message: fmt.Sprintf("Exception: %v", err), Err: err}
	}

	if status != http.StatusOK {
		svcErr := &ServiceError{StatusCode: status, Body: strings.TrimSpace(string(body))}
		c.logger.Warn("service returned an error", "file", req.Filename, "status", status)
		return Result{Success: false, StatusCode: status, Message: svcErr.Error(), Err: svcErr}
	}

	c.logger.Debug("upload succeeded", "file", req.Filename, "bytes", len(body))
	return Result{Success: true, StatusCode: status, Image: body}
}

func (c *Client) sendRequest(ctx context.Context, r Request) (int, []byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := r.Filename
	if filename == "" {
		filename = "image.png"
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(r.Image); err != nil {
		return 0, nil, fmt.Errorf("failed to write image: %w", err)
	}
	for k, v := range c.Fields(r) {
		if err := mw.WriteField(k, v); err != nil {
			return 0, nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return 0, nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(c.credentials.APIKey, c.credentials.APISecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// formatFloat keeps one decimal for whole numbers ("1.0") and the shortest
// exact form otherwise ("0.05").
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
