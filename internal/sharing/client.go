package sharing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"productstudio/internal/domain"
	"productstudio/internal/imagecodec"
	"productstudio/internal/infra"
)

// DefaultEndpoint is the public upload host used by the dashboard.
const DefaultEndpoint = "https://upload.hyperzod.dev/public-upload"

// maxErrorBody bounds how much of a failed response is kept in UploadError.
const maxErrorBody = 4 << 10

// urlPaths are the response locations known to carry the public URL.
var urlPaths = []string{"file_url", "data.file_url"}

// ShareLink is a public URL for an uploaded image.
type ShareLink struct {
	URL string `json:"url"`
}

// Options configures the sharing client.
type Options struct {
	Endpoint   string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client uploads generated images to the public host.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *infra.Logger
}

// Uploader is implemented by Client.
type Uploader interface {
	UploadForSharing(ctx context.Context, image []byte, mimeType string) (*ShareLink, error)
}

func NewClient(opts Options) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{httpClient: client, endpoint: endpoint, logger: logger}
}

// UploadForSharing posts image as the multipart field "file" and returns the
// URL the host assigned. There is no retry.
func (c *Client) UploadForSharing(ctx context.Context, image []byte, mimeType string) (*ShareLink, error) {
	if c == nil {
		return nil, errors.New("sharing: client not configured")
	}
	if len(image) == 0 {
		return nil, domain.Invalid("file", "image is required")
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "image/png"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, "generated-image"+imagecodec.Extension(mimeType)))
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, &domain.UploadError{Reason: "create file part", Err: err}
	}
	if _, err := part.Write(image); err != nil {
		return nil, &domain.UploadError{Reason: "write file part", Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &domain.UploadError{Reason: "close multipart writer", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, &domain.UploadError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("share upload failed")
		return nil, &domain.UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("share upload rejected")
		return nil, &domain.UploadError{Status: resp.StatusCode, Body: string(text)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UploadError{Reason: "read response", Err: err}
	}
	url, ok := extractURL(raw)
	if !ok {
		return nil, &domain.UploadError{Reason: "upload succeeded but no URL was returned"}
	}
	c.logger.Debug().Int("bytes", len(image)).Dur("elapsed", time.Since(start)).Msg("share upload ok")
	return &ShareLink{URL: url}, nil
}

// extractURL accepts either known response shape.
func extractURL(raw []byte) (string, bool) {
	if !gjson.ValidBytes(raw) {
		return "", false
	}
	for _, path := range urlPaths {
		if v := strings.TrimSpace(gjson.GetBytes(raw, path).String()); v != "" {
			return v, true
		}
	}
	return "", false
}

var _ Uploader = (*Client)(nil)
