package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"productstudio/internal/domain"
	"productstudio/internal/imagecodec"
	"productstudio/internal/infra"
	"productstudio/internal/pricing"
)

// Options configures the generation client.
type Options struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client calls the OpenAI image endpoints. It never retries: a failure is
// returned to the caller once.
type Client struct {
	sdk    openai.Client
	model  string
	logger *infra.Logger
}

// NewClient builds a client with defaults for every empty option.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		sdk: openai.NewClient(
			option.WithBaseURL(base+"/"),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		model:  model,
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return DefaultModel
	}
	return c.model
}

// GenerateFromPrompt requests req.Count images for req.Prompt.
func (c *Client) GenerateFromPrompt(ctx context.Context, req TextToImage, credential string) (*Result, error) {
	if c == nil {
		return nil, errors.New("imagegen: client not configured")
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, &domain.CredentialError{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	quality, _ := ParseQuality(string(req.Quality))
	params := openai.ImageGenerateParams{
		Model:   openai.ImageModel(c.model),
		Prompt:  req.Prompt,
		N:       openai.Int(int64(req.Count)),
		Quality: openai.ImageGenerateParamsQuality(quality),
		Size:    openai.ImageGenerateParamsSize(DefaultSize),
	}

	start := time.Now()
	c.logger.Debug().Str("op", "generate").Int("n", req.Count).Str("quality", string(quality)).Msg("imagegen request")
	resp, err := c.sdk.Images.Generate(ctx, params, option.WithAPIKey(credential))
	if err != nil {
		c.logger.Warn().Err(err).Str("op", "generate").Dur("elapsed", time.Since(start)).Msg("imagegen failed")
		return nil, upstreamError(err)
	}
	c.logger.Debug().Str("op", "generate").Int("images", len(resp.Data)).Dur("elapsed", time.Since(start)).Msg("imagegen response")
	return normalize(resp, req.Count)
}

// GenerateFromImage sends the source image and the styled prompt to the edit
// operation. Exactly one image is requested.
func (c *Client) GenerateFromImage(ctx context.Context, req ImageEdit, credential string) (*Result, error) {
	if c == nil {
		return nil, errors.New("imagegen: client not configured")
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, &domain.CredentialError{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	mimeType := strings.TrimSpace(req.Source.MIMEType)
	if mimeType == "" {
		mimeType = "image/png"
	}
	filename := strings.TrimSpace(req.Source.Filename)
	if filename == "" {
		filename = "source" + imagecodec.Extension(mimeType)
	}
	params := openai.ImageEditParams{
		Model:   openai.ImageModel(c.model),
		Prompt:  ApplyStyle(req.Prompt, req.Style),
		Quality: openai.ImageEditParamsQuality(QualityMedium),
		Size:    openai.ImageEditParamsSize(DefaultSize),
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(req.Source.Data), filename, mimeType),
		},
	}

	start := time.Now()
	c.logger.Debug().Str("op", "edit").Int("source_bytes", len(req.Source.Data)).Str("style", req.Style).Msg("imagegen request")
	resp, err := c.sdk.Images.Edit(ctx, params, option.WithAPIKey(credential))
	if err != nil {
		c.logger.Warn().Err(err).Str("op", "edit").Dur("elapsed", time.Since(start)).Msg("imagegen failed")
		return nil, upstreamError(err)
	}
	c.logger.Debug().Str("op", "edit").Int("images", len(resp.Data)).Dur("elapsed", time.Since(start)).Msg("imagegen response")
	return normalize(resp, 1)
}

// normalize decodes every image or none of them.
func normalize(resp *openai.ImagesResponse, expected int) (*Result, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, &domain.MissingImageDataError{Expected: expected}
	}
	if len(resp.Data) != expected {
		return nil, &domain.MissingImageDataError{Expected: expected, Got: len(resp.Data)}
	}
	for i, item := range resp.Data {
		if strings.TrimSpace(item.B64JSON) == "" {
			return nil, &domain.MissingImageDataError{Index: i}
		}
	}

	images := make([]*imagecodec.Blob, len(resp.Data))
	var g errgroup.Group
	for i, item := range resp.Data {
		i, item := i, item
		g.Go(func() error {
			blob, err := imagecodec.DecodeBase64Image(item.B64JSON, "image/png")
			if err != nil {
				return err
			}
			images[i] = blob
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Images: images}
	if resp.Created > 0 {
		result.Created = time.Unix(resp.Created, 0).UTC()
	}
	usage, err := usageFromRaw(resp.RawJSON())
	if err != nil {
		return nil, &domain.UpstreamError{Message: "malformed usage record", Err: err}
	}
	result.Usage = usage
	return result, nil
}

// usageFromRaw reads the usage object exactly as the endpoint sent it.
func usageFromRaw(raw string) (*pricing.UsageRecord, error) {
	node := gjson.Get(raw, "usage")
	if !node.Exists() || node.Type == gjson.Null {
		return nil, nil
	}
	var usage pricing.UsageRecord
	if err := json.Unmarshal([]byte(node.Raw), &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

func upstreamError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = strings.TrimSpace(gjson.Get(apiErr.RawJSON(), "error.message").String())
		}
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &domain.UpstreamError{Status: apiErr.StatusCode, Message: msg, Err: err}
	}
	return &domain.UpstreamError{Err: err}
}

var _ Generator = (*Client)(nil)
