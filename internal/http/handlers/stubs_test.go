package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"productstudio/internal/imagecodec"
	"productstudio/internal/imagegen"
	"productstudio/internal/infra"
	"productstudio/internal/infra/credentials"
	"productstudio/internal/metrics"
	"productstudio/internal/pricing"
	"productstudio/internal/sharing"
)

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type stubGenerator struct {
	mu          sync.Mutex
	res         *imagegen.Result
	err         error
	prompts     []imagegen.TextToImage
	edits       []imagegen.ImageEdit
	credentials []string
}

func (s *stubGenerator) GenerateFromPrompt(ctx context.Context, req imagegen.TextToImage, credential string) (*imagegen.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, req)
	s.credentials = append(s.credentials, credential)
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func (s *stubGenerator) GenerateFromImage(ctx context.Context, req imagegen.ImageEdit, credential string) (*imagegen.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, req)
	s.credentials = append(s.credentials, credential)
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts) + len(s.edits)
}

type stubUploader struct {
	mu    sync.Mutex
	link  *sharing.ShareLink
	err   error
	data  [][]byte
	mimes []string
}

func (s *stubUploader) UploadForSharing(ctx context.Context, image []byte, mimeType string) (*sharing.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, image)
	s.mimes = append(s.mimes, mimeType)
	if s.err != nil {
		return nil, s.err
	}
	return s.link, nil
}

func pngBlobs(payloads ...string) []*imagecodec.Blob {
	out := make([]*imagecodec.Blob, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, &imagecodec.Blob{Data: []byte(p), MIMEType: "image/png"})
	}
	return out
}

func sampleResult(payloads ...string) *imagegen.Result {
	return &imagegen.Result{
		Images: pngBlobs(payloads...),
		Usage: &pricing.UsageRecord{
			TotalTokens:        600,
			InputTokens:        200,
			OutputTokens:       400,
			InputTokensDetails: &pricing.InputTokenBreakdown{TextTokens: 200},
		},
		Created: time.Unix(1713833628, 0),
	}
}

func newTestApp(gen imagegen.Generator, up sharing.Uploader, settings credentials.Setter, envKey string) *App {
	cfg := &infra.Config{
		OpenAIAPIKey:      envKey,
		GenerationTimeout: time.Minute,
		UploadTimeout:     time.Minute,
		MaxUploadBytes:    5 << 20,
		DefaultLocale:     "en",
	}
	return NewApp(cfg, zerolog.Nop(), gen, up, settings, metrics.New())
}
