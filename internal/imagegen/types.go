package imagegen

import (
	"context"
	"strings"
	"time"

	"productstudio/internal/domain"
	"productstudio/internal/imagecodec"
	"productstudio/internal/pricing"
)

const (
	DefaultModel = "gpt-image-1"
	DefaultSize  = "1024x1024"
	MinCount     = 1
	MaxCount     = 4
	// MaxReferenceImages is how many reference uploads the edit form accepts.
	MaxReferenceImages = 3
)

// Quality is the rendering quality requested from the model.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Qualities lists the accepted values in display order.
func Qualities() []Quality {
	return []Quality{QualityLow, QualityMedium, QualityHigh}
}

// ParseQuality accepts case-insensitive input; empty means medium.
func ParseQuality(s string) (Quality, error) {
	switch q := Quality(strings.ToLower(strings.TrimSpace(s))); q {
	case "":
		return QualityMedium, nil
	case QualityLow, QualityMedium, QualityHigh:
		return q, nil
	default:
		return "", domain.Invalid("quality", "unsupported quality %q", s)
	}
}

// TextToImage asks for Count images from Prompt.
type TextToImage struct {
	Prompt  string  `json:"prompt"`
	Quality Quality `json:"quality"`
	Count   int     `json:"count"`
}

// Validate checks the request before anything is sent upstream.
func (r TextToImage) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return domain.Invalid("prompt", "prompt is required")
	}
	if r.Count < MinCount || r.Count > MaxCount {
		return domain.Invalid("count", "must be between %d and %d", MinCount, MaxCount)
	}
	if _, err := ParseQuality(string(r.Quality)); err != nil {
		return err
	}
	return nil
}

// SourceImage is the reference photo sent to the edit operation.
type SourceImage struct {
	Data     []byte
	MIMEType string
	Filename string
}

// ImageEdit edits Source according to Prompt, optionally suffixed by Style.
// Quality is always medium and exactly one image is produced.
type ImageEdit struct {
	Source SourceImage
	Prompt string
	Style  string
}

// Validate checks the request before anything is sent upstream.
func (r ImageEdit) Validate() error {
	if len(r.Source.Data) == 0 {
		return domain.Invalid("image", "a source image is required")
	}
	return nil
}

// Result is the normalized outcome of one generation call.
type Result struct {
	Images  []*imagecodec.Blob
	Usage   *pricing.UsageRecord
	Created time.Time
}

// Generator is implemented by Client; handlers depend on it so tests can
// substitute a stub.
type Generator interface {
	GenerateFromPrompt(ctx context.Context, req TextToImage, credential string) (*Result, error)
	GenerateFromImage(ctx context.Context, req ImageEdit, credential string) (*Result, error)
}
