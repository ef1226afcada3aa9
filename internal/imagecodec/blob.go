package imagecodec

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Size returns the number of decoded bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// DataURL renders the blob for direct use as an <img> source.
func (b *Blob) DataURL() string {
	if b == nil {
		return ""
	}
	return "data:" + b.MIMEType + ";base64," + EncodeBase64(b.Data)
}

// Base64 returns the standard base64 text of the blob.
func (b *Blob) Base64() string {
	if b == nil {
		return ""
	}
	return EncodeBase64(b.Data)
}

// Filename joins stem with the extension implied by the MIME type.
func (b *Blob) Filename(stem string) string {
	stem = strings.TrimSpace(stem)
	if stem == "" {
		stem = "generated-image"
	}
	return stem + Extension(b.mime())
}

func (b *Blob) mime() string {
	if b == nil {
		return ""
	}
	return b.MIMEType
}

// Extension maps a MIME type to a file extension, defaulting to ".png".
func Extension(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case "image/png", "":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".png"
}
