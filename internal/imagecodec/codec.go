package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"productstudio/internal/domain"
)

// chunkSize is the number of base64 characters decoded per step. It must be
// a multiple of 4 so every chunk but the last holds whole quanta.
const chunkSize = 64 * 1024

// Blob is an in-memory image tagged with its MIME type.
type Blob struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// DecodeBase64Image decodes a standard base64 payload into a Blob. When
// mimeType is empty the type comes from a data URL prefix or is sniffed
// from the decoded bytes.
func DecodeBase64Image(payload, mimeType string) (*Blob, error) {
	mimeType = strings.TrimSpace(mimeType)
	payload, prefixType := stripDataURL(strings.TrimSpace(payload))
	if mimeType == "" {
		mimeType = prefixType
	}
	if payload == "" {
		return nil, &domain.DecodeError{Err: errors.New("empty payload")}
	}
	data, err := decodeChunked(compact(payload))
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	blob := &Blob{Data: data, MIMEType: mimeType}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		blob.Width = cfg.Width
		blob.Height = cfg.Height
	}
	return blob, nil
}

// EncodeBase64 is the inverse of DecodeBase64Image.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func decodeChunked(text string) ([]byte, error) {
	if len(text)%4 != 0 {
		return nil, &domain.DecodeError{Offset: int64(len(text)), Err: errors.New("truncated input")}
	}
	out := make([]byte, 0, base64.StdEncoding.DecodedLen(len(text)))
	buf := make([]byte, base64.StdEncoding.DecodedLen(chunkSize))
	for offset := 0; offset < len(text); offset += chunkSize {
		end := offset + chunkSize
		if end > len(text) {
			end = len(text)
		}
		n, err := base64.StdEncoding.Decode(buf, []byte(text[offset:end]))
		if err != nil {
			var corrupt base64.CorruptInputError
			if errors.As(err, &corrupt) {
				return nil, &domain.DecodeError{Offset: int64(offset) + int64(corrupt), Err: err}
			}
			return nil, &domain.DecodeError{Offset: int64(offset), Err: err}
		}
		out = append(out, buf[:n]...)
	}
	return out, nil
}

// compact drops whitespace that wrapped or pretty-printed payloads carry.
func compact(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

func stripDataURL(s string) (string, string) {
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	header, body, ok := strings.Cut(s, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return s, ""
	}
	return body, strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
}
