package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"productstudio/internal/domain"
	"productstudio/internal/imagecodec"
	"productstudio/internal/middleware"
)

type shareRequest struct {
	// Image is a data URL or bare base64 text.
	Image    string `json:"image"`
	MIMEType string `json:"mime_type"`
}

// ImagesShare uploads one generated image to the public host and returns its
// URL. The image arrives either as multipart field "file" or as JSON.
func (a *App) ImagesShare(w http.ResponseWriter, r *http.Request) {
	if a.Uploader == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "sharing is not configured")
		return
	}
	data, mimeType, err := a.readShareBody(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx, cancel := a.timeout(r, a.Config.UploadTimeout)
	defer cancel()

	start := time.Now()
	link, err := a.Uploader.UploadForSharing(ctx, data, mimeType)
	a.Metrics.Upload(err, len(data), time.Since(start))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Int("bytes", len(data)).
		Str("url", link.URL).
		Msg("image shared")
	a.json(w, http.StatusOK, link)
}

func (a *App) readShareBody(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	limit := a.Config.MaxUploadBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body shareRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, "", domain.Invalid("image", "invalid payload")
		}
		if strings.TrimSpace(body.Image) == "" {
			return nil, "", domain.Invalid("image", "image is required")
		}
		blob, err := imagecodec.DecodeBase64Image(body.Image, body.MIMEType)
		if err != nil {
			return nil, "", domain.Invalid("image", "image is not valid base64: %v", err)
		}
		return blob.Data, blob.MIMEType, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", multipartError(err)
	}
	defer r.MultipartForm.RemoveAll()
	f, fh, err := r.FormFile("file")
	if err != nil {
		return nil, "", domain.Invalid("file", "file is required")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	return data, mimeType, nil
}
