package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"productstudio/internal/domain"
	"productstudio/internal/imagegen"
	"productstudio/internal/infra/credentials"
	"productstudio/internal/metrics"
	"productstudio/internal/middleware"
	"productstudio/internal/pricing"
	"productstudio/pkg/zip"
)

const (
	maxJSONBody      = 1 << 20
	multipartMemory  = 8 << 20
	defaultFileStem  = "generated-image"
	formatJSON       = ""
	formatZip        = "zip"
	formatSingleFile = "png"
)

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Quality string `json:"quality"`
	Count   int    `json:"count"`
}

type imageView struct {
	Index    int    `json:"index"`
	MIMEType string `json:"mime_type"`
	Bytes    int    `json:"bytes"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Filename string `json:"filename"`
	B64JSON  string `json:"b64_json"`
}

type generationResponse struct {
	Images           []imageView          `json:"images"`
	Usage            *pricing.UsageRecord `json:"usage,omitempty"`
	Cost             *pricing.Estimate    `json:"cost,omitempty"`
	CostUSD          *float64             `json:"cost_usd,omitempty"`
	CostDisplay      string               `json:"cost_display,omitempty"`
	CredentialSource credentials.Origin   `json:"credential_source"`
	ElapsedMS        int64                `json:"elapsed_ms"`
	Created          *time.Time           `json:"created,omitempty"`
}

// ImagesGenerate renders 1..4 images from a text prompt.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	format, err := downloadFormat(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var body generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	quality, err := imagegen.ParseQuality(body.Quality)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if body.Count == 0 {
		body.Count = imagegen.MinCount
	}
	req := imagegen.TextToImage{Prompt: body.Prompt, Quality: quality, Count: body.Count}
	if format == formatSingleFile && req.Count != 1 {
		a.fail(w, r, domain.Invalid("format", "png download needs exactly one image"))
		return
	}

	key, origin := a.credential(r)
	ctx, cancel := a.timeout(r, a.Config.GenerationTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.Generator.GenerateFromPrompt(ctx, req, key)
	a.respondGeneration(w, r, metrics.OpGenerate, format, origin, start, res, err)
}

// ImagesEdit restyles the first uploaded reference photo. The form accepts
// up to three files under "images"; only the first is sent to the model.
func (a *App) ImagesEdit(w http.ResponseWriter, r *http.Request) {
	format, err := downloadFormat(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if a.Config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		a.fail(w, r, multipartError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		files = r.MultipartForm.File["image"]
	}
	if len(files) == 0 {
		a.fail(w, r, domain.Invalid("images", "at least one reference image is required"))
		return
	}
	if len(files) > imagegen.MaxReferenceImages {
		a.fail(w, r, domain.Invalid("images", "at most %d reference images are accepted", imagegen.MaxReferenceImages))
		return
	}
	source, err := readImagePart(files[0])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	req := imagegen.ImageEdit{
		Source: source,
		Prompt: r.FormValue("prompt"),
		Style:  r.FormValue("style"),
	}

	key, origin := a.credential(r)
	ctx, cancel := a.timeout(r, a.Config.GenerationTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.Generator.GenerateFromImage(ctx, req, key)
	a.respondGeneration(w, r, metrics.OpEdit, format, origin, start, res, err)
}

func (a *App) respondGeneration(w http.ResponseWriter, r *http.Request, op, format string, origin credentials.Origin, start time.Time, res *imagegen.Result, err error) {
	elapsed := time.Since(start)
	if err == nil && (res == nil || len(res.Images) == 0) {
		err = &domain.MissingImageDataError{Expected: 1}
	}
	if err != nil {
		a.Metrics.Generation(op, err, 0, 0, elapsed)
		a.fail(w, r, err)
		return
	}

	resp := generationResponse{
		Images:           make([]imageView, 0, len(res.Images)),
		Usage:            res.Usage,
		CredentialSource: origin,
		ElapsedMS:        elapsed.Milliseconds(),
	}
	if !res.Created.IsZero() {
		created := res.Created
		resp.Created = &created
	}
	var cost float64
	if res.Usage != nil {
		est := a.Pricing.Breakdown(*res.Usage)
		cost = est.USD
		resp.Cost = &est
		resp.CostUSD = &cost
		resp.CostDisplay = pricing.FormatUSD(cost)
		a.Metrics.Tokens(est.TextTokens, est.ImageTokens, est.OutputTokens)
	}
	a.Metrics.Generation(op, nil, len(res.Images), cost, elapsed)

	for i, img := range res.Images {
		resp.Images = append(resp.Images, imageView{
			Index:    i,
			MIMEType: img.MIMEType,
			Bytes:    img.Size(),
			Width:    img.Width,
			Height:   img.Height,
			Filename: img.Filename(imageStem(i, len(res.Images))),
			B64JSON:  img.Base64(),
		})
	}

	a.Logger.Info().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("operation", op).
		Int("images", len(res.Images)).
		Str("cost", resp.CostDisplay).
		Str("credential_source", string(origin)).
		Dur("elapsed", elapsed).
		Msg("generation complete")

	switch format {
	case formatZip:
		a.writeZip(w, r, res)
	case formatSingleFile:
		img := res.Images[0]
		w.Header().Set("Content-Type", img.MIMEType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Filename(defaultFileStem)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img.Data)
	default:
		a.json(w, http.StatusOK, resp)
	}
}

func (a *App) writeZip(w http.ResponseWriter, r *http.Request, res *imagegen.Result) {
	assets := make([]zip.Asset, 0, len(res.Images))
	for i, img := range res.Images {
		assets = append(assets, zip.Asset{
			Filename: img.Filename(imageStem(i, len(res.Images))),
			MIME:     img.MIMEType,
			Data:     img.Data,
		})
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	name := "product-images-" + strings.SplitN(uuid.NewString(), "-", 2)[0] + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func imageStem(i, total int) string {
	if total <= 1 {
		return defaultFileStem
	}
	return fmt.Sprintf("%s-%d", defaultFileStem, i+1)
}

func downloadFormat(r *http.Request) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); f {
	case formatJSON, "json":
		return formatJSON, nil
	case formatZip:
		return formatZip, nil
	case formatSingleFile, "image":
		return formatSingleFile, nil
	default:
		return "", domain.Invalid("format", "unsupported format %q", f)
	}
}

// readImagePart loads an uploaded file and makes sure it is an image.
func readImagePart(fh *multipart.FileHeader) (imagegen.SourceImage, error) {
	f, err := fh.Open()
	if err != nil {
		return imagegen.SourceImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return imagegen.SourceImage{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return imagegen.SourceImage{}, domain.Invalid("images", "uploaded file %q is empty", fh.Filename)
	}
	mimeType := mimetype.Detect(data).String()
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return imagegen.SourceImage{}, domain.Invalid("images", "uploaded file %q is not an image", fh.Filename)
	}
	return imagegen.SourceImage{Data: data, MIMEType: mimeType, Filename: fh.Filename}, nil
}

func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.Invalid("images", "upload exceeds %d MB", tooLarge.Limit>>20)
	}
	return domain.Invalid("images", "invalid multipart form: %v", err)
}
