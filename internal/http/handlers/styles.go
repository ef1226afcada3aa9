package handlers

import (
	"net/http"

	"productstudio/internal/imagegen"
)

type catalogResponse struct {
	Styles             []imagegen.Style   `json:"styles"`
	Qualities          []imagegen.Quality `json:"qualities"`
	MinCount           int                `json:"min_count"`
	MaxCount           int                `json:"max_count"`
	MaxReferenceImages int                `json:"max_reference_images"`
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, catalogResponse{
		Styles:             imagegen.Styles(),
		Qualities:          imagegen.Qualities(),
		MinCount:           imagegen.MinCount,
		MaxCount:           imagegen.MaxCount,
		MaxReferenceImages: imagegen.MaxReferenceImages,
	})
}
