package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"imagestudio/internal/imagegen"
	"imagestudio/internal/prompt"
)

const (
	defaultGenerateName    = "generated"
	defaultEditName        = "edited"
	defaultCleanName       = "cleaned"
	defaultStyleName       = "styled"
	defaultCompositionName = "composed"

	minCompositionFiles = 2
)

type generateRequest struct {
	Prompt         string `json:"prompt"`
	OutputFilename string `json:"output_filename"`
	AspectRatio    string `json:"aspect_ratio"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	res := a.Service.GenerateTextToImage(r.Context(), req.Prompt, imagegen.Output{
		Filename:    orDefault(req.OutputFilename, defaultGenerateName),
		AspectRatio: req.AspectRatio,
	})
	a.result(w, r, "Image generated successfully", res)
}

func (a *App) Edit(w http.ResponseWriter, r *http.Request) {
	if !a.parseMultipart(w, r) {
		return
	}
	img, ok := a.formImage(w, r, "file")
	if !ok {
		return
	}
	text := prompt.WithStyle(r.FormValue("prompt"), r.FormValue("style"), r.FormValue("custom_style"))
	res := a.Service.GenerateImageEditing(r.Context(), text, img, imagegen.Output{
		Filename: orDefault(r.FormValue("output_filename"), defaultEditName),
	})
	a.result(w, r, "Image edited successfully", res)
}

func (a *App) Clean(w http.ResponseWriter, r *http.Request) {
	if !a.parseMultipart(w, r) {
		return
	}
	img, ok := a.formImage(w, r, "file")
	if !ok {
		return
	}
	keep := true
	if raw := strings.TrimSpace(r.FormValue("maintain_layout")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "maintain_layout must be a boolean")
			return
		}
		keep = v
	}
	res := a.Service.CleanImage(r.Context(), img, r.FormValue("objects"), keep, imagegen.Output{
		Filename: orDefault(r.FormValue("output_filename"), defaultCleanName),
	})
	a.result(w, r, "Image cleaned successfully", res)
}

// Style restyles an uploaded room photo with one of the interior presets,
// a custom description or a free-form style name.
func (a *App) Style(w http.ResponseWriter, r *http.Request) {
	if !a.parseMultipart(w, r) {
		return
	}
	target := strings.TrimSpace(r.FormValue("target_style"))
	if target == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "target_style is required")
		return
	}
	img, ok := a.formImage(w, r, "file")
	if !ok {
		return
	}
	text, err := a.Service.Catalog().Render(prompt.StyleTransfer, prompt.Params{
		"source_image_description": "the uploaded image",
		"target_style":             prompt.ResolveInteriorStyle(target, r.FormValue("custom_style")),
	})
	if err != nil {
		a.error(w, http.StatusBadRequest, "template_error", err.Error())
		return
	}
	res := a.Service.GenerateImageEditing(r.Context(), text, img, imagegen.Output{
		Filename: orDefault(r.FormValue("output_filename"), defaultStyleName),
	})
	a.result(w, r, "Style transferred successfully", res)
}

func (a *App) Composition(w http.ResponseWriter, r *http.Request) {
	if !a.parseMultipart(w, r) {
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) < minCompositionFiles || len(files) > imagegen.MaxInputImages {
		a.error(w, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("composition needs %d to %d files, got %d", minCompositionFiles, imagegen.MaxInputImages, len(files)))
		return
	}
	images := make([]imagegen.ImageSource, 0, len(files))
	for _, fh := range files {
		data, err := readFileHeader(fh)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "could not read uploaded file")
			return
		}
		images = append(images, imagegen.ImageFromBytes(data))
	}
	goal := strings.TrimSpace(r.FormValue("goal"))
	if goal == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "goal is required")
		return
	}
	text, err := a.Service.Catalog().Render(prompt.MultiImageComposition, prompt.Params{
		"images":           []string{"the uploaded images"},
		"composition_goal": goal,
		"blending_style":   r.FormValue("blending"),
	})
	if err != nil {
		a.error(w, http.StatusBadRequest, "template_error", err.Error())
		return
	}
	res := a.Service.GenerateMultiImageComposition(r.Context(), text, images, imagegen.Output{
		Filename: orDefault(r.FormValue("output_filename"), defaultCompositionName),
	})
	a.result(w, r, "Images composed successfully", res)
}

func (a *App) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds size limit")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return false
	}
	return true
}

func (a *App) formImage(w http.ResponseWriter, r *http.Request, field string) (imagegen.ImageSource, bool) {
	f, _, err := r.FormFile(field)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", field+" is required")
		return imagegen.ImageSource{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read uploaded file")
		return imagegen.ImageSource{}, false
	}
	return imagegen.ImageFromBytes(data), true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
