package handlers

import (
	"net/http"

	"imagestudio/internal/domain"
	"imagestudio/internal/imagegen"
	"imagestudio/internal/prompt"
)

type templateRequest struct {
	TemplateType   string         `json:"template_type"`
	Parameters     map[string]any `json:"parameters"`
	Images         []string       `json:"images"`
	OutputFilename string         `json:"output_filename"`
	AspectRatio    string         `json:"aspect_ratio"`
}

func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	a.ok(w, "", map[string]any{"templates": a.Service.Catalog().List()})
}

// RenderTemplate returns the prompt text without calling the model.
func (a *App) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	tt, err := prompt.ParseTemplateType(req.TemplateType)
	if err != nil {
		a.error(w, http.StatusBadRequest, codeForKind(domain.KindOf(err)), err.Error())
		return
	}
	text, err := a.Service.Catalog().Render(tt, prompt.Params(req.Parameters))
	if err != nil {
		a.error(w, http.StatusBadRequest, codeForKind(domain.KindOf(err)), err.Error())
		return
	}
	a.ok(w, "Template generated successfully", map[string]any{
		"template_type": tt,
		"template":      text,
	})
}

func (a *App) GenerateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	tt, err := prompt.ParseTemplateType(req.TemplateType)
	if err != nil {
		a.error(w, http.StatusBadRequest, codeForKind(domain.KindOf(err)), err.Error())
		return
	}
	images := make([]imagegen.ImageSource, 0, len(req.Images))
	for _, encoded := range req.Images {
		images = append(images, imagegen.ImageFromBase64(encoded))
	}
	res := a.Service.GenerateWithTemplate(r.Context(), imagegen.TemplateRequest{
		Type:   tt,
		Params: prompt.Params(req.Parameters),
		Images: images,
		Output: imagegen.Output{Filename: req.OutputFilename, AspectRatio: req.AspectRatio},
	})
	a.result(w, r, "Image generated from template", res)
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"styles":          prompt.ImageStyles(),
		"angles":          prompt.CameraAngles(),
		"interior_styles": prompt.InteriorStyles(),
	})
}
