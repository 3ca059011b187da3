package imagegen

import (
	"context"

	"imagestudio/internal/domain"
	"imagestudio/internal/prompt"
)

// primitive is the generation call a template type is dispatched to.
type primitive int

const (
	primitiveTextOnly primitive = iota + 1
	primitiveSingleImage
	primitiveMultiImage
)

func (p primitive) String() string {
	switch p {
	case primitiveTextOnly:
		return "text_only"
	case primitiveSingleImage:
		return "single_image"
	case primitiveMultiImage:
		return "multi_image"
	default:
		return "unknown"
	}
}

var templatePrimitives = map[prompt.TemplateType]primitive{
	prompt.TextToImage:           primitiveTextOnly,
	prompt.Inpainting:            primitiveSingleImage,
	prompt.StyleTransfer:         primitiveSingleImage,
	prompt.MultiImageComposition: primitiveMultiImage,
	prompt.TextRendering:         primitiveTextOnly,
	prompt.CleanRoom:             primitiveSingleImage,
	prompt.StepByStep:            primitiveTextOnly,
	prompt.IterativeRefinement:   primitiveSingleImage,
	prompt.LogoDesign:            primitiveTextOnly,
	prompt.ProductPhotography:    primitiveTextOnly,
	prompt.InteriorDesign:        primitiveTextOnly,
	prompt.CharacterDesign:       primitiveTextOnly,
}

// TemplateRequest asks for a prompt rendered from the catalog and sent
// through the primitive mapped to its type.
type TemplateRequest struct {
	Type   prompt.TemplateType
	Params prompt.Params
	Images []ImageSource
	Output Output
}

// GenerateWithTemplate renders req.Type and dispatches it. Text-only
// templates ignore images, single-image templates use the first image and
// multi-image templates send all of them.
func (s *Service) GenerateWithTemplate(ctx context.Context, req TemplateRequest) domain.GenerationResult {
	c := call{template: req.Type, out: req.Output}

	p, ok := templatePrimitives[req.Type]
	if !ok {
		c.kind = domain.TypeTextToImage
		c.defaultName = DefaultTextToImageName
		return s.failed(c, domain.Templatef("unknown template type %q", req.Type))
	}

	switch p {
	case primitiveTextOnly:
		c.kind = domain.TypeTextToImage
		c.defaultName = DefaultTextToImageName
	case primitiveSingleImage:
		c.kind = domain.TypeImageEditing
		c.defaultName = DefaultEditingName
		c.images = req.Images
		if len(c.images) > 1 {
			c.images = c.images[:1]
		}
		c.minImages = 1
	case primitiveMultiImage:
		c.kind = domain.TypeMultiImageComposition
		c.defaultName = DefaultCompositionName
		c.images = req.Images
		c.imagesFirst = true
		c.minImages = 1
	}

	text, err := s.catalog.Render(req.Type, req.Params)
	if err != nil {
		return s.failed(c, err)
	}
	c.prompt = text

	s.logger.Debug().
		Str("template", string(req.Type)).
		Str("primitive", p.String()).
		Msg("imagegen: rendered template")

	return s.run(ctx, c)
}
