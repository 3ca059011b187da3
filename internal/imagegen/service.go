package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"imagestudio/internal/domain"
	"imagestudio/internal/domain/jsoncfg"
	"imagestudio/internal/infra"
	"imagestudio/internal/prompt"
	"imagestudio/internal/providers/gemini"
	"imagestudio/internal/storage"
)

// Options configures a Service. Only Provider is required.
type Options struct {
	Provider    Provider
	Store       *storage.FileStore
	Catalog     *prompt.Catalog
	Logger      *infra.Logger
	AspectRatio string
}

// Service runs generation requests against the provider and persists the
// returned images. Every operation returns a GenerationResult; failures are
// recorded on the result instead of being returned as errors.
type Service struct {
	provider    Provider
	store       *storage.FileStore
	catalog     *prompt.Catalog
	logger      *infra.Logger
	aspectRatio string
}

func NewService(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, errors.New("imagegen: provider is required")
	}
	ratio := strings.TrimSpace(opts.AspectRatio)
	if !jsoncfg.ValidAspectRatio(ratio) {
		return nil, fmt.Errorf("imagegen: unsupported aspect ratio %q", ratio)
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	store := opts.Store
	if store == nil {
		var err error
		if store, err = storage.NewFileStore(infra.DefaultOutputDir); err != nil {
			return nil, fmt.Errorf("imagegen: %w", err)
		}
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		if catalog, err = prompt.NewCatalog(prompt.CatalogOptions{Logger: logger}); err != nil {
			return nil, fmt.Errorf("imagegen: %w", err)
		}
	}

	return &Service{
		provider:    opts.Provider,
		store:       store,
		catalog:     catalog,
		logger:      logger,
		aspectRatio: ratio,
	}, nil
}

// Catalog returns the template catalog used for template-based generation.
func (s *Service) Catalog() *prompt.Catalog { return s.catalog }

// OutputDir returns the directory images are written to.
func (s *Service) OutputDir() string { return s.store.BasePath() }

// Model returns the provider's model identifier.
func (s *Service) Model() string { return s.provider.Model() }

// GenerateTextToImage sends a text-only request.
func (s *Service) GenerateTextToImage(ctx context.Context, text string, out Output) domain.GenerationResult {
	return s.run(ctx, call{
		kind:        domain.TypeTextToImage,
		prompt:      text,
		out:         out,
		defaultName: DefaultTextToImageName,
	})
}

// GenerateImageEditing sends the prompt followed by one input image.
func (s *Service) GenerateImageEditing(ctx context.Context, text string, input ImageSource, out Output) domain.GenerationResult {
	return s.run(ctx, call{
		kind:        domain.TypeImageEditing,
		prompt:      text,
		images:      []ImageSource{input},
		minImages:   1,
		out:         out,
		defaultName: DefaultEditingName,
	})
}

// GenerateMultiImageComposition sends 1 to 3 images followed by the prompt.
func (s *Service) GenerateMultiImageComposition(ctx context.Context, text string, inputs []ImageSource, out Output) domain.GenerationResult {
	return s.run(ctx, call{
		kind:        domain.TypeMultiImageComposition,
		prompt:      text,
		images:      inputs,
		imagesFirst: true,
		minImages:   1,
		out:         out,
		defaultName: DefaultCompositionName,
	})
}

// CleanImage removes clutter, or the named objects, from a room photo.
func (s *Service) CleanImage(ctx context.Context, input ImageSource, objects string, maintainLayout bool, out Output) domain.GenerationResult {
	c := call{
		kind:        domain.TypeImageCleaning,
		images:      []ImageSource{input},
		minImages:   1,
		out:         out,
		defaultName: DefaultCleaningName,
		template:    prompt.CleanRoom,
	}
	text, err := s.catalog.Render(prompt.CleanRoom, prompt.Params{
		"objects":         objects,
		"maintain_layout": maintainLayout,
	})
	if err != nil {
		return s.failed(c, err)
	}
	c.prompt = text
	return s.run(ctx, c)
}

type call struct {
	kind        string
	prompt      string
	images      []ImageSource
	imagesFirst bool
	minImages   int
	out         Output
	defaultName string
	template    prompt.TemplateType
}

func (s *Service) newResult(c call) domain.GenerationResult {
	return domain.GenerationResult{
		Metadata: domain.Metadata{
			Model:          s.provider.Model(),
			Prompt:         c.prompt,
			Type:           c.kind,
			Template:       string(c.template),
			InputImages:    len(c.images),
			OutputFilename: outputName(c.out.Filename, c.defaultName),
		},
	}
}

func (s *Service) failed(c call, err error) domain.GenerationResult {
	res := s.newResult(c)
	res.Fail(err)
	s.logger.Error().
		Err(err).
		Str("type", c.kind).
		Str("output", res.Metadata.OutputFilename).
		Msg("imagegen: generation failed")
	return res
}

func (s *Service) run(ctx context.Context, c call) domain.GenerationResult {
	if strings.TrimSpace(c.prompt) == "" {
		return s.failed(c, domain.Validationf("prompt is required"))
	}
	if len(c.images) < c.minImages {
		return s.failed(c, domain.Validationf("%s requires at least %d input image(s), got %d", c.kind, c.minImages, len(c.images)))
	}
	if len(c.images) > MaxInputImages {
		return s.failed(c, domain.Validationf("at most %d input images are supported, got %d", MaxInputImages, len(c.images)))
	}
	ratio := strings.TrimSpace(c.out.AspectRatio)
	if ratio == "" {
		ratio = s.aspectRatio
	}
	if !jsoncfg.ValidAspectRatio(ratio) {
		return s.failed(c, domain.Validationf("unsupported aspect ratio %q", ratio))
	}

	images := make([]gemini.Image, 0, len(c.images))
	for _, src := range c.images {
		img, err := src.Normalize()
		if err != nil {
			return s.failed(c, err)
		}
		images = append(images, img)
	}

	res := s.newResult(c)
	logger := s.logger.With().
		Str("request_id", infra.RequestIDFromContext(ctx)).
		Str("type", c.kind).
		Str("output", res.Metadata.OutputFilename).
		Logger()
	logger.Info().
		Str("prompt", truncate(c.prompt, 100)).
		Int("input_images", len(images)).
		Msg("imagegen: generating")

	resp, err := s.provider.Generate(ctx, gemini.Request{
		Prompt:      c.prompt,
		Images:      images,
		ImagesFirst: c.imagesFirst,
		AspectRatio: ratio,
		RequestID:   infra.RequestIDFromContext(ctx),
	})
	if err != nil {
		return s.failed(c, domain.APIError("generation request failed", err))
	}
	if resp == nil || (resp.Image == nil && resp.Text == "") {
		return s.failed(c, domain.APIError("response contained no image or text", nil))
	}

	res.Success = true
	res.TextContent = resp.Text
	if resp.Image == nil {
		logger.Info().Msg("imagegen: response contained text only")
		return res
	}
	res.ImageData = resp.Image.Data
	res.ImageMIME = resp.Image.MIMEType
	if c.out.SkipSave {
		return res
	}

	key := res.Metadata.OutputFilename + extensionFor(resp.Image.MIMEType)
	key, err = s.store.Write(ctx, key, resp.Image.Data)
	if err != nil {
		failed := s.failed(c, domain.StorageError("save image", err))
		failed.TextContent = res.TextContent
		return failed
	}
	res.ImagePath = s.store.Path(key)
	logger.Info().Str("path", res.ImagePath).Msg("imagegen: image saved")
	return res
}
