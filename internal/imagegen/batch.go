package imagegen

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"imagestudio/internal/domain"
	"imagestudio/internal/domain/jsoncfg"
	"imagestudio/pkg/zip"
)

// BatchFilename names the i-th (1-based) output of a batch.
func BatchFilename(prefix string, index int) string {
	return fmt.Sprintf("%s_%d", prefix, index)
}

// BatchGenerate runs each prompt through GenerateTextToImage, one after the
// other, and returns one result per prompt in input order. A failed prompt
// does not stop the ones after it. A prefix containing a path separator fails
// every prompt with a ValidationError without calling the provider.
func (s *Service) BatchGenerate(ctx context.Context, prompts []string, prefix string) []domain.GenerationResult {
	return s.batch(ctx, prompts, prefix, "")
}

// BatchGenerateFile runs a normalized batch definition.
func (s *Service) BatchGenerateFile(ctx context.Context, file jsoncfg.BatchFile) []domain.GenerationResult {
	return s.batch(ctx, file.Prompts, file.OutputPrefix, file.AspectRatio)
}

func (s *Service) batch(ctx context.Context, prompts []string, prefix, ratio string) []domain.GenerationResult {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = jsoncfg.DefaultBatchPrefix
	}
	results := make([]domain.GenerationResult, 0, len(prompts))
	if strings.ContainsAny(prefix, `/\`) {
		err := domain.Validationf("output prefix %q must not contain path separators", prefix)
		for i, p := range prompts {
			results = append(results, s.failed(call{
				kind:        domain.TypeTextToImage,
				prompt:      p,
				out:         Output{Filename: BatchFilename(prefix, i+1)},
				defaultName: DefaultTextToImageName,
			}, err))
		}
		return results
	}
	for i, p := range prompts {
		s.logger.Info().
			Int("index", i+1).
			Int("total", len(prompts)).
			Msg("imagegen: batch item")
		results = append(results, s.GenerateTextToImage(ctx, p, Output{
			Filename:    BatchFilename(prefix, i+1),
			AspectRatio: ratio,
		}))
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	s.logger.Info().
		Int("total", len(results)).
		Int("succeeded", succeeded).
		Msg("imagegen: batch finished")
	return results
}

// ArchiveResults zips the images of successful results. Results without
// image bytes are skipped.
func ArchiveResults(results []domain.GenerationResult) ([]byte, error) {
	assets := make([]zip.Asset, 0, len(results))
	for _, r := range results {
		if !r.Success || len(r.ImageData) == 0 {
			continue
		}
		name := r.Metadata.OutputFilename + extensionFor(r.ImageMIME)
		if r.ImagePath != "" {
			name = filepath.Base(r.ImagePath)
		}
		assets = append(assets, zip.Asset{Filename: name, MIME: r.ImageMIME, Data: r.ImageData})
	}
	return zip.ArchiveAssets(assets)
}
