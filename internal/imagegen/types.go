package imagegen

import (
	"context"
	"mime"
	"path"
	"strings"

	"imagestudio/internal/providers/gemini"
)

// Provider is the vendor boundary. The Gemini adapter implements it; tests
// use a stub that counts calls.
type Provider interface {
	Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error)
	Model() string
}

var _ Provider = (*gemini.Client)(nil)

// MaxInputImages is the most input images a single request may carry.
const MaxInputImages = 3

// Default output names per operation.
const (
	DefaultTextToImageName = "generated_text_to_image"
	DefaultEditingName     = "generated_image_editing"
	DefaultCleaningName    = "cleaned_image"
	DefaultCompositionName = "composed_image"
)

// Output controls what happens to a returned image. The zero value saves
// under the operation's default name with the service's aspect ratio.
type Output struct {
	Filename    string
	SkipSave    bool
	AspectRatio string
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// extensionFor maps a MIME type to a file extension, defaulting to .png.
func extensionFor(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if base, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = base
	}
	if ext, ok := imageExtensions[mimeType]; ok {
		return ext
	}
	return ".png"
}

// outputName reduces a caller-supplied name to a bare file stem: directories
// are dropped and a known image extension is removed.
func outputName(name, fallback string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return fallback
	}
	name = path.Base(name)
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		name = strings.TrimSuffix(name, path.Ext(name))
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return fallback
	}
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
