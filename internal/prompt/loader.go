package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"imagestudio/internal/domain"
	"imagestudio/internal/infra"
)

//go:embed resources/*.txt
var resources embed.FS

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// CatalogOptions configures where template text is read from. When Dir is
// set, a <type>.txt file found there replaces the embedded one.
type CatalogOptions struct {
	Dir    string
	Logger *infra.Logger
}

// Template is a loaded, immutable prompt template.
type Template struct {
	Type         TemplateType
	Text         string
	Slots        []Slot
	placeholders []string
}

// Placeholders returns the placeholder names in order of first appearance.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// Catalog holds every template of the closed set. It is read-only after
// NewCatalog returns and safe for concurrent use.
type Catalog struct {
	templates map[TemplateType]*Template
}

// NewCatalog loads all templates once. It fails if a template file is
// missing, references an undeclared placeholder, or omits a declared one.
func NewCatalog(opts CatalogOptions) (*Catalog, error) {
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	dir := strings.TrimSpace(opts.Dir)
	c := &Catalog{templates: make(map[TemplateType]*Template, len(templateOrder))}
	for _, t := range templateOrder {
		text, source, err := loadTemplateText(dir, t)
		if err != nil {
			return nil, err
		}
		tpl, err := newTemplate(t, text)
		if err != nil {
			return nil, err
		}
		c.templates[t] = tpl
		logger.Debug().
			Str("template", string(t)).
			Str("source", source).
			Int("placeholders", len(tpl.placeholders)).
			Msg("prompt: template loaded")
	}
	return c, nil
}

func loadTemplateText(dir string, t TemplateType) (string, string, error) {
	name := string(t) + ".txt"
	if dir != "" {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return strings.TrimSpace(string(data)), path, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", "", fmt.Errorf("prompt: read %s: %w", path, err)
		}
	}
	data, err := resources.ReadFile("resources/" + name)
	if err != nil {
		return "", "", fmt.Errorf("prompt: embedded template %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), "embedded", nil
}

func newTemplate(t TemplateType, text string) (*Template, error) {
	slots := definitions[t]
	declared := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		declared[s.Name] = struct{}{}
	}

	placeholders := parsePlaceholders(text)
	seen := make(map[string]struct{}, len(placeholders))
	for _, name := range placeholders {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("prompt: template %s uses undeclared placeholder {%s}", t, name)
		}
		seen[name] = struct{}{}
	}
	for _, s := range slots {
		if _, ok := seen[s.Name]; !ok {
			return nil, fmt.Errorf("prompt: template %s is missing placeholder {%s}", t, s.Name)
		}
	}

	return &Template{Type: t, Text: text, Slots: slots, placeholders: placeholders}, nil
}

func parsePlaceholders(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Template returns the loaded template for t.
func (c *Catalog) Template(t TemplateType) (*Template, error) {
	tpl, ok := c.templates[t]
	if !ok {
		return nil, domain.Templatef("unknown template type %q", t)
	}
	return tpl, nil
}

// Info describes a single template.
func (c *Catalog) Info(t TemplateType) (TemplateInfo, error) {
	tpl, err := c.Template(t)
	if err != nil {
		return TemplateInfo{}, err
	}
	info := TemplateInfo{
		Type:         tpl.Type,
		Text:         tpl.Text,
		Placeholders: tpl.Placeholders(),
		Required:     []string{},
		Optional:     []string{},
	}
	for _, s := range tpl.Slots {
		if s.Required {
			info.Required = append(info.Required, s.Name)
		} else {
			info.Optional = append(info.Optional, s.Name)
		}
	}
	return info, nil
}

// List describes every template in catalog order.
func (c *Catalog) List() []TemplateInfo {
	out := make([]TemplateInfo, 0, len(templateOrder))
	for _, t := range templateOrder {
		info, err := c.Info(t)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out
}
