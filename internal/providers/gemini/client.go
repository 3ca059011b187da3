package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"imagestudio/internal/infra"
)

// DefaultModel is the image-capable Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

// Models is the slice of the SDK used here. *genai.Models satisfies it; tests
// substitute a stub.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Models = (*genai.Models)(nil)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
	// Models replaces the SDK transport. When set, APIKey is not required.
	Models Models
}

// Client sends prompts and input images to Gemini and reduces the response to
// at most one image plus any text.
type Client struct {
	models Models
	model  string
	logger *infra.Logger
}

// Image is raw image bytes with their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is one generation call.
type Request struct {
	Prompt string
	Images []Image
	// ImagesFirst places images before the prompt, which composition
	// requests expect.
	ImagesFirst bool
	AspectRatio string
	RequestID   string
}

// Response is the reduced vendor response. At least one of Text or Image is
// set when Generate returns no error.
type Response struct {
	Text         string
	Image        *Image
	FinishReason string
}

// NewClient builds a Client backed by the Gemini Developer API.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	models := opts.Models
	if models == nil {
		apiKey := strings.TrimSpace(opts.APIKey)
		if apiKey == "" {
			return nil, errors.New("gemini: api key is required")
		}
		httpClient := opts.HTTPClient
		if httpClient == nil {
			timeout := opts.Timeout
			if timeout <= 0 {
				timeout = 120 * time.Second
			}
			httpClient = &http.Client{Timeout: timeout}
		}
		sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  httpClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimSpace(opts.BaseURL)},
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: create client: %w", err)
		}
		models = sdk.Models
	}

	return &Client{models: models, model: model, logger: logger}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate issues a single GenerateContent call. Vendor and transport
// failures are returned as errors; nothing is retried.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{buildContent(req)}, buildConfig(req))
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Str("model", c.model).
			Msg("gemini: generate content failed")
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	out, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Int("input_images", len(req.Images)).
		Bool("image", out.Image != nil).
		Int("text_len", len(out.Text)).
		Str("finish_reason", out.FinishReason).
		Msg("gemini: generated content")

	return out, nil
}

func buildContent(req Request) *genai.Content {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	if !req.ImagesFirst {
		parts = append(parts, genai.NewPartFromText(req.Prompt))
	}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	if req.ImagesFirst {
		parts = append(parts, genai.NewPartFromText(req.Prompt))
	}
	return genai.NewContentFromParts(parts, genai.RoleUser)
}

func buildConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if ratio := strings.TrimSpace(req.AspectRatio); ratio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: ratio}
	}
	return cfg
}

// parseResponse reads the first candidate only: text parts are joined with
// newlines and the first inline image wins.
func parseResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil {
		return nil, errors.New("gemini: empty response")
	}
	if len(resp.Candidates) == 0 {
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			msg := fmt.Sprintf("gemini: prompt blocked (%s)", fb.BlockReason)
			if fb.BlockReasonMessage != "" {
				msg += ": " + fb.BlockReasonMessage
			}
			return nil, errors.New(msg)
		}
		return nil, errors.New("gemini: response has no candidates")
	}

	candidate := resp.Candidates[0]
	out := &Response{FinishReason: string(candidate.FinishReason)}
	var texts []string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				if out.Image == nil {
					mime := part.InlineData.MIMEType
					if mime == "" {
						mime = http.DetectContentType(part.InlineData.Data)
					}
					out.Image = &Image{Data: part.InlineData.Data, MIMEType: mime}
				}
				continue
			}
			if text := strings.TrimSpace(part.Text); text != "" {
				texts = append(texts, text)
			}
		}
	}
	out.Text = strings.Join(texts, "\n")

	if out.Image == nil && out.Text == "" {
		switch candidate.FinishReason {
		case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
		default:
			return nil, fmt.Errorf("gemini: generation stopped (finish reason %s)", candidate.FinishReason)
		}
		return nil, errors.New("gemini: response contained no image or text")
	}
	return out, nil
}
