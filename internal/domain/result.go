package domain

// Generation types recorded in result metadata.
const (
	TypeTextToImage           = "text_to_image"
	TypeImageEditing          = "image_editing"
	TypeMultiImageComposition = "multi_image_composition"
	TypeImageCleaning         = "image_cleaning"
)

// Metadata describes how a result was produced.
type Metadata struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Type           string `json:"type"`
	Template       string `json:"template,omitempty"`
	InputImages    int    `json:"input_images_count,omitempty"`
	OutputFilename string `json:"output_filename,omitempty"`
}

// GenerationResult is the uniform record returned by every generation
// operation. ImageData is never serialized; clients fetch the file at
// ImagePath instead.
type GenerationResult struct {
	Success     bool     `json:"success"`
	TextContent string   `json:"text_content,omitempty"`
	ImageData   []byte   `json:"-"`
	ImageMIME   string   `json:"image_mime_type,omitempty"`
	ImagePath   string   `json:"image_path,omitempty"`
	Error       string   `json:"error,omitempty"`
	Err         error    `json:"-"`
	Metadata    Metadata `json:"metadata"`
}

// Fail marks the result as failed with err.
func (r *GenerationResult) Fail(err error) {
	r.Success = false
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}
