package prompt

import (
	"strings"

	"imagestudio/internal/domain"
)

// TemplateType selects which prompt-construction rule is applied.
type TemplateType string

const (
	TextToImage           TemplateType = "text_to_image"
	Inpainting            TemplateType = "inpainting"
	StyleTransfer         TemplateType = "style_transfer"
	MultiImageComposition TemplateType = "multi_image_composition"
	TextRendering         TemplateType = "text_rendering"
	CleanRoom             TemplateType = "clean_room"
	StepByStep            TemplateType = "step_by_step"
	IterativeRefinement   TemplateType = "iterative_refinement"
	LogoDesign            TemplateType = "logo_design"
	ProductPhotography    TemplateType = "product_photography"
	InteriorDesign        TemplateType = "interior_design"
	CharacterDesign       TemplateType = "character_design"
)

var templateOrder = []TemplateType{
	TextToImage,
	Inpainting,
	StyleTransfer,
	MultiImageComposition,
	TextRendering,
	CleanRoom,
	StepByStep,
	IterativeRefinement,
	LogoDesign,
	ProductPhotography,
	InteriorDesign,
	CharacterDesign,
}

// Short names used by the web front end and older clients.
var templateAliases = map[string]TemplateType{
	"text":        TextToImage,
	"style":       StyleTransfer,
	"composition": MultiImageComposition,
	"steps":       StepByStep,
	"refine":      IterativeRefinement,
}

// AllTemplateTypes returns the closed set of template types in catalog order.
func AllTemplateTypes() []TemplateType {
	out := make([]TemplateType, len(templateOrder))
	copy(out, templateOrder)
	return out
}

// ParseTemplateType resolves a canonical name or alias. Unknown names fail
// with a TemplateError.
func ParseTemplateType(s string) (TemplateType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if t, ok := templateAliases[key]; ok {
		return t, nil
	}
	t := TemplateType(key)
	if _, ok := definitions[t]; ok {
		return t, nil
	}
	return "", domain.Templatef("unknown template type %q", s)
}

// SlotKind controls how a parameter value is turned into template text.
type SlotKind int

const (
	SlotText SlotKind = iota
	SlotStyle
	SlotAngle
	SlotList
	SlotSteps
	SlotToggle
)

func (k SlotKind) String() string {
	switch k {
	case SlotStyle:
		return "style"
	case SlotAngle:
		return "angle"
	case SlotList:
		return "list"
	case SlotSteps:
		return "steps"
	case SlotToggle:
		return "toggle"
	default:
		return "text"
	}
}

// Slot declares one placeholder of a template.
//
// Optional slots render Default when the parameter is absent and Format
// (a single %s verb) around the resolved value when present. Toggle slots
// render Phrase when true and nothing when false; absent toggles render
// Default.
type Slot struct {
	Name     string
	Kind     SlotKind
	Required bool
	Format   string
	Default  string
	Phrase   string
	Aliases  []string
}

const (
	phraseStyleConsistency = " while maintaining visual consistency and style"
	phrasePreserveSubject  = " while preserving the main subject and composition"
	phraseMaintainLayout   = " while maintaining the original room layout and structure"
	defaultCleanup         = "Clean up this room by removing all clutter and unnecessary objects"
)

var definitions = map[TemplateType][]Slot{
	TextToImage: {
		{Name: "subject", Required: true},
		{Name: "style", Kind: SlotStyle, Default: string(StylePhotorealistic)},
		{Name: "context", Default: "image"},
		{Name: "angle", Kind: SlotAngle, Format: ", using %s", Aliases: []string{"camera_angle"}},
		{Name: "lighting", Format: ", with %s"},
		{Name: "composition", Format: ", and %s"},
		{Name: "negative_prompt", Format: ", ensuring %s", Aliases: []string{"negative"}},
	},
	Inpainting: {
		{Name: "base_image_description", Required: true, Aliases: []string{"base_image", "base"}},
		{Name: "mask_area", Required: true, Aliases: []string{"mask"}},
		{Name: "replacement_content", Required: true, Aliases: []string{"replace"}},
		{Name: "style_consistency", Kind: SlotToggle, Phrase: phraseStyleConsistency, Default: phraseStyleConsistency},
	},
	StyleTransfer: {
		{Name: "source_image_description", Required: true, Aliases: []string{"source_image", "source"}},
		{Name: "target_style", Required: true, Aliases: []string{"target"}},
		{Name: "preserve_subject", Kind: SlotToggle, Phrase: phrasePreserveSubject, Default: phrasePreserveSubject},
	},
	MultiImageComposition: {
		{Name: "images", Kind: SlotList, Format: " (%s)"},
		{Name: "composition_goal", Required: true, Aliases: []string{"goal"}},
		{Name: "blending_style", Default: "seamless", Aliases: []string{"blending"}},
	},
	TextRendering: {
		{Name: "context", Default: "graphic design"},
		{Name: "text_content", Required: true, Aliases: []string{"text"}},
		{Name: "design_style", Required: true},
	},
	CleanRoom: {
		{Name: "objects", Format: "Remove the %s", Default: defaultCleanup, Aliases: []string{"specific_objects"}},
		{Name: "maintain_layout", Kind: SlotToggle, Phrase: phraseMaintainLayout, Default: phraseMaintainLayout},
	},
	StepByStep: {
		{Name: "steps", Kind: SlotSteps, Required: true},
	},
	IterativeRefinement: {
		{Name: "base_prompt", Required: true},
		{Name: "refinement_instruction", Required: true, Aliases: []string{"refinement"}},
	},
	LogoDesign: {
		{Name: "style", Required: true},
		{Name: "industry", Required: true},
		{Name: "company_name", Required: true},
		{Name: "color_scheme", Required: true},
		{Name: "design_elements", Required: true},
	},
	ProductPhotography: {
		{Name: "product", Required: true},
		{Name: "background", Required: true},
		{Name: "lighting", Required: true},
		{Name: "camera_angle", Kind: SlotAngle, Required: true},
	},
	InteriorDesign: {
		{Name: "room_type", Required: true},
		{Name: "style", Required: true},
		{Name: "furniture", Required: true},
		{Name: "lighting", Required: true},
		{Name: "camera_angle", Kind: SlotAngle, Required: true},
	},
	CharacterDesign: {
		{Name: "character_type", Required: true},
		{Name: "physical_features", Required: true},
		{Name: "clothing", Required: true},
		{Name: "setting", Required: true},
		{Name: "art_style", Required: true},
	},
}

// TemplateInfo describes a loaded template for listings.
type TemplateInfo struct {
	Type         TemplateType `json:"type"`
	Text         string       `json:"template"`
	Placeholders []string     `json:"placeholders"`
	Required     []string     `json:"required"`
	Optional     []string     `json:"optional"`
}
