package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ImageStyle enumerates the visual styles offered to callers.
type ImageStyle string

const (
	StylePhotorealistic ImageStyle = "photorealistic"
	StyleArtistic       ImageStyle = "artistic"
	StyleCartoon        ImageStyle = "cartoon"
	StyleAnime          ImageStyle = "anime"
	StyleSketch         ImageStyle = "sketch"
	StylePainting       ImageStyle = "painting"
	StyleMinimalist     ImageStyle = "minimalist"
	StyleCustom         ImageStyle = "custom"
)

var styleOrder = []ImageStyle{
	StylePhotorealistic,
	StyleArtistic,
	StyleCartoon,
	StyleAnime,
	StyleSketch,
	StylePainting,
	StyleMinimalist,
	StyleCustom,
}

var stylePhrases = map[ImageStyle]string{
	StylePhotorealistic: "photorealistic",
	StyleArtistic:       "artistic",
	StyleCartoon:        "cartoon",
	StyleAnime:          "anime",
	StyleSketch:         "sketch",
	StylePainting:       "painting",
	StyleMinimalist:     "minimalist",
	StyleCustom:         "custom",
}

// ImageStyles returns every style in display order.
func ImageStyles() []ImageStyle {
	out := make([]ImageStyle, len(styleOrder))
	copy(out, styleOrder)
	return out
}

// Phrase returns the text inserted into prompts for the style.
func (s ImageStyle) Phrase() string {
	return stylePhrases[s]
}

func (s ImageStyle) String() string { return string(s) }

// ResolveStyle maps a style name to its phrase. Free text that is not a known
// style is returned trimmed, so callers can pass their own descriptions.
func ResolveStyle(value string) string {
	value = strings.TrimSpace(value)
	if phrase, ok := stylePhrases[ImageStyle(strings.ToLower(value))]; ok {
		return phrase
	}
	return value
}

// CameraAngle enumerates composition angles.
type CameraAngle string

const (
	AngleWide     CameraAngle = "wide_angle"
	AngleMacro    CameraAngle = "macro"
	AngleLow      CameraAngle = "low_angle"
	AngleHigh     CameraAngle = "high_angle"
	AngleCloseUp  CameraAngle = "close_up"
	AngleBirdsEye CameraAngle = "bird_eye"
	AngleDutch    CameraAngle = "dutch_angle"
)

var angleOrder = []CameraAngle{
	AngleWide,
	AngleMacro,
	AngleLow,
	AngleHigh,
	AngleCloseUp,
	AngleBirdsEye,
	AngleDutch,
}

var anglePhrases = map[CameraAngle]string{
	AngleWide:     "wide-angle shot",
	AngleMacro:    "macro shot",
	AngleLow:      "low-angle perspective",
	AngleHigh:     "high-angle perspective",
	AngleCloseUp:  "close-up shot",
	AngleBirdsEye: "bird's eye view",
	AngleDutch:    "dutch angle",
}

// CameraAngles returns every angle in display order.
func CameraAngles() []CameraAngle {
	out := make([]CameraAngle, len(angleOrder))
	copy(out, angleOrder)
	return out
}

func (a CameraAngle) Phrase() string {
	return anglePhrases[a]
}

func (a CameraAngle) String() string { return string(a) }

// ResolveAngle accepts either the symbolic name (wide_angle, "wide-angle")
// or the phrase itself. Anything else is passed through trimmed.
func ResolveAngle(value string) string {
	value = strings.TrimSpace(value)
	key := strings.ToLower(value)
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if phrase, ok := anglePhrases[CameraAngle(key)]; ok {
		return phrase
	}
	for _, phrase := range anglePhrases {
		if strings.EqualFold(phrase, value) {
			return phrase
		}
	}
	return value
}

var interiorOrder = []string{
	"modern",
	"minimalist",
	"neoclassical",
	"industrial_loft",
	"coastal",
	"country",
	"scandinavian",
	"japanese",
	"japandi",
	"modern_american",
	"mid_century_modern",
	"modern_classic",
}

var interiorStyles = map[string]string{
	"modern":             "modern style, clean, neutral color, minimalistic furniture, marble tile floors, abundant natural light, sleek materials, bright color schemes",
	"minimalist":         "minimalist style, monochromatic and cold tones, large flat floors, white walls, clean and uncluttered aesthetics, low-profile furniture, natural light, calming and spacious environment",
	"neoclassical":       "neoclassical style, bright and elegant tone, marble floors, white paneled walls, luxurious and sophisticated materials, soft neutral-toned furniture, soft and warm lighting",
	"industrial_loft":    "industrial loft, reclaimed wood, walnut floors, exposed structural elements like pipes and beams, concrete or brick walls, vintage and repurposed furniture, leather and metal accents",
	"coastal":            "coastal style, weathered wood, rattan, jute furniture, natural light, cotton linen, driftwood",
	"country":            "country style, natural materials like wood, and brick walls, delicate grooved details, soft pastel painted wood, and ornate metal handles, floral and plaid patterns furniture, warm tones, soft natural lighting",
	"scandinavian":       "scandinavian style, crisp clean lines, cozy furniture, oak floors, soft natural light, warm natural materials, neutral palettes, airy and tranquil atmosphere",
	"japanese":           "japanese style, wood bamboo stone flooring furniture, clean line, tatami, low wooden table, shoji door, bonsai, bamboo, paper lanterns, natural material pendant lights",
	"japandi":            "japandi style, japanese minimalism, scandinavian coziness, natural wood, clean line, tatami, shoji, japanese aesthetic, warm",
	"modern_american":    "modern american style, wood, metal, glass, timeless furniture, pendant lights, floor lamp, contemporary",
	"mid_century_modern": "mid century modern interior, warm wooden tones and rich walnut finishes, retro aesthetic furniture, a color palette with muted earth tones and pops of color",
	"modern_classic":     "modern classic style, metallic accent, crown molding, wainscoting, rich fabrics, velvet, silk, linen",
}

// InteriorStyles returns the preset keys accepted by ResolveInteriorStyle.
func InteriorStyles() []string {
	out := make([]string, len(interiorOrder))
	copy(out, interiorOrder)
	return out
}

// ResolveInteriorStyle turns a preset key into its description. "custom"
// uses the caller's text; unknown keys are humanized ("art_deco" becomes
// "Art Deco").
func ResolveInteriorStyle(key, custom string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == string(StyleCustom) {
		if custom = strings.TrimSpace(custom); custom != "" {
			return custom
		}
	}
	if phrase, ok := interiorStyles[key]; ok {
		return phrase
	}
	// Casers are stateful; one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// WithStyle appends a style instruction to an editing prompt. Unknown styles
// and "custom" without text leave the prompt unchanged.
func WithStyle(base, style, custom string) string {
	style = strings.ToLower(strings.TrimSpace(style))
	var phrase string
	switch {
	case style == "":
		return base
	case style == string(StyleCustom):
		phrase = strings.TrimSpace(custom)
	default:
		phrase = stylePhrases[ImageStyle(style)]
	}
	if phrase == "" {
		return base
	}
	base = strings.TrimRight(strings.TrimSpace(base), ".")
	return base + ". Render the result in a " + phrase + " style."
}
