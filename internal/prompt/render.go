package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"imagestudio/internal/domain"
)

// Params carries named template parameters. Values may be strings, string
// slices ([]string or []any as decoded from JSON), booleans or fmt.Stringer
// values such as ImageStyle and CameraAngle.
type Params map[string]any

// Render substitutes params into the template for t. Unknown parameters are
// ignored. It fails with a TemplateError when t is not in the catalog or a
// required parameter is missing.
func (c *Catalog) Render(t TemplateType, params Params) (string, error) {
	tpl, err := c.Template(t)
	if err != nil {
		return "", err
	}
	pairs := make([]string, 0, len(tpl.Slots)*2)
	for _, slot := range tpl.Slots {
		value, err := slot.render(t, params)
		if err != nil {
			return "", err
		}
		pairs = append(pairs, "{"+slot.Name+"}", value)
	}
	// Single pass: braces inside values are never expanded again.
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tpl.Text)), nil
}

func (s Slot) render(t TemplateType, params Params) (string, error) {
	raw, ok := s.lookup(params)

	if s.Kind == SlotToggle {
		if !ok {
			return s.Default, nil
		}
		on, err := toBool(raw)
		if err != nil {
			return "", domain.Templatef("%s: parameter %q must be a boolean", t, s.Name)
		}
		if on {
			return s.Phrase, nil
		}
		return "", nil
	}

	value := ""
	if ok {
		value = s.resolve(toStrings(raw))
	}
	if value == "" {
		if s.Required {
			return "", domain.Templatef("%s: missing required parameter %q", t, s.Name)
		}
		return s.Default, nil
	}
	if s.Format != "" {
		value = fmt.Sprintf(s.Format, value)
	}
	return value, nil
}

// lookup finds the slot's parameter by name or alias. Nil and blank values
// count as absent.
func (s Slot) lookup(params Params) (any, bool) {
	names := append([]string{s.Name}, s.Aliases...)
	for _, name := range names {
		v, ok := params[name]
		if !ok || v == nil {
			continue
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (s Slot) resolve(items []string) string {
	switch s.Kind {
	case SlotStyle:
		return ResolveStyle(strings.Join(items, ", "))
	case SlotAngle:
		return ResolveAngle(strings.Join(items, ", "))
	case SlotSteps:
		steps := make([]string, 0, len(items))
		for i, step := range items {
			steps = append(steps, fmt.Sprintf("Step %d: %s", i+1, step))
		}
		return strings.Join(steps, " ")
	default:
		return strings.Join(items, ", ")
	}
}

// toStrings flattens a parameter value into trimmed, non-empty items.
func toStrings(v any) []string {
	var items []string
	switch val := v.(type) {
	case string:
		items = []string{val}
	case []string:
		items = val
	case []any:
		for _, item := range val {
			if item == nil {
				continue
			}
			items = append(items, stringify(item))
		}
	default:
		items = []string{stringify(val)}
	}
	out := items[:0:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func toBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	default:
		return strconv.ParseBool(stringify(val))
	}
}
