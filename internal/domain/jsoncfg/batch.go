package jsoncfg

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// BatchFile is the payload accepted by the batch CLI command and the batch
// HTTP route.
type BatchFile struct {
	Prompts      []string `json:"prompts"`
	OutputPrefix string   `json:"output_prefix"`
	AspectRatio  string   `json:"aspect_ratio"`
}

var allowedAspectRatios = map[string]struct{}{
	"1:1":  {},
	"2:3":  {},
	"3:2":  {},
	"3:4":  {},
	"4:3":  {},
	"4:5":  {},
	"5:4":  {},
	"9:16": {},
	"16:9": {},
	"21:9": {},
}

const (
	// DefaultBatchPrefix names batch outputs when the caller gives no prefix.
	DefaultBatchPrefix = "batch"
	// MaxBatchPrompts caps a single batch run.
	MaxBatchPrompts = 50
)

// ValidAspectRatio reports whether ratio is accepted by the image model. The
// empty string means "model default" and is valid.
func ValidAspectRatio(ratio string) bool {
	if ratio == "" {
		return true
	}
	_, ok := allowedAspectRatios[ratio]
	return ok
}

// AspectRatios lists the accepted ratios in a stable order.
func AspectRatios() []string {
	return []string{"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"}
}

// Normalize trims fields and applies defaults. Prompts are kept positionally,
// blank entries included, so results stay aligned with the input.
func (b *BatchFile) Normalize() {
	if b == nil {
		return
	}
	for i, p := range b.Prompts {
		b.Prompts[i] = strings.TrimSpace(p)
	}
	b.OutputPrefix = strings.TrimSpace(b.OutputPrefix)
	if b.OutputPrefix == "" {
		b.OutputPrefix = DefaultBatchPrefix
	}
	b.AspectRatio = strings.TrimSpace(b.AspectRatio)
}

// Validate checks the payload before any generation starts.
func (b BatchFile) Validate() error {
	if len(b.Prompts) == 0 {
		return fmt.Errorf("prompts is required")
	}
	if len(b.Prompts) > MaxBatchPrompts {
		return fmt.Errorf("prompts must contain at most %d entries", MaxBatchPrompts)
	}
	if strings.ContainsAny(b.OutputPrefix, `/\`) {
		return fmt.Errorf("output_prefix must not contain path separators")
	}
	if !ValidAspectRatio(b.AspectRatio) {
		return fmt.Errorf("aspect_ratio must be one of %s", strings.Join(AspectRatios(), ", "))
	}
	return nil
}

// ParseBatchFile reads a batch definition. JSON objects are decoded as
// BatchFile; anything else is treated as one prompt per non-empty line, with
// lines starting with '#' skipped.
func ParseBatchFile(data []byte) (BatchFile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var b BatchFile
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return BatchFile{}, fmt.Errorf("decode batch file: %w", err)
		}
		b.Normalize()
		return b, nil
	}

	var b BatchFile
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.Prompts = append(b.Prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return BatchFile{}, fmt.Errorf("read batch file: %w", err)
	}
	b.Normalize()
	return b, nil
}
