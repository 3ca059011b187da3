package imagegen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"os"
	"reflect"
	"strings"

	"imagestudio/internal/domain"
	"imagestudio/internal/providers/gemini"
)

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourcePath
	sourceDecoded
	sourceBase64
	sourceBytes
)

// ImageSource is an input image given as a file path, a decoded image, a
// base64 string or raw bytes. Normalize turns any variant into the bytes sent
// to the model.
type ImageSource struct {
	kind    sourceKind
	path    string
	img     image.Image
	encoded string
	data    []byte
}

func ImageFromPath(path string) ImageSource {
	return ImageSource{kind: sourcePath, path: path}
}

func ImageFromDecoded(img image.Image) ImageSource {
	return ImageSource{kind: sourceDecoded, img: img}
}

// ImageFromBase64 accepts plain base64 or a data URL
// ("data:image/png;base64,....").
func ImageFromBase64(encoded string) ImageSource {
	return ImageSource{kind: sourceBase64, encoded: encoded}
}

func ImageFromBytes(data []byte) ImageSource {
	return ImageSource{kind: sourceBytes, data: data}
}

// String describes the source for logs without dumping its contents.
func (s ImageSource) String() string {
	switch s.kind {
	case sourcePath:
		return "path:" + s.path
	case sourceDecoded:
		return "decoded image"
	case sourceBase64:
		return fmt.Sprintf("base64 (%d chars)", len(s.encoded))
	case sourceBytes:
		return fmt.Sprintf("bytes (%d)", len(s.data))
	default:
		return "none"
	}
}

// Normalize returns the canonical byte representation. Failures are
// InputErrors.
func (s ImageSource) Normalize() (gemini.Image, error) {
	switch s.kind {
	case sourcePath:
		data, err := os.ReadFile(s.path)
		if err != nil {
			return gemini.Image{}, domain.InputError(fmt.Sprintf("read image %q", s.path), err)
		}
		return sniffImage(data)
	case sourceDecoded:
		if isNilImage(s.img) {
			return gemini.Image{}, domain.InputError("decoded image is nil", nil)
		}
		data, err := encodePNG(s.img)
		if err != nil {
			return gemini.Image{}, domain.InputError("encode image as png", err)
		}
		return gemini.Image{Data: data, MIMEType: "image/png"}, nil
	case sourceBase64:
		data, err := decodeBase64(s.encoded)
		if err != nil {
			return gemini.Image{}, domain.InputError("decode base64 image", err)
		}
		return sniffImage(data)
	case sourceBytes:
		return sniffImage(s.data)
	default:
		return gemini.Image{}, domain.InputError("no image provided", nil)
	}
}

// isNilImage also catches typed nils such as (*image.RGBA)(nil).
func isNilImage(img image.Image) bool {
	if img == nil {
		return true
	}
	v := reflect.ValueOf(img)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return v.IsNil()
	}
	return false
}

// encodePNG turns a panic from a malformed image into an error.
func encodePNG(img image.Image) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed image: %v", r)
		}
	}()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeBase64(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		encoded = encoded[idx+1:]
	}
	encoded = strings.Join(strings.Fields(encoded), "")
	if encoded == "" {
		return nil, fmt.Errorf("empty input")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(encoded); rawErr == nil {
			return raw, nil
		}
		return nil, err
	}
	return data, nil
}

// sniffImage checks the content type and, for formats the standard library
// can parse, that the header decodes.
func sniffImage(data []byte) (gemini.Image, error) {
	if len(data) == 0 {
		return gemini.Image{}, domain.InputError("image is empty", nil)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return gemini.Image{}, domain.InputError(fmt.Sprintf("unsupported content type %q", mime), nil)
	}
	switch mime {
	case "image/png", "image/jpeg", "image/gif":
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return gemini.Image{}, domain.InputError("decode image", err)
		}
	}
	return gemini.Image{Data: data, MIMEType: mime}, nil
}
