package httpapi

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/imagegen"
	"imagestudio/internal/providers/gemini"
	"imagestudio/internal/storage"
)

type stubProvider struct{}

func (stubProvider) Generate(context.Context, gemini.Request) (*gemini.Response, error) {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return &gemini.Response{Image: &gemini.Image{Data: buf.Bytes(), MIMEType: "image/png"}}, nil
}

func (stubProvider) Model() string { return "stub-model" }

func newTestRouter(t *testing.T, opts Options) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	svc, err := imagegen.NewService(imagegen.Options{Provider: stubProvider{}, Store: store})
	require.NoError(t, err)
	opts.OutputDir = dir
	app := handlers.NewApp(svc, nil, "imagestudio", 0)
	return NewRouter(app, zerolog.New(io.Discard), opts), dir
}

func TestRouterHealthCarriesRequestID(t *testing.T) {
	h, _ := newTestRouter(t, Options{AllowedOrigins: []string{"*"}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterGenerateThenServeOutput(t *testing.T) {
	h, dir := newTestRouter(t, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"a fox","output_filename":"fox"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want, err := os.ReadFile(filepath.Join(dir, "fox.png"))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outputs/fox.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, rec.Body.Bytes())
}

func TestRouterRateLimitsAPI(t *testing.T) {
	h, _ := newTestRouter(t, Options{RateLimitPerMinute: 1})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/styles", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	// /health sits outside the limited group.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t, Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
