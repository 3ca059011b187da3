package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/imagegen"
	"imagestudio/internal/infra"
	"imagestudio/internal/providers/gemini"
	"imagestudio/internal/storage"
)

type stubProvider struct {
	mu   sync.Mutex
	reqs []gemini.Request
}

func (p *stubProvider) Generate(_ context.Context, req gemini.Request) (*gemini.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reqs = append(p.reqs, req)
	if strings.Contains(req.Prompt, "explode") {
		return nil, errors.New("backend unavailable")
	}
	return &gemini.Response{Image: &gemini.Image{Data: pngBytes(), MIMEType: "image/png"}}, nil
}

func (p *stubProvider) Model() string { return "stub-model" }

func pngBytes() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	return buf.Bytes()
}

type harness struct {
	provider *stubProvider
	outDir   string
	built    int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	return &harness{provider: &stubProvider{}, outDir: t.TempDir()}
}

func (h *harness) factory(_ context.Context, _ *infra.Config, logger *infra.Logger) (*imagegen.Service, error) {
	h.built++
	store, err := storage.NewFileStore(h.outDir)
	if err != nil {
		return nil, err
	}
	return imagegen.NewService(imagegen.Options{Provider: h.provider, Store: store, Logger: logger})
}

func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, h.factory)
	return code, stdout.String(), stderr.String()
}

func writePNG(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, pngBytes(), 0o644))
	return path
}

func TestRunUsage(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run()
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "usage: imagegen")

	code, _, stderr = h.run("paint")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unknown command "paint"`)

	code, _, _ = h.run("generate")
	assert.Equal(t, exitUsage, code)

	code, _, _ = h.run("generate", "-nope")
	assert.Equal(t, exitUsage, code)
	assert.Equal(t, 0, h.built)
}

func TestGenerateCommand(t *testing.T) {
	h := newHarness(t)
	code, stdout, stderr := h.run("generate", "-prompt", "a lighthouse", "-output", "light", "-aspect", "16:9")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, filepath.Join(h.outDir, "light.png"))
	require.Len(t, h.provider.reqs, 1)
	assert.Equal(t, "16:9", h.provider.reqs[0].AspectRatio)
}

func TestGenerateCommandDefaultOutput(t *testing.T) {
	h := newHarness(t)
	code, _, stderr := h.run("generate", "-prompt", "a lighthouse")
	require.Equal(t, exitOK, code, stderr)
	_, err := os.Stat(filepath.Join(h.outDir, "generated.png"))
	assert.NoError(t, err)
}

func TestGenerateCommandFailure(t *testing.T) {
	h := newHarness(t)
	code, _, stderr := h.run("generate", "-prompt", "explode")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "ApiError")
}

func TestEditCommandMissingFile(t *testing.T) {
	h := newHarness(t)
	code, _, stderr := h.run("edit", "-input", filepath.Join(t.TempDir(), "none.png"), "-prompt", "add a lamp")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "InputError")
	assert.Empty(t, h.provider.reqs)
}

func TestCleanAndStyleCommands(t *testing.T) {
	h := newHarness(t)
	room := writePNG(t, "room.png")

	code, _, stderr := h.run("clean", "-input", room, "-objects", "laundry", "-keep-layout=false")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, h.provider.reqs[0].Prompt, "Remove the laundry")

	code, _, stderr = h.run("style", "-input", room, "-style", "coastal")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, h.provider.reqs[1].Prompt, "weathered wood")
	_, err := os.Stat(filepath.Join(h.outDir, "styled.png"))
	assert.NoError(t, err)
}

func TestCompositionCommand(t *testing.T) {
	h := newHarness(t)
	a := writePNG(t, "a.png")
	b := writePNG(t, "b.png")

	code, _, _ := h.run("composition", "-inputs", a, "-goal", "a scene")
	assert.Equal(t, exitUsage, code)

	code, _, _ = h.run("composition", "-inputs", a+","+b, "-goal", "a scene", "-blending", "smudge")
	assert.Equal(t, exitUsage, code)

	code, _, stderr := h.run("composition", "-inputs", a+","+b, "-goal", "a beach scene", "-blending", "collage")
	require.Equal(t, exitOK, code, stderr)
	require.Len(t, h.provider.reqs, 1)
	req := h.provider.reqs[0]
	assert.True(t, req.ImagesFirst)
	assert.Len(t, req.Images, 2)
	assert.Contains(t, req.Prompt, "(a.png, b.png)")
	assert.Contains(t, req.Prompt, "collage")
	_, err := os.Stat(filepath.Join(h.outDir, "composition.png"))
	assert.NoError(t, err)
}

func TestTemplatesCommand(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.run("templates")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "logo_design")
	assert.Contains(t, stdout, "company_name")

	code, stdout, stderr := h.run("templates", "-type", "steps", "-param", "steps=sand the floor", "-param", "steps=oil it")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Step 1: sand the floor")
	assert.Contains(t, stdout, "Step 2: oil it")

	code, _, _ = h.run("templates", "-type", "logo_design")
	assert.Equal(t, exitFailure, code)

	code, _, _ = h.run("templates", "-type", "poster")
	assert.Equal(t, exitUsage, code)

	code, _, _ = h.run("templates", "-param", "novalue")
	assert.Equal(t, exitUsage, code)
	assert.Equal(t, 0, h.built)
}

func TestBatchCommand(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "prompts.txt")
	require.NoError(t, os.WriteFile(file, []byte("# animals\na fox\nexplode\na heron\n"), 0o644))
	archive := filepath.Join(dir, "out.zip")

	code, stdout, _ := h.run("batch", "-file", file, "-prefix", "zoo", "-zip", archive)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "2 of 3 succeeded")

	for _, name := range []string{"zoo_1.png", "zoo_3.png"} {
		_, err := os.Stat(filepath.Join(h.outDir, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(h.outDir, "zoo_2.png"))
	assert.True(t, os.IsNotExist(err))

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 2)
}

func TestBatchCommandRequiresFile(t *testing.T) {
	h := newHarness(t)
	code, _, _ := h.run("batch")
	assert.Equal(t, exitUsage, code)
}

func TestParamFlag(t *testing.T) {
	var p paramFlag
	require.NoError(t, p.Set("subject=a fox"))
	require.NoError(t, p.Set("steps=one"))
	require.NoError(t, p.Set("steps=two=2"))
	require.Error(t, p.Set("=x"))

	params := p.Params()
	assert.Equal(t, "a fox", params["subject"])
	assert.Equal(t, []string{"one", "two=2"}, params["steps"])
}
