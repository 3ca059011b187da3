package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"imagestudio/internal/domain"
	"imagestudio/internal/domain/jsoncfg"
	"imagestudio/internal/imagegen"
	"imagestudio/internal/infra"
	"imagestudio/internal/prompt"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// serviceFactory builds the generation service once configuration is loaded.
type serviceFactory func(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*imagegen.Service, error)

// usageError marks failures caused by bad arguments.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	cfg        *infra.Config
	logger     infra.Logger
	newService serviceFactory
}

type command struct {
	name    string
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

var commands = []command{
	{"generate", "generate an image from a text prompt", (*cli).generate},
	{"edit", "edit an image with a text prompt", (*cli).edit},
	{"clean", "remove clutter from a room photo", (*cli).clean},
	{"style", "restyle a room photo with an interior preset", (*cli).style},
	{"composition", "compose 2 to 3 images into a new scene", (*cli).composition},
	{"templates", "list the prompt templates or render one", (*cli).templates},
	{"batch", "generate one image per prompt in a file", (*cli).batch},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newService serviceFactory) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFailure
	}
	c := &cli{
		stdout:     stdout,
		stderr:     stderr,
		cfg:        cfg,
		logger:     infra.NewLogger(stderr, cfg.AppEnv, cfg.LogLevel).With().Str("cmd", cmd.name).Logger(),
		newService: newService,
	}

	err = cmd.run(c, ctx, args[1:])
	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		return exitFailure
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: imagegen <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "run 'imagegen <command> -h' for command flags")
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parse wraps flag errors as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usagef("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func (c *cli) service(ctx context.Context) (*imagegen.Service, error) {
	return c.newService(ctx, c.cfg, &c.logger)
}

// report prints a result. Failed results become the command's error.
func (c *cli) report(res domain.GenerationResult) error {
	if !res.Success {
		return res.Err
	}
	if res.ImagePath != "" {
		fmt.Fprintf(c.stdout, "saved %s\n", res.ImagePath)
	} else {
		fmt.Fprintln(c.stdout, "no image returned")
	}
	if text := strings.TrimSpace(res.TextContent); text != "" {
		fmt.Fprintf(c.stdout, "model says: %s\n", text)
	}
	return nil
}

func (c *cli) generate(ctx context.Context, args []string) error {
	fs := c.flags("generate")
	text := fs.String("prompt", "", "text description of the image (required)")
	output := fs.String("output", "generated", "output file name without extension")
	aspect := fs.String("aspect", "", "aspect ratio, e.g. 16:9")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*text) == "" {
		return usagef("-prompt is required")
	}
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	return c.report(svc.GenerateTextToImage(ctx, *text, imagegen.Output{Filename: *output, AspectRatio: *aspect}))
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := c.flags("edit")
	input := fs.String("input", "", "path of the image to edit (required)")
	text := fs.String("prompt", "", "editing instruction (required)")
	style := fs.String("style", "", "optional style: "+joinStyles())
	custom := fs.String("custom", "", "custom style text when -style=custom")
	output := fs.String("output", "edited", "output file name without extension")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *input == "" || strings.TrimSpace(*text) == "" {
		return usagef("-input and -prompt are required")
	}
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	res := svc.GenerateImageEditing(ctx, prompt.WithStyle(*text, *style, *custom), imagegen.ImageFromPath(*input), imagegen.Output{Filename: *output})
	return c.report(res)
}

func (c *cli) clean(ctx context.Context, args []string) error {
	fs := c.flags("clean")
	input := fs.String("input", "", "path of the room photo (required)")
	objects := fs.String("objects", "", "objects to remove; defaults to general clutter")
	keep := fs.Bool("keep-layout", true, "keep the furniture layout")
	output := fs.String("output", "cleaned", "output file name without extension")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *input == "" {
		return usagef("-input is required")
	}
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	return c.report(svc.CleanImage(ctx, imagegen.ImageFromPath(*input), *objects, *keep, imagegen.Output{Filename: *output}))
}

func (c *cli) style(ctx context.Context, args []string) error {
	fs := c.flags("style")
	input := fs.String("input", "", "path of the room photo (required)")
	target := fs.String("style", "", "interior preset ("+strings.Join(prompt.InteriorStyles(), ", ")+"), custom, or free text (required)")
	custom := fs.String("custom", "", "custom style text when -style=custom")
	output := fs.String("output", "styled", "output file name without extension")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *input == "" || strings.TrimSpace(*target) == "" {
		return usagef("-input and -style are required")
	}
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	text, err := svc.Catalog().Render(prompt.StyleTransfer, prompt.Params{
		"source_image_description": "the provided room photo",
		"target_style":             prompt.ResolveInteriorStyle(*target, *custom),
	})
	if err != nil {
		return err
	}
	return c.report(svc.GenerateImageEditing(ctx, text, imagegen.ImageFromPath(*input), imagegen.Output{Filename: *output}))
}

var blendingStyles = []string{"seamless", "artistic", "collage", "overlay"}

func (c *cli) composition(ctx context.Context, args []string) error {
	fs := c.flags("composition")
	inputs := fs.String("inputs", "", "comma-separated image paths, 2 to 3 (required)")
	goal := fs.String("goal", "", "what the composed image should show (required)")
	blending := fs.String("blending", "seamless", "blending style: "+strings.Join(blendingStyles, ", "))
	output := fs.String("output", "composition", "output file name without extension")
	if err := parse(fs, args); err != nil {
		return err
	}
	paths := splitList(*inputs)
	if len(paths) < 2 || len(paths) > imagegen.MaxInputImages {
		return usagef("-inputs needs 2 to %d paths, got %d", imagegen.MaxInputImages, len(paths))
	}
	if strings.TrimSpace(*goal) == "" {
		return usagef("-goal is required")
	}
	if !slices.Contains(blendingStyles, *blending) {
		return usagef("-blending must be one of %s", strings.Join(blendingStyles, ", "))
	}
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(paths))
	images := make([]imagegen.ImageSource, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
		images = append(images, imagegen.ImageFromPath(p))
	}
	text, err := svc.Catalog().Render(prompt.MultiImageComposition, prompt.Params{
		"images":           names,
		"composition_goal": *goal,
		"blending_style":   *blending,
	})
	if err != nil {
		return err
	}
	return c.report(svc.GenerateMultiImageComposition(ctx, text, images, imagegen.Output{Filename: *output}))
}

func (c *cli) templates(_ context.Context, args []string) error {
	fs := c.flags("templates")
	typ := fs.String("type", "", "template to render; lists all templates when empty")
	var params paramFlag
	fs.Var(&params, "param", "template parameter as key=value; repeat a key to build a list")
	if err := parse(fs, args); err != nil {
		return err
	}
	catalog, err := prompt.NewCatalog(prompt.CatalogOptions{Dir: c.cfg.PromptsDir, Logger: &c.logger})
	if err != nil {
		return err
	}

	if strings.TrimSpace(*typ) == "" {
		for _, info := range catalog.List() {
			fmt.Fprintf(c.stdout, "%s\n  required: %s\n", info.Type, strings.Join(info.Required, ", "))
			if len(info.Optional) > 0 {
				fmt.Fprintf(c.stdout, "  optional: %s\n", strings.Join(info.Optional, ", "))
			}
		}
		return nil
	}

	tt, err := prompt.ParseTemplateType(*typ)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	text, err := catalog.Render(tt, params.Params())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, text)
	return nil
}

func (c *cli) batch(ctx context.Context, args []string) error {
	fs := c.flags("batch")
	file := fs.String("file", "", "batch file: JSON {prompts, output_prefix, aspect_ratio} or one prompt per line (required)")
	prefix := fs.String("prefix", "", "output name prefix; overrides the file")
	zipPath := fs.String("zip", "", "also write successful images to this zip archive")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return usagef("-file is required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	bf, err := jsoncfg.ParseBatchFile(data)
	if err != nil {
		return err
	}
	if p := strings.TrimSpace(*prefix); p != "" {
		bf.OutputPrefix = p
	}
	if err := bf.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	results := svc.BatchGenerateFile(ctx, bf)
	failed := 0
	for i, res := range results {
		if res.Success {
			fmt.Fprintf(c.stdout, "[%d/%d] ok %s\n", i+1, len(results), res.ImagePath)
			continue
		}
		failed++
		fmt.Fprintf(c.stdout, "[%d/%d] failed: %s\n", i+1, len(results), res.Error)
	}
	fmt.Fprintf(c.stdout, "%d of %d succeeded\n", len(results)-failed, len(results))

	if *zipPath != "" {
		archive, err := imagegen.ArchiveResults(results)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*zipPath, archive, 0o644); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		fmt.Fprintf(c.stdout, "archive %s\n", *zipPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d prompts failed", failed, len(results))
	}
	return nil
}

// paramFlag collects repeatable key=value template parameters.
type paramFlag struct {
	keys   []string
	values map[string][]string
}

func (p *paramFlag) String() string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		parts = append(parts, k+"="+strings.Join(p.values[k], "|"))
	}
	return strings.Join(parts, ",")
}

func (p *paramFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if p.values == nil {
		p.values = make(map[string][]string)
	}
	if _, seen := p.values[k]; !seen {
		p.keys = append(p.keys, k)
	}
	p.values[k] = append(p.values[k], v)
	return nil
}

// Params returns single values as strings and repeated keys as lists.
func (p *paramFlag) Params() prompt.Params {
	out := prompt.Params{}
	for k, vs := range p.values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinStyles() string {
	styles := prompt.ImageStyles()
	names := make([]string, 0, len(styles))
	for _, s := range styles {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}
