package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/jtarchie/lecturepreview/internal/document"
	"github.com/jtarchie/lecturepreview/internal/inference"
	"github.com/jtarchie/lecturepreview/internal/pipeline"
	"github.com/jtarchie/lecturepreview/internal/preview"
	"github.com/jtarchie/lecturepreview/internal/profile"
)

type GenerateCmd struct {
	Filename string `arg:"" type:"existingfile" help:"PDF file with the lecture slides"`

	Profile     string `help:"built-in profile" default:"teaching-notes" enum:"concise,teaching-notes" env:"LECTUREPREVIEW_PROFILE"`
	ProfileFile string `help:"YAML profile layered over a built-in one" type:"existingfile" env:"LECTUREPREVIEW_PROFILE_FILE"`

	Provider    string   `help:"model provider (anthropic or openai), overrides the profile"`
	Model       string   `help:"model name, overrides the profile" env:"LECTUREPREVIEW_MODEL"`
	Endpoint    string   `help:"OpenAI-compatible endpoint, overrides the provider's" env:"LECTUREPREVIEW_ENDPOINT"`
	ApiKey      string   `help:"API key (default: ANTHROPIC_API_KEY or OPENAI_API_KEY)"`
	Temperature *float32 `help:"sampling temperature, overrides the profile"`
	MaxTokens   *int     `help:"output token cap, overrides the profile, 0 removes it"`

	OutputDir  string `help:"directory for preview files" default:"previews" type:"path"`
	TextOutput string `help:"where to write the extracted text (default: next to the PDF)" type:"path"`
	Backend    string `help:"text extraction backend" default:"fitz" enum:"fitz,pure"`

	Retries        uint          `help:"extra attempts on rate limits and server errors" default:"0"`
	Timeout        time.Duration `help:"deadline for the model call, 0 waits forever" default:"0s"`
	SkipValidation bool          `help:"write the model output without checking the preview schema"`
	Quiet          bool          `help:"do not print the preview to stdout"`
}

func (c *GenerateCmd) profile() (profile.Profile, error) {
	var (
		p   profile.Profile
		err error
	)
	if c.ProfileFile != "" {
		p, err = profile.Load(c.ProfileFile)
	} else {
		p, err = profile.Builtin(c.Profile)
	}
	if err != nil {
		return profile.Profile{}, err
	}

	if c.Provider != "" {
		p.Provider = c.Provider
	}
	if c.Model != "" {
		p.Model = c.Model
	}
	if c.Temperature != nil {
		p.Temperature = *c.Temperature
	}
	if c.MaxTokens != nil {
		p.MaxTokens = *c.MaxTokens
	}

	return p, p.Validate()
}

func (c *GenerateCmd) Run(ctx context.Context, logger *slog.Logger) error {
	p, err := c.profile()
	if err != nil {
		return err
	}

	logger = logger.With("run_id", uuid.NewString())
	logger.Info("preview.start", "file", c.Filename, "profile", p.Name, "provider", p.Provider, "backend", c.Backend)

	client, err := inference.New(inference.Config{
		Provider: p.Provider,
		Endpoint: c.Endpoint,
		APIKey:   c.ApiKey,
		Retries:  c.Retries,
		Timeout:  c.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	runner := &pipeline.Runner{
		Extractor: document.Reader{Backend: c.Backend},
		Completer: client,
		Profile:   p,
		Logger:    logger,
	}

	result, err := runner.Run(ctx, pipeline.Config{
		Input:          c.Filename,
		TextOutput:     c.TextOutput,
		OutputDir:      c.OutputDir,
		SkipValidation: c.SkipValidation,
	})
	if err != nil {
		return err
	}

	logger.Info("preview.done", "preview", result.Paths.Preview, "summary_written", result.SummaryWritten)

	if !c.Quiet {
		fmt.Println(result.Preview)
	}

	return nil
}

type ExtractCmd struct {
	Filename   string `arg:"" type:"existingfile" help:"PDF file with the lecture slides"`
	TextOutput string `help:"where to write the extracted text (default: next to the PDF)" type:"path"`
	Backend    string `help:"text extraction backend" default:"fitz" enum:"fitz,pure"`
}

func (c *ExtractCmd) Run(logger *slog.Logger) error {
	runner := &pipeline.Runner{
		Extractor: document.Reader{Backend: c.Backend},
		Logger:    logger,
	}

	_, paths, err := runner.ExtractText(pipeline.Config{
		Input:      c.Filename,
		TextOutput: c.TextOutput,
	})
	if err != nil {
		return err
	}

	fmt.Println(paths.Text)

	return nil
}

type SummarizeCmd struct {
	Filename string `arg:"" type:"path" help:"preview JSON file"`
	Output   string `help:"Markdown output (default: preview path with .md)" type:"path"`
}

func (c *SummarizeCmd) Run(logger *slog.Logger) error {
	output := c.Output
	if output == "" {
		output = strings.TrimSuffix(c.Filename, filepath.Ext(c.Filename)) + ".md"
	}

	if preview.WriteSummary(c.Filename, output, logger) {
		fmt.Println(output)
	}

	return nil
}

type ProfilesCmd struct{}

func (c *ProfilesCmd) Run() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPROVIDER\tMODEL\tSUMMARY\tDESCRIPTION")

	for _, name := range profile.Names() {
		p, err := profile.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.Name, p.Provider, p.Model, p.Summary, p.Description)
	}

	return w.Flush()
}
