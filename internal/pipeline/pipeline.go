// Package pipeline runs one lecture through extraction, generation and
// persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jtarchie/lecturepreview/internal/inference"
	"github.com/jtarchie/lecturepreview/internal/preview"
	"github.com/jtarchie/lecturepreview/internal/profile"
	"github.com/jtarchie/lecturepreview/internal/prompt"
)

// DefaultOutputDir is where previews go when Config.OutputDir is empty.
const DefaultOutputDir = "previews"

// Extractor turns a document path into plain text.
type Extractor interface {
	ReadText(path string) (string, error)
}

// Completer answers a rendered prompt.
type Completer interface {
	Complete(ctx context.Context, req inference.Request) (string, error)
}

// Config names the files one run reads and writes.
type Config struct {
	Input          string
	TextOutput     string
	OutputDir      string
	SkipValidation bool
}

// Paths are the files derived from a Config.
type Paths struct {
	Text     string
	Preview  string
	Summary  string
	Rejected string
}

// Result reports what a run produced.
type Result struct {
	Paths          Paths
	Preview        string
	SummaryWritten bool
}

// PathsFor derives output locations: the text file sits next to the input,
// previews go to OutputDir as preview_<name>.json with siblings sharing the
// base name.
func PathsFor(cfg Config) Paths {
	ext := filepath.Ext(cfg.Input)
	base := strings.TrimSuffix(filepath.Base(cfg.Input), ext)

	text := cfg.TextOutput
	if text == "" {
		text = strings.TrimSuffix(cfg.Input, ext) + ".txt"
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	stem := filepath.Join(dir, "preview_"+base)

	return Paths{
		Text:     text,
		Preview:  stem + ".json",
		Summary:  stem + ".md",
		Rejected: stem + ".rejected.txt",
	}
}

// Runner wires the pipeline's collaborators.
type Runner struct {
	Extractor Extractor
	Completer Completer
	Profile   profile.Profile
	Logger    *slog.Logger
}

// ExtractText reads the input and writes its text next to it.
func (r *Runner) ExtractText(cfg Config) (string, Paths, error) {
	logger := r.logger()
	paths := PathsFor(cfg)

	logger.Info("pdf.read", "path", cfg.Input)

	text, err := r.Extractor.ReadText(cfg.Input)
	if err != nil {
		return "", paths, fmt.Errorf("failed to extract text from %s: %w", cfg.Input, err)
	}

	err = writeFile(paths.Text, text)
	if err != nil {
		return "", paths, fmt.Errorf("failed to write extracted text: %w", err)
	}

	logger.Info("pdf.text_saved", "path", paths.Text, "bytes", len(text))

	return text, paths, nil
}

// Run executes every step for cfg. The summary step never fails the run.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	logger := r.logger()

	text, paths, err := r.ExtractText(cfg)
	if err != nil {
		return nil, err
	}

	rendered, err := prompt.Render(r.Profile.SystemPrompt, r.Profile.UserTemplate, prompt.Data{
		SlideText: text,
		Filename:  filepath.Base(cfg.Input),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("preview.generate", "profile", r.Profile.Name, "model", r.Profile.Model)

	response, err := r.Completer.Complete(ctx, inference.Request{
		System:      rendered.System,
		User:        rendered.User,
		Model:       r.Profile.Model,
		Temperature: r.Profile.Temperature,
		MaxTokens:   r.Profile.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	content := preview.StripFences(response)

	if !cfg.SkipValidation {
		_, err = preview.Validate([]byte(content), r.Profile.Summary)
		if err != nil {
			if werr := writeFile(paths.Rejected, response); werr != nil {
				logger.Error("preview.rejected_write_error", "path", paths.Rejected, "error", werr)
			} else {
				logger.Error("preview.rejected", "path", paths.Rejected, "error", err)
			}
			return nil, fmt.Errorf("failed to validate preview: %w", err)
		}
	}

	err = writeFile(paths.Preview, content)
	if err != nil {
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	logger.Info("preview.write", "path", paths.Preview, "bytes", len(content))

	result := &Result{
		Paths:   paths,
		Preview: content,
	}

	if r.Profile.Summary {
		result.SummaryWritten = preview.WriteSummary(paths.Preview, paths.Summary, logger)
	}

	return result, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func writeFile(path, contents string) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(contents), 0o644)
}
