// Package profile bundles the prompt, model and sampling settings for one
// kind of lecture preview.
package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jtarchie/lecturepreview/internal/inference"
	"github.com/jtarchie/lecturepreview/internal/prompt"
)

// Profile describes how a preview is generated.
type Profile struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description,omitempty"`
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens,omitempty"`
	SystemPrompt string  `yaml:"system_prompt"`
	UserTemplate string  `yaml:"user_template"`
	Summary      bool    `yaml:"summary"`
}

const (
	TeachingNotes = "teaching-notes"
	Concise       = "concise"
)

// Default is the profile used when none is named.
const Default = TeachingNotes

var builtins = map[string]Profile{
	TeachingNotes: {
		Name:         TeachingNotes,
		Description:  "Structured JSON plus a professor-style Markdown overview of the lecture",
		Provider:     inference.ProviderAnthropic,
		Model:        "claude-opus-4-5-20251101",
		Temperature:  0.2,
		MaxTokens:    4096,
		SystemPrompt: teachingNotesSystemPrompt,
		UserTemplate: prompt.DefaultUserTemplate,
		Summary:      true,
	},
	Concise: {
		Name:         Concise,
		Description:  "Short student-facing preview for review before lecture",
		Provider:     inference.ProviderOpenAI,
		Model:        "gpt-4.1",
		Temperature:  0.2,
		SystemPrompt: conciseSystemPrompt,
		UserTemplate: prompt.DefaultUserTemplate,
		Summary:      false,
	},
}

// Builtin returns the named built-in profile.
func Builtin(name string) (Profile, error) {
	p, ok := builtins[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the built-in profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// file is the on-disk shape; Base names the built-in that fills in
// anything left unset.
type file struct {
	Base         string   `yaml:"base"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	Temperature  *float32 `yaml:"temperature"`
	MaxTokens    *int     `yaml:"max_tokens"`
	SystemPrompt string   `yaml:"system_prompt"`
	UserTemplate string   `yaml:"user_template"`
	Summary      *bool    `yaml:"summary"`
}

// Load reads a YAML profile from path.
func Load(path string) (Profile, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	return Parse(contents)
}

// Parse decodes a YAML profile and layers it over its base.
func Parse(contents []byte) (Profile, error) {
	var f file
	if err := yaml.Unmarshal(contents, &f); err != nil {
		return Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}

	if f.Base == "" {
		f.Base = Default
	}

	p, err := Builtin(f.Base)
	if err != nil {
		return Profile{}, err
	}

	if f.Name != "" {
		p.Name = f.Name
	}
	if f.Description != "" {
		p.Description = f.Description
	}
	if f.Provider != "" {
		p.Provider = f.Provider
	}
	if f.Model != "" {
		p.Model = f.Model
	}
	if f.Temperature != nil {
		p.Temperature = *f.Temperature
	}
	if f.MaxTokens != nil {
		p.MaxTokens = *f.MaxTokens
	}
	if f.SystemPrompt != "" {
		p.SystemPrompt = f.SystemPrompt
	}
	if f.UserTemplate != "" {
		p.UserTemplate = f.UserTemplate
	}
	if f.Summary != nil {
		p.Summary = *f.Summary
	}

	return p, p.Validate()
}

// Validate reports every problem with the profile at once.
func (p Profile) Validate() error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !inference.KnownProvider(p.Provider) {
		errs = append(errs, fmt.Errorf("unknown provider %q", p.Provider))
	}
	if strings.TrimSpace(p.Model) == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %v out of range [0, 2]", p.Temperature))
	}
	if p.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max_tokens %d must not be negative", p.MaxTokens))
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		errs = append(errs, errors.New("system_prompt is required"))
	}
	if strings.TrimSpace(p.UserTemplate) == "" {
		errs = append(errs, errors.New("user_template is required"))
	} else if err := prompt.Check(p.UserTemplate); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid profile %q: %w", p.Name, err)
	}
	return nil
}
