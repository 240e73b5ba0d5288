// Package prompt renders the system and user messages sent to the model.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// ErrNoSlideText means a user template would drop the slide text.
var ErrNoSlideText = errors.New("user prompt template does not embed .SlideText")

// Data is what user templates can reference.
type Data struct {
	SlideText string
	Filename  string
}

// Rendered is a ready-to-send pair of messages.
type Rendered struct {
	System string
	User   string
}

// DefaultUserTemplate wraps the slide text in fixed markers. The text is
// inserted as-is.
const DefaultUserTemplate = `
Below is the extracted text from the lecture slides.
Generate the lecture preview according to the JSON schema.

--- BEGIN SLIDE TEXT ---
{{ .SlideText }}
--- END SLIDE TEXT ---
`

// Parse compiles a user template with the sprig function map.
func Parse(userTemplate string) (*template.Template, error) {
	tmpl, err := template.New("user").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(userTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}

	return tmpl, nil
}

// Check parses userTemplate and makes sure the slide text reaches the
// rendered prompt unchanged.
func Check(userTemplate string) error {
	const marker = "\x00slide text\x00"

	rendered, err := Render("", userTemplate, Data{SlideText: marker, Filename: "slides.pdf"})
	if err != nil {
		return err
	}
	if !strings.Contains(rendered.User, marker) {
		return ErrNoSlideText
	}

	return nil
}

// Render executes userTemplate against data and pairs it with system.
func Render(system, userTemplate string, data Data) (Rendered, error) {
	tmpl, err := Parse(userTemplate)
	if err != nil {
		return Rendered{}, err
	}

	user := &strings.Builder{}
	err = tmpl.Execute(user, data)
	if err != nil {
		return Rendered{}, fmt.Errorf("failed to execute user prompt template: %w", err)
	}

	return Rendered{
		System: system,
		User:   user.String(),
	}, nil
}
