// Package preview holds the lecture preview document: its shape, the schema
// model output is checked against, and helpers to clean and project it.
package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedOutput marks model output that is not a valid preview.
var ErrMalformedOutput = errors.New("malformed model output")

// SummaryField is the key WriteSummary projects.
const SummaryField = "human_readable_summary"

// Preview is the structured result describing a lecture.
type Preview struct {
	MainTopics            []string `json:"main_topics"`
	WhatYouWillLearn      []string `json:"what_you_will_learn"`
	KeyDefinitions        []string `json:"key_definitions"`
	PrereqRefreshers      []string `json:"prereq_refreshers"`
	QuestionsToKeepInMind []string `json:"questions_to_keep_in_mind"`
	WarmupCheckQuestions  []string `json:"warmup_check_questions"`
	HumanReadableSummary  string   `json:"human_readable_summary,omitempty"`
}

var listFields = []string{
	"main_topics",
	"what_you_will_learn",
	"key_definitions",
	"prereq_refreshers",
	"questions_to_keep_in_mind",
	"warmup_check_questions",
}

// Schema returns the JSON Schema for a preview. withSummary makes the
// summary field required.
func Schema(withSummary bool) map[string]any {
	props := map[string]any{}
	required := []string{}

	for _, field := range listFields {
		props[field] = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
		required = append(required, field)
	}

	props[SummaryField] = map[string]any{"type": "string"}
	if withSummary {
		required = append(required, SummaryField)
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Validate checks data against Schema(withSummary) and decodes it. Every
// failure wraps ErrMalformedOutput.
func Validate(data []byte, withSummary bool) (*Preview, error) {
	schema, err := compile(withSummary)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrMalformedOutput, err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	var p Preview
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	return &p, nil
}

func compile(withSummary bool) (*jsonschema.Schema, error) {
	b, err := json.Marshal(Schema(withSummary))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preview schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("preview.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("failed to add preview schema: %w", err)
	}

	schema, err := compiler.Compile("preview.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile preview schema: %w", err)
	}

	return schema, nil
}
