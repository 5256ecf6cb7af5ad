// Package tmpl renders prompt templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// PromptData is the data available to prompt templates.
type PromptData struct {
	Input string
}

var funcs = template.FuncMap{
	"trim":  strings.TrimSpace,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Parse compiles tmpl, returning any syntax error.
//
// Available template functions:
//   - trim: strip leading and trailing whitespace
//   - upper, lower: change case
func Parse(tmpl string) (*template.Template, error) {
	t, err := template.New("prompt").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return t, nil
}

// Render executes a template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
func Render(tmpl string, data any) (string, error) {
	t, err := Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// Prompt returns a function that renders tmpl with the user's input. An
// empty template yields the input unchanged.
func Prompt(tmpl string) (func(input string) (string, error), error) {
	if strings.TrimSpace(tmpl) == "" {
		return func(input string) (string, error) { return input, nil }, nil
	}

	t, err := Parse(tmpl)
	if err != nil {
		return nil, err
	}

	return func(input string) (string, error) {
		var buf bytes.Buffer
		if err := t.Execute(&buf, PromptData{Input: input}); err != nil {
			return "", fmt.Errorf("execute template: %w", err)
		}
		return buf.String(), nil
	}, nil
}
