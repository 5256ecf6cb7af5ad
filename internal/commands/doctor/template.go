package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/palaver/pkg/tmpl"
)

const samplePrompt = "hello"

// TemplateCheck renders the prompt template against a sample message.
type TemplateCheck struct {
	template string
}

// NewTemplateCheck creates a new prompt template check.
func NewTemplateCheck(template string) *TemplateCheck {
	return &TemplateCheck{template: template}
}

func (c *TemplateCheck) Name() string {
	return "Prompt Template"
}

func (c *TemplateCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.template == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "Template",
			Status: StatusPass,
			Detail: "none, input is sent as typed",
		})
		return result
	}

	render, err := tmpl.Prompt(c.template)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Parse",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	out, err := render(samplePrompt)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Render",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Render",
		Status: StatusPass,
		Detail: fmt.Sprintf("%q -> %q", samplePrompt, out),
	})
	return result
}
