package template

import (
	"time"

	"github.com/ganot/studyvault/internal/domain/project"
)

// Template is a reusable blueprint for a project.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	IsDefault   bool            `json:"isDefault"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Studies     []TemplateStudy `json:"studies"`
}

// TemplateStudy is an inert study blueprint. Settings is free-form.
type TemplateStudy struct {
	ID          string            `json:"id"`
	Type        project.StudyType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Settings    map[string]any    `json:"settings"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewTemplateStudy carries the caller-supplied fields of a template study.
type NewTemplateStudy struct {
	Type        project.StudyType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Settings    map[string]any    `json:"settings,omitempty"`
}

// TemplatePatch lists the template fields an update may change.
type TemplatePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// Apply merges the patch into t and returns the result.
func (patch TemplatePatch) Apply(t Template) Template {
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	return t
}

// TemplateStudyPatch lists the template study fields an update may change.
// Settings, when present, replaces the whole map.
type TemplateStudyPatch struct {
	Type        *project.StudyType `json:"type,omitempty"`
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Settings    map[string]any     `json:"settings,omitempty"`
}

// Apply merges the patch into s and returns the result.
func (patch TemplateStudyPatch) Apply(s TemplateStudy) TemplateStudy {
	if patch.Type != nil {
		s.Type = *patch.Type
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Settings != nil {
		s.Settings = cloneSettings(patch.Settings)
	}
	return s
}

func (t Template) clone() Template {
	studies := make([]TemplateStudy, len(t.Studies))
	for i, s := range t.Studies {
		s.Settings = cloneSettings(s.Settings)
		studies[i] = s
	}
	t.Studies = studies
	return t
}

func (s TemplateStudy) clone() TemplateStudy {
	s.Settings = cloneSettings(s.Settings)
	return s
}

func cloneSettings(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneSettings(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	}
	return v
}
