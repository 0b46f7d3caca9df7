package template

import (
	"fmt"
	"strings"
)

// ValidateNew checks a template before it is handed to AddTemplate.
func ValidateNew(t Template) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

// ValidatePatch rejects an emptied name.
func ValidatePatch(patch TemplatePatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return nil
}

// ValidateNewStudy checks template study input.
func ValidateNewStudy(in NewTemplateStudy) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown study type %q", ErrInvalidInput, in.Type)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return nil
}

// ValidateStudyPatch rejects unknown study types.
func ValidateStudyPatch(patch TemplateStudyPatch) error {
	if patch.Type != nil && !patch.Type.Valid() {
		return fmt.Errorf("%w: unknown study type %q", ErrInvalidInput, *patch.Type)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	return nil
}
