package project

import (
	"fmt"
	"strings"
)

// ValidateNew checks a project before it is handed to AddProject. The store
// itself accepts anything.
func ValidateNew(p Project) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Status != "" && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, p.Status)
	}
	return nil
}

// ValidatePatch rejects patches that would break project invariants.
func ValidatePatch(patch ProjectPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	return nil
}

// ValidateNewStudy checks study input.
func ValidateNewStudy(in NewStudy) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown study type %q", ErrInvalidInput, in.Type)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown study status %q", ErrInvalidInput, in.Status)
	}
	if in.Participants < 0 || in.Responses < 0 {
		return fmt.Errorf("%w: counters cannot be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateStudyPatch rejects study patches with unknown enums or negative counters.
func ValidateStudyPatch(patch StudyPatch) error {
	if patch.Type != nil && !patch.Type.Valid() {
		return fmt.Errorf("%w: unknown study type %q", ErrInvalidInput, *patch.Type)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown study status %q", ErrInvalidInput, *patch.Status)
	}
	if (patch.Participants != nil && *patch.Participants < 0) || (patch.Responses != nil && *patch.Responses < 0) {
		return fmt.Errorf("%w: counters cannot be negative", ErrInvalidInput)
	}
	return nil
}
