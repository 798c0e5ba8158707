package domain

import (
	"fmt"
	"strings"
)

// Validate checks a create payload before it reaches the store.
func (in CreateProjectInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return validateScenes(in.Scenes)
}

// Validate checks the fields present in the patch.
func (p ProjectPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.Scenes != nil {
		return validateScenes(*p.Scenes)
	}
	return nil
}

func validateScenes(scenes []Scene) error {
	for i, s := range scenes {
		if s == nil {
			return fmt.Errorf("%w: scene %d must be an object", ErrValidation, i)
		}
		d, ok, err := s.Duration()
		if err != nil {
			return fmt.Errorf("%w: scene %d: %v", ErrValidation, i, err)
		}
		if ok && d < 0 {
			return fmt.Errorf("%w: scene %d has negative duration", ErrValidation, i)
		}
	}
	return nil
}
