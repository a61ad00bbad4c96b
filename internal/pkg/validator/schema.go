package validator

import (
	"fmt"
	"regexp"

	"github.com/formloom/forms-backend/internal/entity"
)

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateSchema checks the structural contract of a form schema and
// returns every problem found: exactly one of clarification and fields
// populated, known field types, unique snake_case names, non-empty
// labels, and options present exactly on the types that take them.
// Manual schema edits go through this before the stored schema changes.
func ValidateSchema(s *entity.FormSchema) []string {
	var problems []string

	hasClarification := s.IsClarification()
	hasFields := len(s.Fields) > 0

	switch {
	case hasClarification && hasFields:
		problems = append(problems, "schema must not contain both clarification and fields")
	case !hasClarification && !hasFields:
		problems = append(problems, "schema must contain either clarification or fields")
	}

	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		ref := fmt.Sprintf("field %d", i+1)
		if f.Name != "" {
			ref = fmt.Sprintf("field '%s'", f.Name)
		}

		switch {
		case f.Name == "":
			problems = append(problems, ref+": name is required")
		case !fieldNamePattern.MatchString(f.Name):
			problems = append(problems, ref+": name must be snake_case")
		case seen[f.Name]:
			problems = append(problems, ref+": duplicate name")
		}
		seen[f.Name] = true

		if f.Label == "" {
			problems = append(problems, ref+": label is required")
		}

		if !f.Type.IsValid() {
			problems = append(problems, fmt.Sprintf("%s: unknown type '%s'", ref, f.Type))
			continue
		}

		if f.Type.TakesOptions() && len(f.Options) == 0 {
			problems = append(problems, fmt.Sprintf("%s: type '%s' requires options", ref, f.Type))
		}
		if !f.Type.TakesOptions() && len(f.Options) > 0 {
			problems = append(problems, fmt.Sprintf("%s: type '%s' does not take options", ref, f.Type))
		}
	}

	return problems
}
