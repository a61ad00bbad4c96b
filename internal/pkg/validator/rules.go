package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/formloom/forms-backend/internal/entity"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RuleKind enumerates the supported validation rule tokens.
type RuleKind int

const (
	RuleOptional RuleKind = iota // recognized no-op
	RuleRequired
	RuleEmailFormat
	RuleMinLength
	RuleExactLength
	RuleNumberOnly
)

// Rule is one parsed validation token. Length carries the argument of
// min_length and exact_length.
type Rule struct {
	Kind   RuleKind
	Length int
}

// ParseRules splits a comma-separated validation string into rule values.
// Unknown tokens and length rules with an unparseable argument are
// silently dropped, so the result may be shorter than the token list.
func ParseRules(validation string) []Rule {
	tokens := strings.Split(validation, ",")
	rules := make([]Rule, 0, len(tokens))

	for _, token := range tokens {
		token = strings.TrimSpace(token)

		switch {
		case token == "optional":
			rules = append(rules, Rule{Kind: RuleOptional})
		case token == "required":
			rules = append(rules, Rule{Kind: RuleRequired})
		case token == "email_format":
			rules = append(rules, Rule{Kind: RuleEmailFormat})
		case token == "number_only":
			rules = append(rules, Rule{Kind: RuleNumberOnly})
		case strings.HasPrefix(token, "min_length:"):
			if n, err := strconv.Atoi(strings.TrimPrefix(token, "min_length:")); err == nil {
				rules = append(rules, Rule{Kind: RuleMinLength, Length: n})
			}
		case strings.HasPrefix(token, "exact_length:"):
			if n, err := strconv.Atoi(strings.TrimPrefix(token, "exact_length:")); err == nil {
				rules = append(rules, Rule{Kind: RuleExactLength, Length: n})
			}
		}
	}

	return rules
}

// FieldRules is a field definition with its validation string parsed once.
type FieldRules struct {
	Field entity.FieldDefinition
	Rules []Rule
}

// CompileFields parses every field's validation string up front so a
// submission check never re-splits rule tokens.
func CompileFields(fields []entity.FieldDefinition) []FieldRules {
	compiled := make([]FieldRules, 0, len(fields))
	for _, f := range fields {
		compiled = append(compiled, FieldRules{Field: f, Rules: ParseRules(f.Validation)})
	}
	return compiled
}

func (fr *FieldRules) has(kind RuleKind) bool {
	for _, r := range fr.Rules {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// Check evaluates the field's rules against a submitted value and returns
// every violation. A failed required check suppresses the remaining rules
// for the field; all other rules apply only to non-empty values.
func (fr *FieldRules) Check(value any) []string {
	var violations []string

	str := ValueString(value)
	label := fr.Field.Label

	if fr.has(RuleRequired) && str == "" {
		return append(violations, fmt.Sprintf("%s is required.", label))
	}
	if str == "" {
		return violations
	}

	if fr.has(RuleEmailFormat) || fr.Field.Type == entity.FieldTypeEmail {
		if !emailPattern.MatchString(str) {
			violations = append(violations, fmt.Sprintf("%s requires a valid email format.", label))
		}
	}

	for _, r := range fr.Rules {
		switch r.Kind {
		case RuleMinLength:
			if len(str) < r.Length {
				violations = append(violations, fmt.Sprintf("%s must be at least %d characters long.", label, r.Length))
			}
		case RuleExactLength:
			counted := str
			if fr.Field.Type == entity.FieldTypeNumber {
				counted = strings.Replace(counted, ".", "", 1)
			}
			if len(counted) != r.Length {
				violations = append(violations, fmt.Sprintf("%s must be exactly %d characters long.", label, r.Length))
			}
		}
	}

	if fr.has(RuleNumberOnly) && !isNumeric(str) {
		violations = append(violations, fmt.Sprintf("%s must contain only numeric digits.", label))
	}

	return violations
}

// ValidateField checks one value against one field definition.
func ValidateField(field entity.FieldDefinition, value any) []string {
	fr := FieldRules{Field: field, Rules: ParseRules(field.Validation)}
	return fr.Check(value)
}

// ValidateSubmission checks submitted values against every field of the
// schema and collects all violations in field order. Keys in values that
// match no field are ignored.
func ValidateSubmission(schema *entity.FormSchema, values map[string]any) []string {
	var violations []string
	for _, fr := range CompileFields(schema.Fields) {
		violations = append(violations, fr.Check(values[fr.Field.Name])...)
	}
	return violations
}

// ValueString renders a submitted value the way rules see it: trimmed,
// with booleans and numbers in their canonical JSON spelling and list
// values joined by commas. nil renders empty.
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		return strings.TrimSpace(strings.Join(v, ", "))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, ValueString(item))
		}
		return strings.TrimSpace(strings.Join(parts, ", "))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// isNumeric reports whether s consists of digits with at most one
// decimal point.
func isNumeric(s string) bool {
	stripped := strings.Replace(s, ".", "", 1)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
