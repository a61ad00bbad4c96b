package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloom/forms-backend/internal/entity"
)

func textField(name, label, validation string) entity.FieldDefinition {
	return entity.FieldDefinition{
		Name:       name,
		Label:      label,
		Type:       entity.FieldTypeText,
		Validation: validation,
	}
}

func TestParseRules(t *testing.T) {
	rules := ParseRules("required, min_length:5, exact_length:10, number_only, email_format, optional")

	require.Len(t, rules, 6)
	assert.Equal(t, Rule{Kind: RuleRequired}, rules[0])
	assert.Equal(t, Rule{Kind: RuleMinLength, Length: 5}, rules[1])
	assert.Equal(t, Rule{Kind: RuleExactLength, Length: 10}, rules[2])
	assert.Equal(t, Rule{Kind: RuleNumberOnly}, rules[3])
	assert.Equal(t, Rule{Kind: RuleEmailFormat}, rules[4])
	assert.Equal(t, Rule{Kind: RuleOptional}, rules[5])
}

func TestParseRules_DropsUnknownAndUnparseable(t *testing.T) {
	rules := ParseRules("required, max_length:5, min_length:abc, sparkle")

	require.Len(t, rules, 1)
	assert.Equal(t, RuleRequired, rules[0].Kind)
}

func TestValidateField_Required(t *testing.T) {
	field := textField("full_name", "Full Name", "required")

	assert.Equal(t, []string{"Full Name is required."}, ValidateField(field, ""))
	assert.Equal(t, []string{"Full Name is required."}, ValidateField(field, "   "))
	assert.Equal(t, []string{"Full Name is required."}, ValidateField(field, nil))
	assert.Empty(t, ValidateField(field, "Ada"))
}

func TestValidateField_RequiredSuppressesOtherRules(t *testing.T) {
	field := textField("code", "Code", "required,min_length:5")

	violations := ValidateField(field, "")

	assert.Equal(t, []string{"Code is required."}, violations)
}

func TestValidateField_RulesSkipEmptyOptionalValue(t *testing.T) {
	field := textField("nickname", "Nickname", "min_length:5,number_only")

	assert.Empty(t, ValidateField(field, ""))
	assert.Empty(t, ValidateField(field, nil))
}

func TestValidateField_MinLength(t *testing.T) {
	field := textField("username", "Username", "min_length:5")

	assert.Equal(t,
		[]string{"Username must be at least 5 characters long."},
		ValidateField(field, "abcd"))
	assert.Empty(t, ValidateField(field, "abcde"))
}

func TestValidateField_EmailType(t *testing.T) {
	field := entity.FieldDefinition{
		Name:  "email",
		Label: "Email",
		Type:  entity.FieldTypeEmail,
	}

	violations := ValidateField(field, "not-an-email")
	require.Len(t, violations, 1)
	assert.Equal(t, "Email requires a valid email format.", violations[0])

	assert.Empty(t, ValidateField(field, "a@b.com"))
}

func TestValidateField_EmailRuleOnTextField(t *testing.T) {
	field := textField("contact", "Contact", "email_format")

	assert.Equal(t,
		[]string{"Contact requires a valid email format."},
		ValidateField(field, "nope@"))
	assert.Empty(t, ValidateField(field, "someone@example.org"))
}

func TestValidateField_EmailCheckedOncePerField(t *testing.T) {
	field := entity.FieldDefinition{
		Name:       "email",
		Label:      "Email",
		Type:       entity.FieldTypeEmail,
		Validation: "email_format",
	}

	assert.Len(t, ValidateField(field, "broken"), 1)
}

func TestValidateField_ExactLength(t *testing.T) {
	field := textField("pin", "PIN", "exact_length:4")

	assert.Equal(t,
		[]string{"PIN must be exactly 4 characters long."},
		ValidateField(field, "123"))
	assert.Empty(t, ValidateField(field, "1234"))
}

func TestValidateField_ExactLengthStripsOneDotForNumberFields(t *testing.T) {
	field := entity.FieldDefinition{
		Name:       "amount",
		Label:      "Amount",
		Type:       entity.FieldTypeNumber,
		Validation: "exact_length:4",
	}

	assert.Empty(t, ValidateField(field, "12.34"))
	assert.Equal(t,
		[]string{"Amount must be exactly 4 characters long."},
		ValidateField(field, "1.23"))
}

func TestValidateField_NumberOnly(t *testing.T) {
	field := textField("age", "Age", "number_only")

	assert.Empty(t, ValidateField(field, "42"))
	assert.Empty(t, ValidateField(field, "3.14"))
	assert.Equal(t,
		[]string{"Age must contain only numeric digits."},
		ValidateField(field, "3.1.4"))
	assert.Equal(t,
		[]string{"Age must contain only numeric digits."},
		ValidateField(field, "forty"))
	assert.Equal(t,
		[]string{"Age must contain only numeric digits."},
		ValidateField(field, "."))
}

func TestValidateField_CollectsMultipleViolations(t *testing.T) {
	field := textField("code", "Code", "min_length:5,number_only")

	violations := ValidateField(field, "ab")

	assert.Equal(t, []string{
		"Code must be at least 5 characters long.",
		"Code must contain only numeric digits.",
	}, violations)
}

func TestValidateField_OptionalIsNoOp(t *testing.T) {
	field := textField("notes", "Notes", "optional")

	assert.Empty(t, ValidateField(field, ""))
	assert.Empty(t, ValidateField(field, "anything"))
}

func TestValidateSubmission_CollectsAcrossFields(t *testing.T) {
	schema := &entity.FormSchema{Fields: []entity.FieldDefinition{
		textField("first_name", "First Name", "required"),
		{Name: "email", Label: "Email", Type: entity.FieldTypeEmail, Validation: "required"},
		textField("bio", "Bio", "min_length:10"),
	}}

	violations := ValidateSubmission(schema, map[string]any{
		"first_name": " ",
		"email":      "bad-address",
		"bio":        "short",
	})

	assert.Equal(t, []string{
		"First Name is required.",
		"Email requires a valid email format.",
		"Bio must be at least 10 characters long.",
	}, violations)
}

func TestValidateSubmission_IgnoresUnknownKeys(t *testing.T) {
	schema := &entity.FormSchema{Fields: []entity.FieldDefinition{
		textField("city", "City", "required"),
	}}

	violations := ValidateSubmission(schema, map[string]any{
		"city":    "Oslo",
		"stowage": "ignored",
	})

	assert.Empty(t, violations)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", ValueString(nil))
	assert.Equal(t, "hi", ValueString("  hi  "))
	assert.Equal(t, "true", ValueString(true))
	assert.Equal(t, "false", ValueString(false))
	assert.Equal(t, "42", ValueString(float64(42)))
	assert.Equal(t, "3.5", ValueString(3.5))
	assert.Equal(t, "a, b", ValueString([]any{"a", "b"}))
}

func TestValidateField_CheckboxFalseIsNotEmpty(t *testing.T) {
	field := entity.FieldDefinition{
		Name:       "agree",
		Label:      "Agree",
		Type:       entity.FieldTypeCheckbox,
		Validation: "required",
	}

	assert.Empty(t, ValidateField(field, false))
}
