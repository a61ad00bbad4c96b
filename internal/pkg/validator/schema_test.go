package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloom/forms-backend/internal/entity"
)

func validSchema() *entity.FormSchema {
	return &entity.FormSchema{Fields: []entity.FieldDefinition{
		{Name: "full_name", Label: "Full Name", Type: entity.FieldTypeText, Validation: "required"},
		{Name: "color", Label: "Favorite Color", Type: entity.FieldTypeRadio, Options: []string{"red", "blue"}},
	}}
}

func TestValidateSchema_Valid(t *testing.T) {
	assert.Empty(t, ValidateSchema(validSchema()))
}

func TestValidateSchema_ClarificationOnlyIsValid(t *testing.T) {
	s := entity.NewClarification("did you mean an anonymous form?")

	assert.Empty(t, ValidateSchema(s))
}

func TestValidateSchema_RejectsBothPopulated(t *testing.T) {
	s := validSchema()
	msg := "please clarify"
	s.Clarification = &msg

	problems := ValidateSchema(s)

	require.Len(t, problems, 1)
	assert.Equal(t, "schema must not contain both clarification and fields", problems[0])
}

func TestValidateSchema_RejectsNeitherPopulated(t *testing.T) {
	problems := ValidateSchema(&entity.FormSchema{})

	require.Len(t, problems, 1)
	assert.Equal(t, "schema must contain either clarification or fields", problems[0])
}

func TestValidateSchema_FieldProblems(t *testing.T) {
	s := &entity.FormSchema{Fields: []entity.FieldDefinition{
		{Name: "", Label: "No Name", Type: entity.FieldTypeText},
		{Name: "Bad-Name", Label: "Bad Name", Type: entity.FieldTypeText},
		{Name: "email", Label: "", Type: entity.FieldTypeEmail},
		{Name: "email", Label: "Email Again", Type: entity.FieldTypeEmail},
		{Name: "thing", Label: "Thing", Type: "dropdown"},
	}}

	problems := ValidateSchema(s)

	assert.Contains(t, problems, "field 1: name is required")
	assert.Contains(t, problems, "field 'Bad-Name': name must be snake_case")
	assert.Contains(t, problems, "field 'email': label is required")
	assert.Contains(t, problems, "field 'email': duplicate name")
	assert.Contains(t, problems, "field 'thing': unknown type 'dropdown'")
}

func TestValidateSchema_OptionsPresence(t *testing.T) {
	s := &entity.FormSchema{Fields: []entity.FieldDefinition{
		{Name: "color", Label: "Color", Type: entity.FieldTypeRadio},
		{Name: "note", Label: "Note", Type: entity.FieldTypeText, Options: []string{"a"}},
	}}

	problems := ValidateSchema(s)

	assert.Contains(t, problems, "field 'color': type 'radio' requires options")
	assert.Contains(t, problems, "field 'note': type 'text' does not take options")
}
