package entity

// FieldType enumerates the input kinds a generated form may contain.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeEmail     FieldType = "email"
	FieldTypeNumber    FieldType = "number"
	FieldTypeDate      FieldType = "date"
	FieldTypePassword  FieldType = "password"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeSelectbox FieldType = "selectbox"
	FieldTypeTextarea  FieldType = "textarea"
)

func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeDate,
		FieldTypePassword, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeSelectbox, FieldTypeTextarea:
		return true
	default:
		return false
	}
}

// TakesOptions reports whether the type carries a fixed option list.
func (ft FieldType) TakesOptions() bool {
	return ft == FieldTypeRadio || ft == FieldTypeSelectbox
}

// IsChoice reports whether submitted values come from a closed set,
// which makes the field countable per option in analytics.
func (ft FieldType) IsChoice() bool {
	return ft == FieldTypeRadio || ft == FieldTypeSelectbox || ft == FieldTypeCheckbox
}

// FieldDefinition describes one input of a generated form.
// Validation holds comma-separated rule tokens ("required,min_length:2");
// Options is populated only for radio and selectbox fields.
type FieldDefinition struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type"`
	Validation string    `json:"validation,omitempty"`
	Options    []string  `json:"options,omitempty"`
}

// FormSchema is the model's answer to a generation request.
// Exactly one of Clarification and Fields is populated: a contradictory
// or failed request yields a clarification message, a buildable request
// yields the ordered field list.
type FormSchema struct {
	Clarification *string           `json:"clarification,omitempty"`
	Fields        []FieldDefinition `json:"fields,omitempty"`
}

// IsClarification reports whether the schema carries a clarification
// message instead of fields.
func (s *FormSchema) IsClarification() bool {
	return s.Clarification != nil && *s.Clarification != ""
}

// FieldByName returns the definition with the given name, or nil.
func (s *FormSchema) FieldByName(name string) *FieldDefinition {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// NewClarification wraps a message into a clarification-only schema.
func NewClarification(message string) *FormSchema {
	return &FormSchema{Clarification: &message}
}
