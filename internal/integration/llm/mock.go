package llm

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
)

// MockConnector returns canned schemas for development and tests.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// GenerateSchema fabricates a deterministic schema. Prompts mentioning
// "contradict" exercise the clarification path.
func (m *MockConnector) GenerateSchema(ctx context.Context, prompt string) (*entity.FormSchema, error) {
	ctxzap.Info(ctx, "[MOCK] generating form schema")

	if strings.Contains(strings.ToLower(prompt), "contradict") {
		return entity.NewClarification(
			"Your request seems contradictory. Could you clarify whether the form should collect personal details?",
		), nil
	}

	schema := &entity.FormSchema{
		Fields: []entity.FieldDefinition{
			{
				Name:       "full_name",
				Label:      "Full Name",
				Type:       entity.FieldTypeText,
				Validation: "required,min_length:2",
			},
			{
				Name:       "email",
				Label:      "Email Address",
				Type:       entity.FieldTypeEmail,
				Validation: "required,email_format",
			},
			{
				Name:       "contact_method",
				Label:      "Preferred Contact Method",
				Type:       entity.FieldTypeRadio,
				Validation: "required",
				Options:    []string{"Email", "Phone", "Telegram"},
			},
			{
				Name:       "message",
				Label:      "Message",
				Type:       entity.FieldTypeTextarea,
				Validation: "optional",
			},
			{
				Name:       "subscribe",
				Label:      "Subscribe to updates",
				Type:       entity.FieldTypeCheckbox,
				Validation: "optional",
			},
		},
	}

	ctxzap.Info(ctx, "[MOCK] form schema generated", zap.Int("field_count", len(schema.Fields)))
	return schema, nil
}
