package form

import (
	"context"

	"github.com/formloom/forms-backend/internal/entity"
)

type SchemaGenerator interface {
	GenerateSchema(ctx context.Context, prompt string) (*entity.FormSchema, error)
}

type WebhookConnector interface {
	SendSchemaUpdated(ctx context.Context, targetURL, requestID string, data *entity.WebhookSchemaData)
}
