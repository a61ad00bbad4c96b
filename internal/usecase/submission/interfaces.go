package submission

import (
	"context"

	"github.com/formloom/forms-backend/internal/entity"
)

type WebhookConnector interface {
	SendSubmissionReceived(ctx context.Context, targetURL, requestID string, data *entity.WebhookSubmissionData)
}
