package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/config"
	"github.com/formloom/forms-backend/internal/entity"
	pkghttp "github.com/formloom/forms-backend/pkg/http"
)

// Connector delivers webhook events to form-specific target URLs.
// Delivery is bounded-retry: server-side failures are retried with the
// configured backoff, client mistakes (4xx) are not.
type Connector struct {
	config    config.WebhookConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.WebhookConnectorConfig,
	logger *zap.Logger,
) *Connector {
	connCfg := &pkghttp.ConnectorConfig{Logger: logger}

	return &Connector{
		connector: pkghttp.NewConnector(
			connCfg,
			pkghttp.WithRequestTimeout(cfg.RequestTimeout),
			pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
			pkghttp.WithRequestLogging(),
			pkghttp.WithAuthToken(cfg.Token),
		),
		config: cfg,
		logger: logger,
	}
}

// SendSubmissionReceived notifies the form's webhook about a stored
// submission.
func (c *Connector) SendSubmissionReceived(ctx context.Context, targetURL, requestID string, data *entity.WebhookSubmissionData) {
	err := c.Send(ctx, targetURL, requestID, &entity.WebhookEvent{
		Event: entity.WebhookEventSubmissionReceived,
		Data:  data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send submission webhook", zap.Error(err))
	}
}

// SendSchemaUpdated notifies the form's webhook about a manual schema edit.
func (c *Connector) SendSchemaUpdated(ctx context.Context, targetURL, requestID string, data *entity.WebhookSchemaData) {
	err := c.Send(ctx, targetURL, requestID, &entity.WebhookEvent{
		Event: entity.WebhookEventSchemaUpdated,
		Data:  data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send schema webhook", zap.Error(err))
	}
}

func (c *Connector) Send(ctx context.Context, targetURL, requestID string, event *entity.WebhookEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending webhook event",
		zap.String("event_type", string(event.Event)),
		zap.String("target_url", targetURL),
		zap.String("request_id", requestID),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Request-ID", requestID),
		pkghttp.WithURL(targetURL),
	}

	err := retry.Do(
		func() error {
			return c.connector.Notify(ctx, http.MethodPost, "", event, opts...)
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.RetryIf(isRetryable),
		)...,
	)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook, event_type: %s, url: %s, error: %w", string(event.Event), targetURL, err)
	}

	ctxzap.Info(ctx, "webhook delivered",
		zap.String("event_type", string(event.Event)),
		zap.String("target_url", targetURL),
		zap.String("request_id", requestID),
	)
	return nil
}

// isRetryable treats network failures and 5xx/429 replies as transient.
func isRetryable(err error) bool {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	var netErr *pkghttp.NetworkError
	return errors.As(err, &netErr)
}
