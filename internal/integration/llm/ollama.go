package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/config"
	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/integration/common"
	pkghttp "github.com/formloom/forms-backend/pkg/http"
)

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// OllamaConnector generates form schemas through a local Ollama server.
type OllamaConnector struct {
	config         config.OllamaConnectorConfig
	promptOverride string
	connector      *pkghttp.Connector
	logger         *zap.Logger
}

func NewOllamaConnector(
	cfg config.OllamaConnectorConfig,
	promptOverride string,
	logger *zap.Logger,
) *OllamaConnector {
	return &OllamaConnector{
		connector:      common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:         cfg,
		promptOverride: promptOverride,
		logger:         logger,
	}
}

// GenerateSchema mirrors the Gemini contract against a local model:
// failures come back as clarification-only schemas, never as errors.
func (c *OllamaConnector) GenerateSchema(ctx context.Context, prompt string) (*entity.FormSchema, error) {
	ctxzap.Info(ctx, "generating form schema via Ollama", zap.String("model", c.config.Model))

	req := &ollamaRequest{
		Model:   c.config.Model,
		Prompt:  BuildPrompt(c.promptOverride, prompt),
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: c.config.Temperature},
	}

	var resp ollamaResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/api/generate", req, &resp); err != nil {
		ctxzap.Warn(ctx, "Ollama request failed", zap.Error(err))
		return entity.NewClarification(fmt.Sprintf("Ollama Local Error: Is the server running? Error: %v", err)), nil
	}

	schema, err := parseSchema(resp.Response)
	if err != nil {
		ctxzap.Warn(ctx, "Ollama reply failed to parse", zap.Error(err))
		return entity.NewClarification(fmt.Sprintf("Ollama Local Error: Is the server running? Error: %v", err)), nil
	}

	ctxzap.Info(ctx, "form schema generated",
		zap.Int("field_count", len(schema.Fields)),
		zap.Bool("clarification", schema.IsClarification()),
	)

	return schema, nil
}
