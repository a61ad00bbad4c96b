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

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiConnector generates form schemas through the Gemini REST API.
type GeminiConnector struct {
	config         config.GeminiConnectorConfig
	promptOverride string
	connector      *pkghttp.Connector
	logger         *zap.Logger
}

func NewGeminiConnector(
	cfg config.GeminiConnectorConfig,
	promptOverride string,
	logger *zap.Logger,
) *GeminiConnector {
	return &GeminiConnector{
		connector: common.NewBaseConnector(
			cfg.HTTPClientConfig,
			logger,
			pkghttp.WithAPIKeyHeader("x-goog-api-key", cfg.APIKey),
		),
		config:         cfg,
		promptOverride: promptOverride,
		logger:         logger,
	}
}

// GenerateSchema asks the model to turn a form description into a
// FormSchema. Transport and parse failures never surface as errors:
// they come back as clarification-only schemas, so the caller always
// has a document to show.
func (c *GeminiConnector) GenerateSchema(ctx context.Context, prompt string) (*entity.FormSchema, error) {
	ctxzap.Info(ctx, "generating form schema via Gemini", zap.String("model", c.config.Model))

	req := &geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: BuildPrompt(c.promptOverride, prompt)}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}

	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", c.config.Model)

	var resp geminiResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		ctxzap.Warn(ctx, "Gemini request failed", zap.Error(err))
		return entity.NewClarification(fmt.Sprintf("Cloud API Connection Error (Gemini): %v", err)), nil
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		ctxzap.Warn(ctx, "Gemini reply carried no candidates")
		return entity.NewClarification("Cloud API returned an unexpected response structure. Check API key permissions."), nil
	}

	schema, err := parseSchema(resp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		ctxzap.Warn(ctx, "Gemini reply failed to parse", zap.Error(err))
		return entity.NewClarification(fmt.Sprintf("Gemini API Response Error: %v", err)), nil
	}

	ctxzap.Info(ctx, "form schema generated",
		zap.Int("field_count", len(schema.Fields)),
		zap.Bool("clarification", schema.IsClarification()),
	)

	return schema, nil
}
