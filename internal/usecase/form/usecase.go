package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/validator"
	"github.com/formloom/forms-backend/internal/repository"
)

// FormUsecase implements form business logic: schema generation,
// persistence and manual edits.
type FormUsecase struct {
	formRepo    repository.FormRepository
	generator   SchemaGenerator
	webhookConn WebhookConnector
	genCache    *gocache.Cache
	logger      *zap.Logger
}

// NewUsecase creates a new form use case. Generation results are cached
// by prompt hash so repeating a request does not call the model again.
func NewUsecase(
	formRepo repository.FormRepository,
	generator SchemaGenerator,
	webhookConn WebhookConnector,
	cacheTTL time.Duration,
	cacheCleanup time.Duration,
	logger *zap.Logger,
) *FormUsecase {
	return &FormUsecase{
		formRepo:    formRepo,
		generator:   generator,
		webhookConn: webhookConn,
		genCache:    gocache.New(cacheTTL, cacheCleanup),
		logger:      logger,
	}
}

// GenerateForm turns a free-text description into a stored form.
// A clarification result is returned as data and persists nothing.
// A fields result is deduplicated by prompt hash: repeating the same
// trimmed prompt returns the already stored form.
func (uc *FormUsecase) GenerateForm(ctx context.Context, req *entity.GenerateFormRequest) (*entity.GenerateFormResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, entity.ErrEmptyPrompt
	}

	promptHash := entity.HashPrompt(prompt)

	if existing, err := uc.formRepo.GetByPromptHash(ctx, promptHash); err == nil {
		ctxzap.Info(ctx, "form already exists for prompt",
			zap.String("form_id", existing.ID),
			zap.String("prompt_hash", promptHash),
		)
		return &entity.GenerateFormResponse{
			Status: entity.GenerateStatusExists,
			FormID: existing.ID,
			Schema: &existing.Schema,
		}, nil
	}

	schema, err := uc.generateSchema(ctx, prompt, promptHash)
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	if schema.IsClarification() {
		ctxzap.Info(ctx, "generation produced a clarification",
			zap.String("prompt_hash", promptHash),
		)
		return &entity.GenerateFormResponse{
			Status:        entity.GenerateStatusClarification,
			Clarification: schema.Clarification,
		}, nil
	}

	if problems := validator.ValidateSchema(schema); len(problems) > 0 {
		return nil, &entity.ValidationError{
			Reason:     entity.ErrInvalidSchema,
			Violations: problems,
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = deriveTitle(prompt)
	}

	form := entity.Form{
		ID:         uuid.New().String(),
		Title:      title,
		Prompt:     prompt,
		PromptHash: promptHash,
		Schema:     *schema,
	}
	if req.WebhookURL != "" {
		form.WebhookURL = &req.WebhookURL
	}

	saved, err := uc.formRepo.Create(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}

	ctxzap.Info(ctx, "form created",
		zap.String("form_id", saved.ID),
		zap.Int("field_count", len(saved.Schema.Fields)),
	)

	return &entity.GenerateFormResponse{
		Status: entity.GenerateStatusCreated,
		FormID: saved.ID,
		Schema: &saved.Schema,
	}, nil
}

// generateSchema runs the model behind the prompt-hash cache.
func (uc *FormUsecase) generateSchema(ctx context.Context, prompt, promptHash string) (*entity.FormSchema, error) {
	if cached, found := uc.genCache.Get(promptHash); found {
		ctxzap.Debug(ctx, "generation cache hit", zap.String("prompt_hash", promptHash))
		return cached.(*entity.FormSchema), nil
	}

	schema, err := uc.generator.GenerateSchema(ctx, prompt)
	if err != nil {
		return nil, err
	}

	uc.genCache.Set(promptHash, schema, gocache.DefaultExpiration)

	return schema, nil
}

// ListForms retrieves forms with pagination
func (uc *FormUsecase) ListForms(ctx context.Context, req *entity.ListFormsRequest) ([]*entity.Form, error) {
	forms, err := uc.formRepo.List(ctx, req.Skip, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	return forms, nil
}

// GetForm retrieves a form by ID
func (uc *FormUsecase) GetForm(ctx context.Context, id string) (*entity.Form, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid form ID format", entity.ErrInvalidParameter)
	}

	form, err := uc.formRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}

	return form, nil
}

// UpdateSchema replaces the stored schema after a manual edit.
// The document is structurally re-validated first; an invalid edit is
// rejected with the collected problems and leaves the stored schema
// unchanged.
func (uc *FormUsecase) UpdateSchema(ctx context.Context, formID string, schema entity.FormSchema) (*entity.Form, error) {
	if _, err := uuid.Parse(formID); err != nil {
		return nil, fmt.Errorf("%w: invalid form ID format", entity.ErrInvalidParameter)
	}

	if problems := validator.ValidateSchema(&schema); len(problems) > 0 {
		return nil, &entity.ValidationError{
			Reason:     entity.ErrInvalidSchema,
			Violations: problems,
		}
	}

	updated, err := uc.formRepo.UpdateSchema(ctx, formID, schema)
	if err != nil {
		return nil, fmt.Errorf("update schema: %w", err)
	}

	ctxzap.Info(ctx, "form schema updated",
		zap.String("form_id", updated.ID),
		zap.Int("field_count", len(updated.Schema.Fields)),
	)

	if updated.WebhookURL != nil && *updated.WebhookURL != "" {
		uc.notifySchemaUpdated(ctx, updated)
	}

	return updated, nil
}

// notifySchemaUpdated delivers the webhook event asynchronously on a
// detached context so the edit does not block on delivery retries.
func (uc *FormUsecase) notifySchemaUpdated(ctx context.Context, form *entity.Form) {
	bgCtx := ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx))

	go uc.webhookConn.SendSchemaUpdated(bgCtx, *form.WebhookURL, form.ID, &entity.WebhookSchemaData{
		FormID:     form.ID,
		FormTitle:  form.Title,
		Schema:     form.Schema,
		FieldCount: len(form.Schema.Fields),
	})
}

// deriveTitle falls back to the prompt's first words when no title was
// supplied.
func deriveTitle(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}
