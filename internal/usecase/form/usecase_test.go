package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
)

type fakeFormRepo struct {
	mu      sync.Mutex
	byID    map[string]*entity.Form
	byHash  map[string]*entity.Form
	created int
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{
		byID:   make(map[string]*entity.Form),
		byHash: make(map[string]*entity.Form),
	}
}

func (r *fakeFormRepo) Create(ctx context.Context, form entity.Form) (*entity.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	form.CreatedAt = now
	form.UpdatedAt = now

	stored := form
	r.byID[form.ID] = &stored
	r.byHash[form.PromptHash] = &stored
	r.created++
	return &stored, nil
}

func (r *fakeFormRepo) Get(ctx context.Context, id string) (*entity.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrFormNotFound
	}
	return form, nil
}

func (r *fakeFormRepo) GetByPromptHash(ctx context.Context, hash string) (*entity.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.byHash[hash]
	if !ok {
		return nil, entity.ErrFormNotFound
	}
	return form, nil
}

func (r *fakeFormRepo) List(ctx context.Context, skip, limit int) ([]*entity.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	forms := make([]*entity.Form, 0, len(r.byID))
	for _, f := range r.byID {
		forms = append(forms, f)
	}
	return forms, nil
}

func (r *fakeFormRepo) UpdateSchema(ctx context.Context, id string, schema entity.FormSchema) (*entity.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrFormNotFound
	}
	form.Schema = schema
	form.UpdatedAt = time.Now()
	return form, nil
}

type stubGenerator struct {
	schema *entity.FormSchema
	err    error
	calls  int
}

func (g *stubGenerator) GenerateSchema(ctx context.Context, prompt string) (*entity.FormSchema, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.schema, nil
}

type nopWebhook struct{}

func (nopWebhook) SendSchemaUpdated(ctx context.Context, targetURL, requestID string, data *entity.WebhookSchemaData) {
}

func fieldsSchema() *entity.FormSchema {
	return &entity.FormSchema{
		Fields: []entity.FieldDefinition{
			{Name: "full_name", Label: "Full Name", Type: entity.FieldTypeText, Validation: "required"},
			{Name: "email", Label: "Email", Type: entity.FieldTypeEmail, Validation: "required,email_format"},
		},
	}
}

func newTestUsecase(repo *fakeFormRepo, gen *stubGenerator) *FormUsecase {
	return NewUsecase(repo, gen, nopWebhook{}, time.Minute, time.Minute, zap.NewNop())
}

func TestGenerateForm_CreatesForm(t *testing.T) {
	repo := newFakeFormRepo()
	gen := &stubGenerator{schema: fieldsSchema()}
	uc := newTestUsecase(repo, gen)

	resp, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{
		Prompt: "A contact form with name and email",
		Title:  "Contact",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.GenerateStatusCreated, resp.Status)
	assert.NotEmpty(t, resp.FormID)
	require.NotNil(t, resp.Schema)
	assert.Len(t, resp.Schema.Fields, 2)

	stored, err := repo.Get(context.Background(), resp.FormID)
	require.NoError(t, err)
	assert.Equal(t, "Contact", stored.Title)
}

func TestGenerateForm_EmptyPrompt(t *testing.T) {
	uc := newTestUsecase(newFakeFormRepo(), &stubGenerator{schema: fieldsSchema()})

	_, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "   "})

	assert.ErrorIs(t, err, entity.ErrEmptyPrompt)
}

func TestGenerateForm_RepeatedPromptReturnsExistingForm(t *testing.T) {
	repo := newFakeFormRepo()
	gen := &stubGenerator{schema: fieldsSchema()}
	uc := newTestUsecase(repo, gen)

	first, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "A contact form"})
	require.NoError(t, err)

	// Trailing whitespace must not change the content identity
	second, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "  A contact form  "})
	require.NoError(t, err)

	assert.Equal(t, entity.GenerateStatusExists, second.Status)
	assert.Equal(t, first.FormID, second.FormID)
	assert.Equal(t, 1, repo.created)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateForm_ClarificationPersistsNothing(t *testing.T) {
	repo := newFakeFormRepo()
	gen := &stubGenerator{schema: entity.NewClarification("Did you mean a survey or a quiz?")}
	uc := newTestUsecase(repo, gen)

	resp, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "something contradictory"})

	require.NoError(t, err)
	assert.Equal(t, entity.GenerateStatusClarification, resp.Status)
	require.NotNil(t, resp.Clarification)
	assert.Equal(t, "Did you mean a survey or a quiz?", *resp.Clarification)
	assert.Empty(t, resp.FormID)
	assert.Equal(t, 0, repo.created)
}

func TestGenerateForm_InvalidSchemaRejected(t *testing.T) {
	// Duplicate field names make the generated schema unusable
	schema := &entity.FormSchema{
		Fields: []entity.FieldDefinition{
			{Name: "email", Label: "Email", Type: entity.FieldTypeEmail},
			{Name: "email", Label: "Backup Email", Type: entity.FieldTypeEmail},
		},
	}
	repo := newFakeFormRepo()
	uc := newTestUsecase(repo, &stubGenerator{schema: schema})

	_, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "a form"})

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, entity.ErrInvalidSchema)
	assert.NotEmpty(t, validationErr.Violations)
	assert.Equal(t, 0, repo.created)
}

func TestGenerateForm_GeneratorErrorPropagates(t *testing.T) {
	uc := newTestUsecase(newFakeFormRepo(), &stubGenerator{err: errors.New("model unavailable")})

	_, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "a form"})

	assert.ErrorContains(t, err, "model unavailable")
}

func TestGenerateForm_DerivesTitleFromPrompt(t *testing.T) {
	uc := newTestUsecase(newFakeFormRepo(), &stubGenerator{schema: fieldsSchema()})

	resp, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{
		Prompt: "An event registration form that collects the attendee name and a contact email for updates",
	})
	require.NoError(t, err)

	form, err := uc.GetForm(context.Background(), resp.FormID)
	require.NoError(t, err)
	assert.Equal(t, "An event registration form that collects the attendee", form.Title)
}

func TestGetForm_RejectsMalformedID(t *testing.T) {
	uc := newTestUsecase(newFakeFormRepo(), &stubGenerator{schema: fieldsSchema()})

	_, err := uc.GetForm(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestUpdateSchema_ReplacesStoredSchema(t *testing.T) {
	repo := newFakeFormRepo()
	uc := newTestUsecase(repo, &stubGenerator{schema: fieldsSchema()})

	resp, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "a form"})
	require.NoError(t, err)

	edited := entity.FormSchema{
		Fields: []entity.FieldDefinition{
			{Name: "comment", Label: "Comment", Type: entity.FieldTypeTextarea},
		},
	}

	updated, err := uc.UpdateSchema(context.Background(), resp.FormID, edited)

	require.NoError(t, err)
	require.Len(t, updated.Schema.Fields, 1)
	assert.Equal(t, "comment", updated.Schema.Fields[0].Name)
}

func TestUpdateSchema_InvalidEditLeavesSchemaUnchanged(t *testing.T) {
	repo := newFakeFormRepo()
	uc := newTestUsecase(repo, &stubGenerator{schema: fieldsSchema()})

	resp, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "a form"})
	require.NoError(t, err)

	// Radio without options is structurally invalid
	bad := entity.FormSchema{
		Fields: []entity.FieldDefinition{
			{Name: "choice", Label: "Choice", Type: entity.FieldTypeRadio},
		},
	}

	_, err = uc.UpdateSchema(context.Background(), resp.FormID, bad)

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)

	stored, err := repo.Get(context.Background(), resp.FormID)
	require.NoError(t, err)
	assert.Len(t, stored.Schema.Fields, 2)
}

func TestGenerateForm_CacheSkipsGeneratorAfterMiss(t *testing.T) {
	repo := newFakeFormRepo()
	gen := &stubGenerator{schema: entity.NewClarification("Which fields do you need?")}
	uc := newTestUsecase(repo, gen)

	for i := 0; i < 3; i++ {
		resp, err := uc.GenerateForm(context.Background(), &entity.GenerateFormRequest{Prompt: "vague prompt"})
		require.NoError(t, err)
		require.Equal(t, entity.GenerateStatusClarification, resp.Status, fmt.Sprintf("attempt %d", i))
	}

	// Clarifications store nothing, so only the cache prevents repeat calls
	assert.Equal(t, 1, gen.calls)
}
