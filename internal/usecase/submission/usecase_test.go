package submission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/formatter"
)

type fakeFormRepo struct {
	forms map[string]*entity.Form
}

func (r *fakeFormRepo) Create(ctx context.Context, form entity.Form) (*entity.Form, error) {
	stored := form
	r.forms[form.ID] = &stored
	return &stored, nil
}

func (r *fakeFormRepo) Get(ctx context.Context, id string) (*entity.Form, error) {
	form, ok := r.forms[id]
	if !ok {
		return nil, entity.ErrFormNotFound
	}
	return form, nil
}

func (r *fakeFormRepo) GetByPromptHash(ctx context.Context, hash string) (*entity.Form, error) {
	return nil, entity.ErrFormNotFound
}

func (r *fakeFormRepo) List(ctx context.Context, skip, limit int) ([]*entity.Form, error) {
	return nil, nil
}

func (r *fakeFormRepo) UpdateSchema(ctx context.Context, id string, schema entity.FormSchema) (*entity.Form, error) {
	return nil, entity.ErrFormNotFound
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions []*entity.Submission
}

func (r *fakeSubmissionRepo) Append(ctx context.Context, submission entity.Submission) (*entity.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	submission.SubmittedAt = time.Now()
	stored := submission
	r.submissions = append(r.submissions, &stored)
	return &stored, nil
}

func (r *fakeSubmissionRepo) ListByForm(ctx context.Context, formID string) ([]*entity.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Submission
	for _, s := range r.submissions {
		if s.FormID == formID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) CountByForm(ctx context.Context, formID string) (int, error) {
	subs, _ := r.ListByForm(ctx, formID)
	return len(subs), nil
}

type nopWebhook struct{}

func (nopWebhook) SendSubmissionReceived(ctx context.Context, targetURL, requestID string, data *entity.WebhookSubmissionData) {
}

func feedbackForm() *entity.Form {
	return &entity.Form{
		ID:    uuid.New().String(),
		Title: "Event Feedback",
		Schema: entity.FormSchema{
			Fields: []entity.FieldDefinition{
				{Name: "full_name", Label: "Full Name", Type: entity.FieldTypeText, Validation: "required"},
				{Name: "email", Label: "Email", Type: entity.FieldTypeEmail, Validation: "required,email_format"},
				{Name: "rating", Label: "Rating", Type: entity.FieldTypeRadio, Options: []string{"good", "bad"}},
				{Name: "subscribed", Label: "Subscribe", Type: entity.FieldTypeCheckbox},
			},
		},
	}
}

func newTestSetup(t *testing.T, forms ...*entity.Form) (*SubmissionUsecase, *fakeSubmissionRepo) {
	t.Helper()

	formRepo := &fakeFormRepo{forms: make(map[string]*entity.Form)}
	for _, f := range forms {
		formRepo.forms[f.ID] = f
	}

	subRepo := &fakeSubmissionRepo{}
	uc := NewUsecase(formRepo, subRepo, nopWebhook{}, formatter.NewFactory(), zap.NewNop())
	return uc, subRepo
}

func TestSubmitForm_AppendsValidSubmission(t *testing.T) {
	form := feedbackForm()
	uc, subRepo := newTestSetup(t, form)

	sub, err := uc.SubmitForm(context.Background(), form.ID, map[string]any{
		"full_name":  "Ada Lovelace",
		"email":      "ada@example.com",
		"rating":     "good",
		"subscribed": true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, form.ID, sub.FormID)
	assert.Len(t, subRepo.submissions, 1)
}

func TestSubmitForm_CollectsAllViolations(t *testing.T) {
	form := feedbackForm()
	uc, subRepo := newTestSetup(t, form)

	_, err := uc.SubmitForm(context.Background(), form.ID, map[string]any{
		"email": "not-an-email",
	})

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, entity.ErrSubmissionRejected)
	// Missing required name and the malformed email both reported at once
	assert.Len(t, validationErr.Violations, 2)
	assert.Empty(t, subRepo.submissions)
}

func TestSubmitForm_DropsUnknownKeys(t *testing.T) {
	form := feedbackForm()
	uc, _ := newTestSetup(t, form)

	sub, err := uc.SubmitForm(context.Background(), form.ID, map[string]any{
		"full_name": "Ada",
		"email":     "ada@example.com",
		"injected":  "value",
	})

	require.NoError(t, err)
	assert.NotContains(t, sub.Values, "injected")
	assert.Equal(t, "Ada", sub.Values["full_name"])
}

func TestSubmitForm_FormWithoutFields(t *testing.T) {
	form := &entity.Form{
		ID:     uuid.New().String(),
		Title:  "Empty",
		Schema: entity.FormSchema{},
	}
	uc, _ := newTestSetup(t, form)

	_, err := uc.SubmitForm(context.Background(), form.ID, map[string]any{"x": "y"})

	assert.ErrorIs(t, err, entity.ErrFormWithoutFields)
}

func TestSubmitForm_UnknownForm(t *testing.T) {
	uc, _ := newTestSetup(t)

	_, err := uc.SubmitForm(context.Background(), uuid.New().String(), map[string]any{})

	assert.ErrorIs(t, err, entity.ErrFormNotFound)
}

func TestGetAnalytics_EmptyLog(t *testing.T) {
	form := feedbackForm()
	uc, _ := newTestSetup(t, form)

	analytics, err := uc.GetAnalytics(context.Background(), form.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, analytics.SubmissionCount)
	assert.Nil(t, analytics.FirstSubmission)
	assert.Nil(t, analytics.LastSubmission)
	require.Len(t, analytics.Fields, 4)
	for _, f := range analytics.Fields {
		assert.Zero(t, f.FilledCount)
		assert.Zero(t, f.FillRate)
	}
}

func TestGetAnalytics_CountsFillsAndOptions(t *testing.T) {
	form := feedbackForm()
	uc, _ := newTestSetup(t, form)

	submit := func(values map[string]any) {
		t.Helper()
		_, err := uc.SubmitForm(context.Background(), form.ID, values)
		require.NoError(t, err)
	}

	submit(map[string]any{"full_name": "Ada", "email": "ada@example.com", "rating": "good", "subscribed": true})
	submit(map[string]any{"full_name": "Grace", "email": "grace@example.com", "rating": "good", "subscribed": false})
	submit(map[string]any{"full_name": "Edsger", "email": "edsger@example.com", "rating": "bad"})

	analytics, err := uc.GetAnalytics(context.Background(), form.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, analytics.SubmissionCount)
	require.NotNil(t, analytics.FirstSubmission)
	require.NotNil(t, analytics.LastSubmission)

	byName := make(map[string]entity.FieldStats)
	for _, f := range analytics.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, 3, byName["full_name"].FilledCount)
	assert.InDelta(t, 1.0, byName["full_name"].FillRate, 1e-9)

	rating := byName["rating"]
	assert.Equal(t, 3, rating.FilledCount)
	assert.Equal(t, map[string]int{"good": 2, "bad": 1}, rating.OptionCounts)

	// An unchecked or absent checkbox does not count as filled
	subscribed := byName["subscribed"]
	assert.Equal(t, 1, subscribed.FilledCount)
	assert.InDelta(t, 1.0/3.0, subscribed.FillRate, 1e-9)
	assert.Equal(t, map[string]int{"true": 1}, subscribed.OptionCounts)

	// Text fields never get option counts
	assert.Nil(t, byName["full_name"].OptionCounts)
}

func TestExportSubmissions_CSV(t *testing.T) {
	form := feedbackForm()
	uc, _ := newTestSetup(t, form)

	_, err := uc.SubmitForm(context.Background(), form.ID, map[string]any{
		"full_name": "Ada",
		"email":     "ada@example.com",
	})
	require.NoError(t, err)

	result, err := uc.ExportSubmissions(context.Background(), form.ID, entity.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "event_feedback_submissions.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Contains(t, string(result.Data), "Ada")
}

func TestExportSubmissions_UnsupportedFormat(t *testing.T) {
	form := feedbackForm()
	uc, _ := newTestSetup(t, form)

	_, err := uc.ExportSubmissions(context.Background(), form.ID, "yaml")

	assert.ErrorIs(t, err, entity.ErrUnsupportedExportFmt)
}

func TestKeepKnownFields(t *testing.T) {
	schema := &entity.FormSchema{
		Fields: []entity.FieldDefinition{
			{Name: "a", Label: "A", Type: entity.FieldTypeText},
			{Name: "b", Label: "B", Type: entity.FieldTypeText},
		},
	}

	kept := keepKnownFields(schema, map[string]any{"a": "1", "c": "3"})

	assert.Equal(t, map[string]any{"a": "1"}, kept)
}

func TestExportFilename_Slugs(t *testing.T) {
	form := &entity.Form{Title: "  Café — Orders & Returns!  "}
	assert.Equal(t, "caf_orders_returns_submissions.pdf", exportFilename(form, ".pdf"))

	assert.Equal(t, "form_submissions.csv", exportFilename(&entity.Form{Title: "Анкета"}, ".csv"))
}
