package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloom/forms-backend/internal/entity"
)

func feedbackExport() *entity.SubmissionExport {
	return &entity.SubmissionExport{
		Form: &entity.Form{
			ID:    "42b1c3d4-0000-0000-0000-000000000001",
			Title: "Customer Feedback",
			Schema: entity.FormSchema{
				Fields: []entity.FieldDefinition{
					{Name: "full_name", Label: "Full Name", Type: entity.FieldTypeText},
					{Name: "rating", Label: "Rating", Type: entity.FieldTypeRadio, Options: []string{"1", "2", "3"}},
					{Name: "subscribe", Label: "Subscribe", Type: entity.FieldTypeCheckbox},
				},
			},
		},
		Submissions: []*entity.Submission{
			{
				ID:          "s-1",
				Values:      map[string]any{"full_name": "Alice | Co", "rating": "3", "subscribe": true},
				SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				ID:          "s-2",
				Values:      map[string]any{"full_name": "Bob", "rating": "1"},
				SubmittedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
			},
		},
	}
}

func TestBuildTable(t *testing.T) {
	table := buildTable(feedbackExport())

	assert.Equal(t, "Customer Feedback", table.Title)
	assert.Equal(t, []string{"Submitted At", "Full Name", "Rating", "Subscribe"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2026-03-01T12:00:00Z", "Alice | Co", "3", "true"}, table.Rows[0])
	assert.Equal(t, []string{"2026-03-02T09:30:00Z", "Bob", "1", ""}, table.Rows[1])
}

func TestCSVFormatter(t *testing.T) {
	data, err := NewCSVFormatter().Format(feedbackExport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Submitted At,Full Name,Rating,Subscribe", lines[0])
	assert.Equal(t, "2026-03-01T12:00:00Z,Alice | Co,3,true", lines[1])
	assert.Equal(t, "2026-03-02T09:30:00Z,Bob,1,", lines[2])
}

func TestMarkdownFormatter(t *testing.T) {
	data, err := NewMarkdownFormatter().Format(feedbackExport())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# Customer Feedback\n\n"))
	assert.Contains(t, text, "| Submitted At | Full Name | Rating | Subscribe |")
	assert.Contains(t, text, "| --- | --- | --- | --- |")
	// pipes inside values must not break the table
	assert.Contains(t, text, "Alice \\| Co")
}

func TestFactory_Create(t *testing.T) {
	factory := NewFactory()

	for _, format := range []entity.ExportFormat{
		entity.FormatCSV, entity.FormatMarkdown, entity.FormatDOCX,
		entity.FormatPDF, entity.FormatXLSX,
	} {
		f, err := factory.Create(format)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	_, err := factory.Create(entity.ExportFormat("yaml"))
	assert.Error(t, err)
}
