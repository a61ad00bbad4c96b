package submission

import (
	"fmt"
	"strings"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/validator"
)

// keepKnownFields drops submitted keys that match no schema field, so the
// stored document never carries values the form cannot render.
func keepKnownFields(schema *entity.FormSchema, values map[string]any) map[string]any {
	kept := make(map[string]any, len(schema.Fields))
	for _, field := range schema.Fields {
		if v, ok := values[field.Name]; ok {
			kept[field.Name] = v
		}
	}
	return kept
}

// computeAnalytics derives aggregate statistics from the submission log.
// A field counts as filled when its rendered value is non-empty; choice
// fields additionally get per-option counts, with checkbox values split
// on commas so multi-select answers count each picked option.
func computeAnalytics(form *entity.Form, submissions []*entity.Submission) *entity.FormAnalytics {
	analytics := &entity.FormAnalytics{
		FormID:          form.ID,
		SubmissionCount: len(submissions),
		Fields:          make([]entity.FieldStats, 0, len(form.Schema.Fields)),
	}

	if len(submissions) > 0 {
		first := submissions[0].SubmittedAt
		last := submissions[len(submissions)-1].SubmittedAt
		analytics.FirstSubmission = &first
		analytics.LastSubmission = &last
	}

	for _, field := range form.Schema.Fields {
		stats := entity.FieldStats{
			Name:  field.Name,
			Label: field.Label,
			Type:  field.Type,
		}
		if field.Type.IsChoice() {
			stats.OptionCounts = make(map[string]int)
		}

		for _, sub := range submissions {
			rendered := validator.ValueString(sub.Values[field.Name])
			if rendered == "" || (field.Type == entity.FieldTypeCheckbox && rendered == "false") {
				continue
			}

			stats.FilledCount++

			if stats.OptionCounts != nil {
				for _, option := range strings.Split(rendered, ",") {
					if option = strings.TrimSpace(option); option != "" {
						stats.OptionCounts[option]++
					}
				}
			}
		}

		if len(submissions) > 0 {
			stats.FillRate = float64(stats.FilledCount) / float64(len(submissions))
		}

		analytics.Fields = append(analytics.Fields, stats)
	}

	return analytics
}

// exportFilename builds a download name from the form title, reduced to
// a safe ascii slug.
func exportFilename(form *entity.Form, extension string) string {
	slug := slugify(form.Title)
	if slug == "" {
		slug = "form"
	}
	return fmt.Sprintf("%s_submissions%s", slug, extension)
}

func slugify(title string) string {
	var b strings.Builder
	lastUnderscore := true

	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}
