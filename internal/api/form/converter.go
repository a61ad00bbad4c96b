package form

import "github.com/formloom/forms-backend/internal/entity"

// toFormSummary converts Form entity to FormSummary DTO
func toFormSummary(f *entity.Form) *entity.FormSummary {
	return &entity.FormSummary{
		ID:         f.ID,
		Title:      f.Title,
		Prompt:     f.Prompt,
		FieldCount: len(f.Schema.Fields),
		CreatedAt:  f.CreatedAt,
	}
}

// toFormDetail converts Form entity to FormDetailResponse DTO
func toFormDetail(f *entity.Form) *entity.FormDetailResponse {
	return &entity.FormDetailResponse{
		ID:         f.ID,
		Title:      f.Title,
		Prompt:     f.Prompt,
		Schema:     f.Schema,
		WebhookURL: f.WebhookURL,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}
