package form

import (
	"context"

	"github.com/formloom/forms-backend/internal/entity"
)

type FormUsecase interface {
	GenerateForm(ctx context.Context, req *entity.GenerateFormRequest) (*entity.GenerateFormResponse, error)
	ListForms(ctx context.Context, req *entity.ListFormsRequest) ([]*entity.Form, error)
	GetForm(ctx context.Context, id string) (*entity.Form, error)
	UpdateSchema(ctx context.Context, formID string, schema entity.FormSchema) (*entity.Form, error)
}
