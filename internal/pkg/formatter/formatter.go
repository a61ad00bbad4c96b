package formatter

import (
	"fmt"
	"time"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/validator"
)

// submittedAtHeader labels the timestamp column every export starts with.
const submittedAtHeader = "Submitted At"

type Formatter interface {
	Format(export *entity.SubmissionExport) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatCSV:
		return NewCSVFormatter(), nil
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	case entity.FormatXLSX:
		return NewXLSXFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// exportTable is the tabular shape shared by every formatter: one header
// row, then one row per submission in append order.
type exportTable struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func buildTable(export *entity.SubmissionExport) *exportTable {
	fields := export.Form.Schema.Fields

	headers := make([]string, 0, len(fields)+1)
	headers = append(headers, submittedAtHeader)
	for _, field := range fields {
		label := field.Label
		if label == "" {
			label = field.Name
		}
		headers = append(headers, label)
	}

	rows := make([][]string, 0, len(export.Submissions))
	for _, sub := range export.Submissions {
		row := make([]string, 0, len(headers))
		row = append(row, sub.SubmittedAt.UTC().Format(time.RFC3339))
		for _, field := range fields {
			row = append(row, validator.ValueString(sub.Values[field.Name]))
		}
		rows = append(rows, row)
	}

	return &exportTable{
		Title:   export.Form.Title,
		Headers: headers,
		Rows:    rows,
	}
}
