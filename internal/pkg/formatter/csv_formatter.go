package formatter

import (
	"bytes"
	"encoding/csv"

	"github.com/formloom/forms-backend/internal/entity"
)

const (
	csvContentType   = "text/csv; charset=utf-8"
	csvFileExtension = ".csv"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (cf *CSVFormatter) Format(export *entity.SubmissionExport) ([]byte, error) {
	table := buildTable(export)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(table.Headers); err != nil {
		return nil, err
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (cf *CSVFormatter) ContentType() string {
	return csvContentType
}

func (cf *CSVFormatter) FileExtension() string {
	return csvFileExtension
}
