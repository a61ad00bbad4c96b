package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/formloom/forms-backend/internal/entity"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxFileExtension = ".xlsx"
	xlsxSheetName     = "Submissions"
)

type XLSXFormatter struct{}

func NewXLSXFormatter() *XLSXFormatter {
	return &XLSXFormatter{}
}

func (xf *XLSXFormatter) Format(export *entity.SubmissionExport) ([]byte, error) {
	table := buildTable(export)

	wb := spreadsheet.New()
	defer wb.Close()

	sheet := wb.AddSheet()
	sheet.SetName(xlsxSheetName)

	headerRow := sheet.AddRow()
	for _, header := range table.Headers {
		headerRow.AddCell().SetString(header)
	}

	for _, row := range table.Rows {
		sheetRow := sheet.AddRow()
		for _, cell := range row {
			sheetRow.AddCell().SetString(cell)
		}
	}

	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (xf *XLSXFormatter) ContentType() string {
	return xlsxContentType
}

func (xf *XLSXFormatter) FileExtension() string {
	return xlsxFileExtension
}
