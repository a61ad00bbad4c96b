package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"

	"github.com/formloom/forms-backend/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(export *entity.SubmissionExport) ([]byte, error) {
	table := buildTable(export)

	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titleRun := titlePar.AddRun()
	titleRun.AddText(table.Title)

	doc.AddParagraph()

	docTable := doc.AddTable()

	headerRow := docTable.AddRow()
	for _, header := range table.Headers {
		cellPar := headerRow.AddCell().AddParagraph()
		run := cellPar.AddRun()
		run.Properties().SetBold(true)
		run.AddText(header)
	}

	for _, row := range table.Rows {
		docRow := docTable.AddRow()
		for _, cell := range row {
			docRow.AddCell().AddParagraph().AddRun().AddText(cell)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
