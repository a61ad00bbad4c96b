package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/formloom/forms-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(export *entity.SubmissionExport) ([]byte, error) {
	table := buildTable(export)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", table.Title)

	writeMarkdownRow(&buf, table.Headers)

	separator := make([]string, len(table.Headers))
	for i := range separator {
		separator[i] = "---"
	}
	writeMarkdownRow(&buf, separator)

	for _, row := range table.Rows {
		writeMarkdownRow(&buf, row)
	}

	return buf.Bytes(), nil
}

func writeMarkdownRow(buf *bytes.Buffer, cells []string) {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = strings.ReplaceAll(cell, "|", "\\|")
	}
	fmt.Fprintf(buf, "| %s |\n", strings.Join(escaped, " | "))
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
