package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Letter is the content of a single issued letter.
type Letter struct {
	Heading   string
	Reference string
	Date      string
	Recipient string
	Body      string
	Signatory string
}

// LetterRenderer lays a Letter out on a portrait A4 page.
type LetterRenderer struct {
	Organisation string
}

// NewLetterRenderer builds a renderer that prints organisation in the letterhead.
func NewLetterRenderer(organisation string) *LetterRenderer {
	return &LetterRenderer{Organisation: organisation}
}

// Render returns the PDF bytes. Blank lines in Body separate paragraphs.
func (r *LetterRenderer) Render(letter Letter) ([]byte, error) {
	if strings.TrimSpace(letter.Body) == "" {
		return nil, fmt.Errorf("letter body is empty")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if r.Organisation != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(r.Organisation), "B", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 10)
	if letter.Reference != "" {
		pdf.CellFormat(0, 6, tr("Ref: "+letter.Reference), "", 1, "L", false, 0, "")
	}
	if letter.Date != "" {
		pdf.CellFormat(0, 6, tr("Date: "+letter.Date), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if letter.Heading != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 9, tr(strings.ToUpper(letter.Heading)), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 11)
	if letter.Recipient != "" {
		pdf.MultiCell(0, 6, tr(letter.Recipient), "", "L", false)
		pdf.Ln(3)
	}
	for _, para := range splitParagraphs(letter.Body) {
		pdf.MultiCell(0, 6, tr(para), "", "J", false)
		pdf.Ln(3)
	}

	if letter.Signatory != "" {
		pdf.Ln(10)
		pdf.CellFormat(0, 6, tr(letter.Signatory), "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render letter pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func splitParagraphs(body string) []string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	chunks := strings.Split(normalized, "\n\n")
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FillPlaceholders replaces {{key}} markers in content with values. Unknown markers are left as-is.
func FillPlaceholders(content string, values map[string]string) string {
	if len(values) == 0 {
		return content
	}
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
