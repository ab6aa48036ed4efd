package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Table{
		Columns: []string{"Employee ID", "Letter Type", "Status"},
		Rows: [][]string{
			{"E100", "VISA Letter", "approved"},
			{"E200", "NOC"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Employee ID,Letter Type,Status\nE100,VISA Letter,approved\nE200,NOC,\n", string(out))
}

func TestCSVExporterRejectsBadInput(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Table{Columns: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Table{
		Title:   "Letter Requests",
		Columns: []string{"Employee", "Type"},
		Rows:    [][]string{{"Asha", "VISA Letter"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestLetterRendererRender(t *testing.T) {
	out, err := NewLetterRenderer("Acme Corp").Render(Letter{
		Heading:   "VISA Letter",
		Reference: "req-1",
		Date:      "2024-03-01",
		Recipient: "To whom it may concern",
		Body:      "Asha (E100) is employed with us.\n\nThis letter is issued on request.",
		Signatory: "HR Department",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewLetterRenderer("").Render(Letter{Body: "  "})
	assert.Error(t, err)
}

func TestFillPlaceholders(t *testing.T) {
	got := FillPlaceholders("Dear {{employeeName}} ({{employeeId}}), {{unknown}}", map[string]string{
		"employeeName": "Asha",
		"employeeId":   "E100",
	})
	assert.Equal(t, "Dear Asha (E100), {{unknown}}", got)
	assert.Equal(t, "plain", FillPlaceholders("plain", nil))
}
