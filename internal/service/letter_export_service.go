package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/export"
)

type letterRequestLister interface {
	List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

var registerColumns = []string{
	"ID", "Employee ID", "Employee Name", "Letter Type", "Status",
	"Request Date", "Processed Date", "Processed By", "Admin Notes",
}

// LetterExportService renders the letter request register as CSV or PDF.
type LetterExportService struct {
	requests letterRequestLister
	csv      tableRenderer
	pdf      tableRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewLetterExportService constructs the service. Nil renderers fall back to the defaults.
func NewLetterExportService(requests letterRequestLister, csv, pdf tableRenderer, logger *zap.Logger) *LetterExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &LetterExportService{requests: requests, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders every request matching query in the given format.
func (s *LetterExportService) Export(ctx context.Context, query dto.LetterRequestQuery, format string) (*dto.ExportResult, error) {
	f := dto.ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = dto.ExportFormatCSV
	}
	var (
		renderer    tableRenderer
		contentType string
	)
	switch f {
	case dto.ExportFormatCSV:
		renderer, contentType = s.csv, "text/csv"
	case dto.ExportFormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	filter, err := buildLetterRequestFilter(query)
	if err != nil {
		return nil, err
	}
	records, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list letter requests")
	}

	generated := s.now().UTC()
	table := export.Table{
		Title:   "Letter Requests " + generated.Format("2006-01-02"),
		Columns: registerColumns,
		Rows:    make([][]string, 0, len(records)),
	}
	for _, rec := range records {
		table.Rows = append(table.Rows, registerRow(rec))
	}
	body, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Debug("letter register exported", zap.String("format", string(f)), zap.Int("rows", len(records)))
	return &dto.ExportResult{
		Filename:    fmt.Sprintf("letter-requests-%s.%s", generated.Format("20060102-150405"), f),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func registerRow(rec models.LetterRequest) []string {
	processed, by := "", ""
	if rec.ProcessedDate != nil {
		processed = rec.ProcessedDate.UTC().Format(time.RFC3339)
	}
	if rec.ProcessedBy != nil {
		by = *rec.ProcessedBy
	}
	return []string{
		rec.ID,
		rec.EmployeeID,
		rec.EmployeeName,
		rec.LetterType.Label(),
		string(rec.Status),
		rec.RequestDate.UTC().Format(time.RFC3339),
		processed,
		by,
		rec.AdminNotes,
	}
}
