package dto

import "github.com/noah-isme/hr-letter-api/internal/models"

// CreateLetterRequest payload for filing a new letter request.
// LetterType accepts a catalog code or label.
type CreateLetterRequest struct {
	EmployeeID   string `json:"employeeId" validate:"required"`
	EmployeeName string `json:"employeeName" validate:"required"`
	LetterType   string `json:"letterType" validate:"required"`
}

// TransitionLetterRequest captures the admin decision and optional notes.
type TransitionLetterRequest struct {
	Status     models.LetterRequestStatus `json:"status" validate:"required,oneof=approved rejected"`
	AdminNotes string                     `json:"adminNotes" validate:"max=2000"`
}

// LetterRequestQuery mirrors supported listing filters.
type LetterRequestQuery struct {
	Status     models.LetterRequestStatus
	LetterType models.LetterType
	Limit      int
	Offset     int
}

// ExportFormat enumerates register export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered register file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
