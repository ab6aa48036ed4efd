package models

import "time"

// Placeholders recognised in template content.
const (
	PlaceholderEmployeeName  = "employeeName"
	PlaceholderEmployeeID    = "employeeId"
	PlaceholderLetterType    = "letterType"
	PlaceholderRequestDate   = "requestDate"
	PlaceholderProcessedDate = "processedDate"
	PlaceholderAdminNotes    = "adminNotes"
)

// LetterTemplate is the body used to render a letter type. One template per type.
type LetterTemplate struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	LetterType   LetterType `db:"letter_type" json:"letterType"`
	Content      string     `db:"content" json:"content"`
	GoogleDocURL *string    `db:"google_doc_url" json:"googleDocUrl,omitempty"`
	LastUpdated  time.Time  `db:"last_updated" json:"lastUpdated"`
}
