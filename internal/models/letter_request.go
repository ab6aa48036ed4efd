package models

import "time"

// LetterRequestStatus captures the review state of a letter request.
type LetterRequestStatus string

const (
	LetterRequestStatusPending  LetterRequestStatus = "pending"
	LetterRequestStatusApproved LetterRequestStatus = "approved"
	LetterRequestStatusRejected LetterRequestStatus = "rejected"
)

// IsTerminal reports whether the status is a review outcome.
func (s LetterRequestStatus) IsTerminal() bool {
	return s == LetterRequestStatusApproved || s == LetterRequestStatusRejected
}

// Valid reports whether s is a known status.
func (s LetterRequestStatus) Valid() bool {
	return s == LetterRequestStatusPending || s.IsTerminal()
}

// LetterRequest is an employee's ask for an HR letter.
// ProcessedDate is set exactly when Status is not pending.
type LetterRequest struct {
	ID            string              `db:"id" json:"id"`
	EmployeeID    string              `db:"employee_id" json:"employeeId"`
	EmployeeName  string              `db:"employee_name" json:"employeeName"`
	LetterType    LetterType          `db:"letter_type" json:"letterType"`
	Status        LetterRequestStatus `db:"status" json:"status"`
	RequestDate   time.Time           `db:"request_date" json:"requestDate"`
	AdminNotes    string              `db:"admin_notes" json:"adminNotes"`
	ProcessedDate *time.Time          `db:"processed_date" json:"processedDate,omitempty"`
	ProcessedBy   *string             `db:"processed_by" json:"processedBy,omitempty"`
}

// LetterRequestFilter constrains listing queries. Zero values mean no constraint.
type LetterRequestFilter struct {
	EmployeeID string
	Status     LetterRequestStatus
	LetterType LetterType
	Limit      int
	Offset     int
}
