package models

import "time"

// LetterDocumentStatus captures the issuance job lifecycle.
type LetterDocumentStatus string

const (
	LetterDocumentStatusQueued     LetterDocumentStatus = "QUEUED"
	LetterDocumentStatusProcessing LetterDocumentStatus = "PROCESSING"
	LetterDocumentStatusFinished   LetterDocumentStatus = "FINISHED"
	LetterDocumentStatusFailed     LetterDocumentStatus = "FAILED"
)

// LetterDocument tracks the rendered PDF of an approved request.
type LetterDocument struct {
	ID           string               `db:"id" json:"id"`
	RequestID    string               `db:"request_id" json:"requestId"`
	Status       LetterDocumentStatus `db:"status" json:"status"`
	FilePath     *string              `db:"file_path" json:"-"`
	ResultURL    *string              `db:"result_url" json:"resultUrl,omitempty"`
	ErrorMessage *string              `db:"error_message" json:"errorMessage,omitempty"`
	Attempts     int                  `db:"attempts" json:"attempts"`
	CreatedAt    time.Time            `db:"created_at" json:"createdAt"`
	FinishedAt   *time.Time           `db:"finished_at" json:"finishedAt,omitempty"`
}
