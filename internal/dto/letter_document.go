package dto

import (
	"io"
	"time"

	"github.com/noah-isme/hr-letter-api/internal/models"
)

// LetterDocumentResponse exposes issuance progress for a request.
type LetterDocumentResponse struct {
	ID         string                      `json:"id"`
	RequestID  string                      `json:"requestId"`
	Status     models.LetterDocumentStatus `json:"status"`
	ResultURL  *string                     `json:"resultUrl,omitempty"`
	Error      *string                     `json:"error,omitempty"`
	Attempts   int                         `json:"attempts"`
	CreatedAt  time.Time                   `json:"createdAt"`
	FinishedAt *time.Time                  `json:"finishedAt,omitempty"`
}

// NewLetterDocumentResponse converts a stored document.
func NewLetterDocumentResponse(doc *models.LetterDocument) LetterDocumentResponse {
	resultURL := doc.ResultURL
	if resultURL != nil && *resultURL == "" {
		resultURL = nil
	}
	return LetterDocumentResponse{
		ID:         doc.ID,
		RequestID:  doc.RequestID,
		Status:     doc.Status,
		ResultURL:  resultURL,
		Error:      doc.ErrorMessage,
		Attempts:   doc.Attempts,
		CreatedAt:  doc.CreatedAt,
		FinishedAt: doc.FinishedAt,
	}
}

// LetterDownload is an opened letter file ready to stream. The caller closes Body.
type LetterDownload struct {
	Filename string
	Body     io.ReadCloser
}
