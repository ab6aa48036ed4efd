package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hr-letter-api/internal/models"
)

const letterDocumentColumns = `id, request_id, status, file_path, result_url, error_message, attempts, created_at, finished_at`

// LetterDocumentRepository persists issued letter document metadata.
type LetterDocumentRepository struct {
	db *sqlx.DB
}

// NewLetterDocumentRepository constructs the repository.
func NewLetterDocumentRepository(db *sqlx.DB) *LetterDocumentRepository {
	return &LetterDocumentRepository{db: db}
}

// Create inserts a document row, or resets an existing row for the same request back to QUEUED.
// doc.ID is replaced with the stored id.
func (r *LetterDocumentRepository) Create(ctx context.Context, doc *models.LetterDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = models.LetterDocumentStatusQueued
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO letter_documents (` + letterDocumentColumns + `)
VALUES (:id, :request_id, :status, :file_path, :result_url, :error_message, :attempts, :created_at, :finished_at)
ON CONFLICT (request_id) DO UPDATE SET status = EXCLUDED.status, file_path = NULL, result_url = NULL,
error_message = NULL, attempts = 0, created_at = EXCLUDED.created_at, finished_at = NULL
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("create letter document: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&doc.ID); err != nil {
			return fmt.Errorf("scan letter document id: %w", err)
		}
	}
	return rows.Err()
}

// GetByID returns a document row. Returns sql.ErrNoRows when absent.
func (r *LetterDocumentRepository) GetByID(ctx context.Context, id string) (*models.LetterDocument, error) {
	if !isRowID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + letterDocumentColumns + ` FROM letter_documents WHERE id = $1`
	var doc models.LetterDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByRequestID returns the document for a request. Returns sql.ErrNoRows when absent.
func (r *LetterDocumentRepository) GetByRequestID(ctx context.Context, requestID string) (*models.LetterDocument, error) {
	if !isRowID(requestID) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + letterDocumentColumns + ` FROM letter_documents WHERE request_id = $1`
	var doc models.LetterDocument
	if err := r.db.GetContext(ctx, &doc, query, requestID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateLetterDocumentParams defines the mutable fields.
type UpdateLetterDocumentParams struct {
	Status       *models.LetterDocumentStatus
	FilePath     *string
	ResultURL    *string
	ErrorMessage *string
	Attempts     *int
	FinishedAt   *time.Time
}

// Update persists the provided changes for a document row.
func (r *LetterDocumentRepository) Update(ctx context.Context, id string, params UpdateLetterDocumentParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.FilePath != nil {
		add("file_path", *params.FilePath)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.Attempts != nil {
		add("attempts", *params.Attempts)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE letter_documents SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update letter document: %w", err)
	}
	return nil
}

// ListQueued fetches queued documents oldest first (used for cold start recovery).
func (r *LetterDocumentRepository) ListQueued(ctx context.Context, limit int) ([]models.LetterDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + letterDocumentColumns + ` FROM letter_documents
WHERE status IN ('QUEUED', 'PROCESSING') ORDER BY created_at ASC LIMIT $1`
	docs := make([]models.LetterDocument, 0)
	if err := r.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued letter documents: %w", err)
	}
	return docs, nil
}
