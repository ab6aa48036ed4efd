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

const letterRequestColumns = `id, employee_id, employee_name, letter_type, status, request_date, admin_notes, processed_date, processed_by`

// LetterRequestRepository persists letter requests.
type LetterRequestRepository struct {
	db *sqlx.DB
}

// NewLetterRequestRepository constructs the repository.
func NewLetterRequestRepository(db *sqlx.DB) *LetterRequestRepository {
	return &LetterRequestRepository{db: db}
}

// Create inserts a new letter request row with generated defaults.
func (r *LetterRequestRepository) Create(ctx context.Context, req *models.LetterRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.LetterRequestStatusPending
	}
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}
	const query = `INSERT INTO letter_requests (` + letterRequestColumns + `)
VALUES (:id, :employee_id, :employee_name, :letter_type, :status, :request_date, :admin_notes, :processed_date, :processed_by)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create letter request: %w", err)
	}
	return nil
}

// GetByID fetches a letter request. Returns sql.ErrNoRows when absent.
func (r *LetterRequestRepository) GetByID(ctx context.Context, id string) (*models.LetterRequest, error) {
	if !isRowID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + letterRequestColumns + ` FROM letter_requests WHERE id = $1`
	var req models.LetterRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns letter requests matching the filter, newest first with id as tiebreaker.
// No limit is applied unless filter.Limit is positive.
func (r *LetterRequestRepository) List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, error) {
	where, args := letterRequestWhere(filter)
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + letterRequestColumns + ` FROM letter_requests`)
	builder.WriteString(where)
	builder.WriteString(" ORDER BY request_date DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	requests := make([]models.LetterRequest, 0)
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list letter requests: %w", err)
	}
	return requests, nil
}

// Count returns how many letter requests match the filter, ignoring Limit and Offset.
func (r *LetterRequestRepository) Count(ctx context.Context, filter models.LetterRequestFilter) (int, error) {
	where, args := letterRequestWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM letter_requests`+where, args...); err != nil {
		return 0, fmt.Errorf("count letter requests: %w", err)
	}
	return total, nil
}

func letterRequestWhere(filter models.LetterRequestFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 5)
	conditions := make([]string, 0, 3)
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.LetterType != "" {
		args = append(args, filter.LetterType)
		conditions = append(conditions, fmt.Sprintf("letter_type = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// TransitionParams groups the columns written by a review decision.
type TransitionParams struct {
	ID             string
	ExpectedStatus models.LetterRequestStatus
	Status         models.LetterRequestStatus
	AdminNotes     *string
	ProcessedDate  time.Time
	ProcessedBy    string
}

// UpdateStatus applies a review decision only if the row still has ExpectedStatus.
// Returns sql.ErrNoRows when no row matched.
func (r *LetterRequestRepository) UpdateStatus(ctx context.Context, params TransitionParams) error {
	if !isRowID(params.ID) {
		return sql.ErrNoRows
	}
	if params.ExpectedStatus == "" {
		params.ExpectedStatus = models.LetterRequestStatusPending
	}
	setParts := []string{
		"status = :status",
		"processed_date = :processed_date",
		"processed_by = :processed_by",
	}
	if params.AdminNotes != nil {
		setParts = append(setParts, "admin_notes = :admin_notes")
	}
	query := fmt.Sprintf("UPDATE letter_requests SET %s WHERE id = :id AND status = :expected_status",
		strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":              params.ID,
		"expected_status": params.ExpectedStatus,
		"status":          params.Status,
		"processed_date":  params.ProcessedDate,
		"processed_by":    params.ProcessedBy,
		"admin_notes":     params.AdminNotes,
	})
	if err != nil {
		return fmt.Errorf("update letter request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check letter request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
