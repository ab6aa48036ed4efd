package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/hr-letter-api/internal/models"
)

// ErrDuplicateLetterType is returned when a template already exists for the letter type.
var ErrDuplicateLetterType = errors.New("template already exists for letter type")

const letterTemplateColumns = `id, name, letter_type, content, google_doc_url, last_updated`

// LetterTemplateRepository persists letter templates.
type LetterTemplateRepository struct {
	db *sqlx.DB
}

// NewLetterTemplateRepository constructs the repository.
func NewLetterTemplateRepository(db *sqlx.DB) *LetterTemplateRepository {
	return &LetterTemplateRepository{db: db}
}

// Create inserts a template.
func (r *LetterTemplateRepository) Create(ctx context.Context, tpl *models.LetterTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.LastUpdated.IsZero() {
		tpl.LastUpdated = time.Now().UTC()
	}
	const query = `INSERT INTO letter_templates (` + letterTemplateColumns + `)
VALUES (:id, :name, :letter_type, :content, :google_doc_url, :last_updated)`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return mapTemplateWriteError("create letter template", err)
	}
	return nil
}

// GetByID returns a template. Returns sql.ErrNoRows when absent.
func (r *LetterTemplateRepository) GetByID(ctx context.Context, id string) (*models.LetterTemplate, error) {
	if !isRowID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + letterTemplateColumns + ` FROM letter_templates WHERE id = $1`
	var tpl models.LetterTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// GetByLetterType returns the template for a letter type. Returns sql.ErrNoRows when absent.
func (r *LetterTemplateRepository) GetByLetterType(ctx context.Context, letterType models.LetterType) (*models.LetterTemplate, error) {
	const query = `SELECT ` + letterTemplateColumns + ` FROM letter_templates WHERE letter_type = $1`
	var tpl models.LetterTemplate
	if err := r.db.GetContext(ctx, &tpl, query, letterType); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// List returns templates ordered by name, optionally restricted to one letter type.
func (r *LetterTemplateRepository) List(ctx context.Context, letterType models.LetterType) ([]models.LetterTemplate, error) {
	query := `SELECT ` + letterTemplateColumns + ` FROM letter_templates`
	args := []interface{}{}
	if letterType != "" {
		query += ` WHERE letter_type = $1`
		args = append(args, letterType)
	}
	query += ` ORDER BY name ASC`

	templates := make([]models.LetterTemplate, 0)
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("list letter templates: %w", err)
	}
	return templates, nil
}

// Update replaces the mutable columns. Returns sql.ErrNoRows when the id is unknown.
func (r *LetterTemplateRepository) Update(ctx context.Context, tpl *models.LetterTemplate) error {
	if !isRowID(tpl.ID) {
		return sql.ErrNoRows
	}
	tpl.LastUpdated = time.Now().UTC()
	const query = `UPDATE letter_templates SET name = :name, letter_type = :letter_type, content = :content,
google_doc_url = :google_doc_url, last_updated = :last_updated WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, tpl)
	if err != nil {
		return mapTemplateWriteError("update letter template", err)
	}
	return expectAffected(result, "update letter template")
}

// Delete removes a template. Returns sql.ErrNoRows when the id is unknown.
func (r *LetterTemplateRepository) Delete(ctx context.Context, id string) error {
	if !isRowID(id) {
		return sql.ErrNoRows
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM letter_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete letter template: %w", err)
	}
	return expectAffected(result, "delete letter template")
}

func mapTemplateWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateLetterType
	}
	return fmt.Errorf("%s: %w", op, err)
}

func expectAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
