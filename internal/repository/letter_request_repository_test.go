package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/models"
)

const (
	knownRequestID   = "7d9f3c1e-2b4a-4c8e-9f10-3a5b6c7d8e9f"
	missingRequestID = "0b8e6f52-9c1d-4a3e-8f7b-2d4c6e8a0b1c"
)

// Ids that can never match a UUID primary key, e.g. ObjectIds from the old portal.
var foreignIDs = []string{"unknown", "64f1c2a9e4b0a1b2c3d4e5f6", "req-1"}

var letterRequestCols = []string{"id", "employee_id", "employee_name", "letter_type", "status", "request_date", "admin_notes", "processed_date", "processed_by"}

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLetterRequestRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLetterRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO letter_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.LetterRequest{
		EmployeeID:   "E100",
		EmployeeName: "Asha",
		LetterType:   models.LetterTypeVisaLetter,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.LetterRequestStatusPending, req.Status)
	assert.WithinDuration(t, time.Now(), req.RequestDate, time.Second)

	rows := sqlmock.NewRows(letterRequestCols).
		AddRow(req.ID, "E100", "Asha", "visa_letter", "pending", req.RequestDate, "", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, employee_name")).
		WithArgs(req.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, found.ID)
	assert.Equal(t, models.LetterTypeVisaLetter, found.LetterType)
	assert.Nil(t, found.ProcessedDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterRequestRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM letter_requests WHERE id").
		WithArgs(missingRequestID).
		WillReturnError(sql.ErrNoRows)

	_, err := NewLetterRequestRepository(db).GetByID(context.Background(), missingRequestID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterRequestRepositoryForeignIDsAreAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLetterRequestRepository(db)
	for _, id := range foreignIDs {
		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, sql.ErrNoRows, id)

		err = repo.UpdateStatus(context.Background(), TransitionParams{
			ID:            id,
			Status:        models.LetterRequestStatusApproved,
			ProcessedDate: time.Now(),
			ProcessedBy:   "A1",
		})
		assert.ErrorIs(t, err, sql.ErrNoRows, id)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterRequestRepositoryListOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(letterRequestCols).
		AddRow("req-2", "E100", "Asha", "noc", "pending", now, "", nil, nil).
		AddRow("req-1", "E100", "Asha", "visa_letter", "approved", now.Add(-time.Hour), "ok", now, "A1")
	mock.ExpectQuery(`SELECT .* FROM letter_requests WHERE employee_id = \$1 AND status = \$2 ORDER BY request_date DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("E100", "pending", 10, 5).
		WillReturnRows(rows)

	list, err := NewLetterRequestRepository(db).List(context.Background(), models.LetterRequestFilter{
		EmployeeID: "E100",
		Status:     models.LetterRequestStatusPending,
		Limit:      10,
		Offset:     5,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "req-2", list[0].ID)
	require.NotNil(t, list[1].ProcessedBy)
	assert.Equal(t, "A1", *list[1].ProcessedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterRequestRepositoryListWithoutFiltersHasNoLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM letter_requests ORDER BY request_date DESC, id DESC$`).
		WillReturnRows(sqlmock.NewRows(letterRequestCols))

	list, err := NewLetterRequestRepository(db).List(context.Background(), models.LetterRequestFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterRequestRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLetterRequestRepository(db)
	notes := "looks good"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE letter_requests SET status = ?, processed_date = ?, processed_by = ?, admin_notes = ? WHERE id = ? AND status = ?")).
		WithArgs("approved", sqlmock.AnyArg(), "A1", "looks good", knownRequestID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.UpdateStatus(context.Background(), TransitionParams{
		ID:            knownRequestID,
		Status:        models.LetterRequestStatusApproved,
		AdminNotes:    &notes,
		ProcessedDate: time.Now(),
		ProcessedBy:   "A1",
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE letter_requests SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), TransitionParams{
		ID:            knownRequestID,
		Status:        models.LetterRequestStatusRejected,
		ProcessedDate: time.Now(),
		ProcessedBy:   "A2",
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterRequestRepositoryCountIgnoresPaging(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM letter_requests WHERE status = \$1 AND letter_type = \$2$`).
		WithArgs("approved", "noc").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	total, err := NewLetterRequestRepository(db).Count(context.Background(), models.LetterRequestFilter{
		Status:     models.LetterRequestStatusApproved,
		LetterType: models.LetterTypeNOC,
		Limit:      5,
		Offset:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, 17, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
