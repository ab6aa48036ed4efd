package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/models"
)

func TestAuditRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnResult(sqlmock.NewResult(1, 1))

	actor := "A1"
	resourceID := "req-1"
	entry := &models.AuditLog{
		ActorID:    &actor,
		Action:     models.AuditActionLetterRequestTransition,
		Resource:   models.AuditResourceLetterRequest,
		ResourceID: &resourceID,
		NewValues:  []byte(`{"status":"approved"}`),
	}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	mock.ExpectQuery(`SELECT .* FROM audit_logs WHERE resource = \$1 AND resource_id = \$2`).
		WithArgs("letter_request", "req-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "action", "resource", "resource_id", "old_values", "new_values", "ip_address", "user_agent", "created_at"}).
			AddRow(entry.ID, "A1", entry.Action, entry.Resource, "req-1", nil, []byte(`{"status":"approved"}`), "", "", time.Now()))

	logs, err := repo.ListByResource(context.Background(), models.AuditResourceLetterRequest, "req-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionLetterRequestTransition, logs[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}
