package service

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(table export.Table) ([]byte, error) {
	return nil, errors.New("render failed")
}

func seedRegister(t *testing.T) *letterRequestRepoStub {
	t.Helper()
	repo := newLetterRequestRepoStub()
	approvedRequest(repo)
	require.NoError(t, repo.Create(context.Background(), &models.LetterRequest{
		ID:           "req-pending",
		EmployeeID:   "E200",
		EmployeeName: "Ravi",
		LetterType:   models.LetterTypeNOC,
		Status:       models.LetterRequestStatusPending,
		RequestDate:  time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	}))
	return repo
}

func TestLetterExportServiceCSV(t *testing.T) {
	svc := NewLetterExportService(seedRegister(t), nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }

	result, err := svc.Export(context.Background(), dto.LetterRequestQuery{}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "letter-requests-20260310-080000.csv", result.Filename)

	records, err := csv.NewReader(strings.NewReader(string(result.Body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, registerColumns, records[0])
	assert.Equal(t, "req-pending", records[1][0])
	assert.Equal(t, "", records[1][6])
	assert.Equal(t, "VISA Letter", records[2][3])
	assert.Equal(t, "A1", records[2][7])
	assert.Equal(t, "sent to consulate", records[2][8])
}

func TestLetterExportServiceFilteredPDF(t *testing.T) {
	svc := NewLetterExportService(seedRegister(t), nil, nil, nil)

	result, err := svc.Export(context.Background(), dto.LetterRequestQuery{Status: models.LetterRequestStatusApproved}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF"))
}

func TestLetterExportServiceErrors(t *testing.T) {
	svc := NewLetterExportService(seedRegister(t), nil, failingRenderer{}, nil)

	_, err := svc.Export(context.Background(), dto.LetterRequestQuery{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), dto.LetterRequestQuery{Status: "archived"}, "csv")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), dto.LetterRequestQuery{}, "pdf")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
