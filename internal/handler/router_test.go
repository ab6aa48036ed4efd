package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/service"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
)

type documentServiceMock struct {
	status   *dto.LetterDocumentResponse
	download *dto.LetterDownload
	err      error
}

func (m *documentServiceMock) GetForRequest(ctx context.Context, requestID string, actor models.Actor) (*dto.LetterDocumentResponse, error) {
	return m.status, m.err
}

func (m *documentServiceMock) ResolveDownload(ctx context.Context, token string) (*dto.LetterDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	return m.download, m.err
}

type pingStub struct{ err error }

func (p pingStub) PingContext(ctx context.Context) error { return p.err }

func newTestEngine(t *testing.T, db pinger) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(service.TokenConfig{Secret: "router-secret", Issuer: "hr-letter-portal"})
	docs := &documentServiceMock{
		status:   &dto.LetterDocumentResponse{ID: "doc-1", RequestID: "req-1", Status: models.LetterDocumentStatusFinished},
		download: &dto.LetterDownload{Filename: "req-1.pdf", Body: io.NopCloser(strings.NewReader("%PDF-1.3"))},
	}
	r := gin.New()
	Routes{
		LetterRequests: NewLetterRequestHandler(&letterRequestServiceMock{record: sampleRecord(), records: []models.LetterRequest{}}, nil),
		Templates:      NewLetterTemplateHandler(nil),
		Documents:      NewLetterDocumentHandler(docs),
		Metrics:        NewMetricsHandler(service.NewMetricsService(), db),
		Tokens:         tokens,
	}.Register(r, "/api")
	return r, tokens
}

func call(t *testing.T, r http.Handler, tokens *service.TokenService, method, path, subject string, role models.UserRole, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		token, _, err := tokens.Mint(subject, "Test", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesEnforceRoles(t *testing.T) {
	r, tokens := newTestEngine(t, nil)

	assert.Equal(t, http.StatusUnauthorized, call(t, r, tokens, http.MethodGet, "/api/letter-requests", "", "", "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, r, tokens, http.MethodGet, "/api/letter-requests", "E100", models.RoleEmployee, "").Code)
	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodGet, "/api/letter-requests", "A1", models.RoleAdmin, "").Code)

	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodGet, "/api/letter-requests/employee/E100", "E100", models.RoleEmployee, "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, r, tokens, http.MethodGet, "/api/letter-requests/employee/E200", "E100", models.RoleEmployee, "").Code)

	assert.Equal(t, http.StatusForbidden, call(t, r, tokens, http.MethodPatch, "/api/letter-requests/req-1", "E100", models.RoleEmployee, `{"status":"approved"}`).Code)
	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodPatch, "/api/letter-requests/req-1", "A1", models.RoleAdmin, `{"status":"approved"}`).Code)

	create := `{"employeeId":"E100","employeeName":"Asha","letterType":"noc"}`
	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodPost, "/api/letter-requests", "E100", models.RoleEmployee, create).Code)

	assert.Equal(t, http.StatusForbidden, call(t, r, tokens, http.MethodGet, "/api/templates", "E100", models.RoleEmployee, "").Code)

	w := call(t, r, tokens, http.MethodGet, "/api/letter-types", "E100", models.RoleEmployee, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "visa_letter")
}

func TestRoutesDocuments(t *testing.T) {
	r, tokens := newTestEngine(t, nil)

	w := call(t, r, tokens, http.MethodGet, "/api/letter-requests/req-1/document", "E100", models.RoleEmployee, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FINISHED")

	w = call(t, r, tokens, http.MethodGet, "/api/letter-documents/download/good", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "req-1.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())

	assert.Equal(t, http.StatusForbidden, call(t, r, tokens, http.MethodGet, "/api/letter-documents/download/bad", "", "", "").Code)
}

func TestRoutesHealthEndpoints(t *testing.T) {
	r, tokens := newTestEngine(t, pingStub{})
	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodGet, "/health", "", "", "").Code)
	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodGet, "/ready", "", "", "").Code)
	assert.Equal(t, http.StatusOK, call(t, r, tokens, http.MethodGet, "/metrics", "", "", "").Code)

	down, _ := newTestEngine(t, pingStub{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, call(t, down, tokens, http.MethodGet, "/ready", "", "", "").Code)
}
