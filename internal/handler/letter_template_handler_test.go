package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
)

type templateServiceMock struct {
	upsert    dto.UpsertLetterTemplateRequest
	deletedID string
	tpl       *models.LetterTemplate
	err       error
}

func (m *templateServiceMock) List(ctx context.Context, letterType string) ([]models.LetterTemplate, error) {
	if m.tpl == nil {
		return []models.LetterTemplate{}, m.err
	}
	return []models.LetterTemplate{*m.tpl}, m.err
}

func (m *templateServiceMock) Get(ctx context.Context, id string) (*models.LetterTemplate, error) {
	return m.tpl, m.err
}

func (m *templateServiceMock) Create(ctx context.Context, req dto.UpsertLetterTemplateRequest, actor models.Actor) (*models.LetterTemplate, error) {
	m.upsert = req
	return m.tpl, m.err
}

func (m *templateServiceMock) Update(ctx context.Context, id string, req dto.UpsertLetterTemplateRequest, actor models.Actor) (*models.LetterTemplate, error) {
	m.upsert = req
	return m.tpl, m.err
}

func (m *templateServiceMock) Delete(ctx context.Context, id string, actor models.Actor) error {
	m.deletedID = id
	return m.err
}

func TestLetterTemplateHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &templateServiceMock{tpl: &models.LetterTemplate{ID: "tpl-1", Name: "NOC", LetterType: models.LetterTypeNOC}}
	h := NewLetterTemplateHandler(svc)

	c, w := newGinContext(http.MethodPost, "/templates", []byte(`{"name":"NOC","letterType":"noc","content":"Dear {{employeeName}}"}`))
	withClaims(c, "A1", models.RoleAdmin)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "NOC", svc.upsert.Name)
	assert.Equal(t, "Dear {{employeeName}}", svc.upsert.Content)
}

func TestLetterTemplateHandlerConflictAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &templateServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "template already exists for letter type")}
	h := NewLetterTemplateHandler(svc)

	c, w := newGinContext(http.MethodPost, "/templates", []byte(`{"name":"NOC","letterType":"noc"}`))
	withClaims(c, "A1", models.RoleAdmin)
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	svc.err = nil
	c, w = newGinContext(http.MethodDelete, "/templates/tpl-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tpl-1"}}
	withClaims(c, "A1", models.RoleAdmin)
	h.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "tpl-1", svc.deletedID)
}
