package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/response"
)

type letterTemplateService interface {
	List(ctx context.Context, letterType string) ([]models.LetterTemplate, error)
	Get(ctx context.Context, id string) (*models.LetterTemplate, error)
	Create(ctx context.Context, req dto.UpsertLetterTemplateRequest, actor models.Actor) (*models.LetterTemplate, error)
	Update(ctx context.Context, id string, req dto.UpsertLetterTemplateRequest, actor models.Actor) (*models.LetterTemplate, error)
	Delete(ctx context.Context, id string, actor models.Actor) error
}

// LetterTemplateHandler manages letter templates.
type LetterTemplateHandler struct {
	service letterTemplateService
}

// NewLetterTemplateHandler constructs the handler.
func NewLetterTemplateHandler(service letterTemplateService) *LetterTemplateHandler {
	return &LetterTemplateHandler{service: service}
}

// List godoc
// @Summary List letter templates
// @Tags Templates
// @Produce json
// @Param letterType query string false "Only the template for this letter type"
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *LetterTemplateHandler) List(c *gin.Context) {
	templates, err := h.service.List(c.Request.Context(), c.Query("letterType"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, templates)
}

// Get godoc
// @Summary Get a letter template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [get]
func (h *LetterTemplateHandler) Get(c *gin.Context) {
	tpl, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tpl)
}

// Create godoc
// @Summary Create a letter template
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body dto.UpsertLetterTemplateRequest true "Template"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /templates [post]
func (h *LetterTemplateHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpsertLetterTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid template payload"))
		return
	}
	tpl, err := h.service.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// Update godoc
// @Summary Replace a letter template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.UpsertLetterTemplateRequest true "Template"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [put]
func (h *LetterTemplateHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpsertLetterTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid template payload"))
		return
	}
	tpl, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tpl)
}

// Delete godoc
// @Summary Delete a letter template
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Router /templates/{id} [delete]
func (h *LetterTemplateHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
