package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/response"
)

type letterRequestService interface {
	Create(ctx context.Context, req dto.CreateLetterRequest, actor models.Actor) (*models.LetterRequest, error)
	ListAll(ctx context.Context, query dto.LetterRequestQuery) ([]models.LetterRequest, error)
	CountAll(ctx context.Context, query dto.LetterRequestQuery) (int, error)
	ListByEmployee(ctx context.Context, employeeID string, actor models.Actor) ([]models.LetterRequest, error)
	Get(ctx context.Context, id string, actor models.Actor) (*models.LetterRequest, error)
	Transition(ctx context.Context, id string, req dto.TransitionLetterRequest, actor models.Actor) (*models.LetterRequest, error)
}

type letterRegisterExporter interface {
	Export(ctx context.Context, query dto.LetterRequestQuery, format string) (*dto.ExportResult, error)
}

// LetterRequestHandler exposes the letter request lifecycle.
type LetterRequestHandler struct {
	service  letterRequestService
	exporter letterRegisterExporter
}

// NewLetterRequestHandler constructs the handler. exporter may be nil.
func NewLetterRequestHandler(service letterRequestService, exporter letterRegisterExporter) *LetterRequestHandler {
	return &LetterRequestHandler{service: service, exporter: exporter}
}

// Create godoc
// @Summary File a letter request
// @Tags LetterRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateLetterRequest true "Letter request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /letter-requests [post]
func (h *LetterRequestHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid letter request payload"))
		return
	}
	record, err := h.service.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// List godoc
// @Summary List all letter requests, newest first
// @Tags LetterRequests
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param letterType query string false "Letter type code or label"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /letter-requests [get]
func (h *LetterRequestHandler) List(c *gin.Context) {
	query, err := parseLetterRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.ListAll(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	var page *response.Pagination
	if query.Limit > 0 || query.Offset > 0 {
		total, err := h.service.CountAll(c.Request.Context(), query)
		if err != nil {
			response.Error(c, err)
			return
		}
		page = &response.Pagination{Limit: query.Limit, Offset: query.Offset, TotalCount: total}
	}
	response.JSON(c, http.StatusOK, records, page)
}

// ListByEmployee godoc
// @Summary List one employee's letter requests
// @Tags LetterRequests
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /letter-requests/employee/{employeeId} [get]
func (h *LetterRequestHandler) ListByEmployee(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	records, err := h.service.ListByEmployee(c.Request.Context(), c.Param("employeeId"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}

// Get godoc
// @Summary Get a letter request
// @Tags LetterRequests
// @Produce json
// @Param id path string true "Letter request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /letter-requests/{id} [get]
func (h *LetterRequestHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Transition godoc
// @Summary Approve or reject a pending letter request
// @Tags LetterRequests
// @Accept json
// @Produce json
// @Param id path string true "Letter request ID"
// @Param payload body dto.TransitionLetterRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /letter-requests/{id} [patch]
func (h *LetterRequestHandler) Transition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TransitionLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid transition payload"))
		return
	}
	record, err := h.service.Transition(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Export godoc
// @Summary Export the letter request register
// @Tags LetterRequests
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Param letterType query string false "Letter type filter"
// @Success 200 {file} file
// @Router /letter-requests/export [get]
func (h *LetterRequestHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	query, err := parseLetterRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

func parseLetterRequestQuery(c *gin.Context) (dto.LetterRequestQuery, error) {
	query := dto.LetterRequestQuery{
		Status:     models.LetterRequestStatus(strings.TrimSpace(c.Query("status"))),
		LetterType: models.LetterType(strings.TrimSpace(c.Query("letterType"))),
	}
	var err error
	if query.Limit, err = queryInt(c, "limit"); err != nil {
		return query, err
	}
	if query.Offset, err = queryInt(c, "offset"); err != nil {
		return query, err
	}
	return query, nil
}
