package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/response"
)

type letterDocumentService interface {
	GetForRequest(ctx context.Context, requestID string, actor models.Actor) (*dto.LetterDocumentResponse, error)
	ResolveDownload(ctx context.Context, token string) (*dto.LetterDownload, error)
}

// LetterDocumentHandler serves issued letter PDFs.
type LetterDocumentHandler struct {
	service letterDocumentService
}

// NewLetterDocumentHandler constructs the handler.
func NewLetterDocumentHandler(service letterDocumentService) *LetterDocumentHandler {
	return &LetterDocumentHandler{service: service}
}

// Status godoc
// @Summary Get the issued letter for a request
// @Tags LetterDocuments
// @Produce json
// @Param id path string true "Letter request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /letter-requests/{id}/document [get]
func (h *LetterDocumentHandler) Status(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	doc, err := h.service.GetForRequest(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, doc)
}

// Download godoc
// @Summary Download an issued letter via signed token
// @Tags LetterDocuments
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /letter-documents/download/{token} [get]
func (h *LetterDocumentHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Body.Close()
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, -1, "application/pdf", download.Body, map[string]string{
		"Content-Disposition": "attachment; filename=\"" + download.Filename + "\"",
	})
}
