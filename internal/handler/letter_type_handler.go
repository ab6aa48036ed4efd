package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/pkg/response"
)

// ListLetterTypes godoc
// @Summary List the letter type catalog
// @Tags LetterTypes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /letter-types [get]
func ListLetterTypes(c *gin.Context) {
	response.OK(c, models.LetterTypes())
}
