// internal/api/prompts.go
package api

import (
	"net/http"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/gin-gonic/gin"
)

type promptRequest struct {
	Category     string              `json:"category"`
	Prompt       string              `json:"prompt"`
	Description  string              `json:"description"`
	ResponseType models.ResponseType `json:"response_type"`
}

func (r *promptRequest) validate() error {
	if strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.Prompt) == "" {
		return errors.NewValidationError("category and prompt are required")
	}
	if r.ResponseType == "" {
		r.ResponseType = models.ResponseTypeEmail
	}
	if !r.ResponseType.Valid() {
		return errors.NewInvalidRequestError("Invalid response type", string(r.ResponseType))
	}
	return nil
}

func (h *Handler) ListPrompts(c *gin.Context) {
	prompts, err := h.deps.Prompts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompts)
}

func (h *Handler) CreatePrompt(c *gin.Context) {
	var req promptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(c, err)
		return
	}

	p := &models.Prompt{
		Category:     req.Category,
		Prompt:       req.Prompt,
		Description:  req.Description,
		ResponseType: req.ResponseType,
	}
	if err := h.deps.Prompts.Create(c.Request.Context(), p); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePrompt(c *gin.Context) {
	var req promptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.deps.Prompts.Update(c.Request.Context(), &models.Prompt{
		ID:           c.Param("id"),
		Category:     req.Category,
		Prompt:       req.Prompt,
		Description:  req.Description,
		ResponseType: req.ResponseType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
