// internal/api/generate.go
package api

import (
	"net/http"

	"advisor-ai/internal/common/observability"
	analysisresponse "advisor-ai/internal/services/analysis-response"
	categorizeemail "advisor-ai/internal/services/categorize-email"
	generateresponse "advisor-ai/internal/services/generate-response"
	generatesummary "advisor-ai/internal/services/generate-summary"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

func (h *Handler) GenerateResponse(c *gin.Context) {
	var input generateresponse.Input
	if !h.bindJSON(c, &input) {
		return
	}

	ctx, span := observability.StartSpan(c.Request.Context(), "advisor.generate-response",
		attribute.String("response_type", string(input.ResponseType)))
	defer span.End()

	out, err := h.deps.Generate.Execute(ctx, &input)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err)
		return
	}

	h.deps.Observability.RecordGeneration(ctx, string(input.ResponseType), out.Category)
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GenerateSummary(c *gin.Context) {
	var input generatesummary.Input
	if !h.bindJSON(c, &input) {
		return
	}
	// Summaries from this endpoint are not stored; POST /api/clients/:id/summary does that.
	input.Persist = false

	out, err := h.deps.Summarize.Execute(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": out.Summary})
}

// CategorizeEmail picks one of the caller's categories for an email.
func (h *Handler) CategorizeEmail(c *gin.Context) {
	var input categorizeemail.Input
	if !h.bindJSON(c, &input) {
		return
	}

	out, err := h.deps.Categorize.Execute(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) PopulateAnalysisResponse(c *gin.Context) {
	var input analysisresponse.Input
	if !h.bindJSON(c, &input) {
		return
	}
	input.UserID = advisor(c).ID

	out, err := h.deps.AnalysisResponse.Execute(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
