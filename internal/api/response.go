// internal/api/response.go
package api

import (
	"net/http"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/gin-gonic/gin"
)

const advisorKey = "advisor"

type errorBody struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
	Rows    interface{} `json:"rows,omitempty"`
	Emails  interface{} `json:"emails,omitempty"`
}

// respondError writes err with the status of its code. Details of server-side
// failures are logged, not returned.
func (h *Handler) respondError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	status := stdErr.HTTPStatus()

	body := errorBody{Error: stdErr.Message, Code: string(stdErr.Code)}
	if status < http.StatusInternalServerError {
		body.Details = stdErr.Details
		body.Rows = stdErr.Metadata["rows"]
		body.Emails = stdErr.Metadata["emails"]
	}

	fields := map[string]interface{}{
		"path":    c.FullPath(),
		"status":  status,
		"code":    string(stdErr.Code),
		"details": stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(stdErr.Message, fields)
	} else {
		h.logger.Warn(stdErr.Message, fields)
	}

	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into v and answers 400 on malformed JSON.
func (h *Handler) bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.respondError(c, errors.NewInvalidRequestError("Invalid request body", err.Error()))
		return false
	}
	return true
}

// advisor returns the advisor set by the auth middleware.
func advisor(c *gin.Context) *models.Advisor {
	if v, ok := c.Get(advisorKey); ok {
		if a, ok := v.(*models.Advisor); ok {
			return a
		}
	}
	return &models.Advisor{}
}
