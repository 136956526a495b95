// internal/api/clients.go
package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"
	"advisor-ai/internal/services/clients"

	"github.com/gin-gonic/gin"
)

const maxImportSize = 5 << 20

// ListClients searches the advisor's book. Without q it returns every client
// matching the status and risk filters.
func (h *Handler) ListClients(c *gin.Context) {
	filter := clients.SearchFilter{
		Query:       c.Query("q"),
		Status:      models.ClientStatus(c.Query("status")),
		RiskProfile: models.RiskProfile(c.Query("risk_profile")),
	}

	list, err := h.deps.Clients.Search(c.Request.Context(), advisor(c).ID, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateClient(c *gin.Context) {
	var input clients.CreateInput
	if !h.bindJSON(c, &input) {
		return
	}

	client, err := h.deps.Clients.Create(c.Request.Context(), advisor(c).ID, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// ImportClients accepts the CSV as a multipart "file" field or as a text/csv body.
func (h *Handler) ImportClients(c *gin.Context) {
	var r io.Reader
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			h.respondError(c, errors.NewInvalidRequestError("No file uploaded", err.Error()))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.respondError(c, errors.NewInvalidRequestError("Failed to read uploaded file", err.Error()))
			return
		}
		defer f.Close()
		r = f
	} else {
		r = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	}

	result, err := h.deps.Clients.Import(c.Request.Context(), advisor(c).ID, r)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetClient(c *gin.Context) {
	client, err := h.deps.Clients.Get(c.Request.Context(), advisor(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	var update models.ClientUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	client, err := h.deps.Clients.Update(c.Request.Context(), advisor(c).ID, c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.deps.Clients.Delete(c.Request.Context(), advisor(c).ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedClient loads the :id client for the signed-in advisor; records of
// other advisors' clients answer 404.
func (h *Handler) ownedClient(c *gin.Context) (*models.Client, bool) {
	client, err := h.deps.Clients.Get(c.Request.Context(), advisor(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return client, true
}

// limitParam reads ?limit=, zero meaning no limit.
func limitParam(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewInvalidRequestError("Invalid limit", raw)
	}
	return n, nil
}
