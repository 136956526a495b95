// internal/api/records.go
package api

import (
	"net/http"
	"strings"
	"time"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"
	analyzeemail "advisor-ai/internal/services/analyze-email"
	generatesummary "advisor-ai/internal/services/generate-summary"
	"advisor-ai/internal/services/responses"

	"github.com/gin-gonic/gin"
)

// ==========================
// Notes
// ==========================

type noteRequest struct {
	Content string `json:"content"`
}

func (r noteRequest) validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return errors.NewValidationError("content is required")
	}
	return nil
}

func (h *Handler) ListNotes(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	limit, err := limitParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	notes, err := h.deps.Notes.ListByClient(c.Request.Context(), client.ID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) CreateNote(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	var req noteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(c, err)
		return
	}

	note := &models.Note{ClientID: client.ID, Content: req.Content}
	if err := h.deps.Notes.Create(c.Request.Context(), note); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) UpdateNote(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	var req noteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(c, err)
		return
	}

	note, err := h.deps.Notes.Update(c.Request.Context(), client.ID, c.Param("noteId"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) DeleteNote(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	if err := h.deps.Notes.Delete(c.Request.Context(), client.ID, c.Param("noteId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==========================
// Tasks
// ==========================

type taskRequest struct {
	Title    string              `json:"title"`
	DueDate  *time.Time          `json:"due_date,omitempty"`
	Priority models.TaskPriority `json:"priority"`
}

type taskStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	limit, err := limitParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	tasks, err := h.deps.Tasks.ListByClient(c.Request.Context(), client.ID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	var req taskRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.respondError(c, errors.NewValidationError("title is required"))
		return
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if !req.Priority.Valid() {
		h.respondError(c, errors.NewInvalidRequestError("Invalid task priority", string(req.Priority)))
		return
	}

	task := &models.Task{
		ClientID: client.ID,
		Title:    req.Title,
		Status:   models.TaskStatusPending,
		DueDate:  req.DueDate,
		Priority: req.Priority,
	}
	if err := h.deps.Tasks.Create(c.Request.Context(), task); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	var req taskStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.Status.Valid() {
		h.respondError(c, errors.NewInvalidRequestError("Invalid task status", string(req.Status)))
		return
	}

	task, err := h.deps.Tasks.UpdateStatus(c.Request.Context(), client.ID, c.Param("taskId"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ==========================
// Documents
// ==========================

type documentRequest struct {
	Name     string `json:"name"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

func (h *Handler) ListDocuments(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}

	docs, err := h.deps.Documents.ListByClient(c.Request.Context(), client.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// CreateDocument records the metadata of a file already uploaded to storage.
func (h *Handler) CreateDocument(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	var req documentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.FileURL) == "" {
		h.respondError(c, errors.NewValidationError("name and file_url are required"))
		return
	}

	doc := &models.Document{
		ClientID: client.ID,
		Name:     req.Name,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileSize: req.FileSize,
	}
	if err := h.deps.Documents.Create(c.Request.Context(), doc); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	if err := h.deps.Documents.Delete(c.Request.Context(), client.ID, c.Param("documentId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==========================
// Responses
// ==========================

type responseStatusRequest struct {
	Status models.ResponseStatus `json:"status"`
}

func (h *Handler) ListResponses(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	list, err := h.deps.Responses.List(c.Request.Context(), advisor(c).ID, c.Param("id"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) SaveResponse(c *gin.Context) {
	var input responses.SaveInput
	if !h.bindJSON(c, &input) {
		return
	}
	input.ClientID = c.Param("id")

	resp, err := h.deps.Responses.Save(c.Request.Context(), advisor(c).ID, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdateResponseStatus(c *gin.Context) {
	var req responseStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.deps.Responses.UpdateStatus(c.Request.Context(), advisor(c).ID, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SendResponse(c *gin.Context) {
	var input responses.SendInput
	if c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &input) {
			return
		}
	}

	out, err := h.deps.Responses.Send(c.Request.Context(), advisor(c).ID, c.Param("id"), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ==========================
// Summaries
// ==========================

// CreateSummary generates a summary from the stored records of the client and keeps it.
func (h *Handler) CreateSummary(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	notes, err := h.deps.Notes.ListByClient(ctx, client.ID, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resps, err := h.deps.Responses.List(ctx, advisor(c).ID, client.ID, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	tasks, err := h.deps.Tasks.ListByClient(ctx, client.ID, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out, err := h.deps.Summarize.Execute(ctx, summaryInput(client, notes, resps, tasks))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) LatestSummary(c *gin.Context) {
	client, ok := h.ownedClient(c)
	if !ok {
		return
	}

	summary, err := h.deps.Summaries.Latest(c.Request.Context(), client.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func summaryInput(client *models.Client, notes []*models.Note, resps []*models.Response, tasks []*models.Task) *generatesummary.Input {
	portfolio := client.PortfolioValue
	in := &generatesummary.Input{
		Client: &generatesummary.Client{
			ID:              client.ID,
			Name:            client.Name,
			Surname:         client.Surname,
			Email:           client.Email,
			Phone:           client.Phone,
			Occupation:      client.Occupation,
			PortfolioValue:  &portfolio,
			RiskProfile:     string(client.RiskProfile),
			RiskTolerance:   client.RiskTolerance,
			AnnualIncome:    client.AnnualIncome,
			InvestmentGoals: client.InvestmentGoals,
			Status:          string(client.Status),
		},
		Persist: true,
	}
	if !client.LastContact.IsZero() {
		in.Client.LastContact = client.LastContact.Format(time.RFC3339)
	}

	for _, n := range notes {
		in.Notes = append(in.Notes, generatesummary.NoteInput{Content: n.Content, CreatedAt: n.CreatedAt})
	}
	for _, r := range resps {
		in.Responses = append(in.Responses, generatesummary.ResponseInput{
			Summary:   r.Summary,
			Content:   r.Content,
			Category:  r.Category,
			Status:    string(r.Status),
			CreatedAt: r.CreatedAt,
		})
	}
	for _, t := range tasks {
		in.Tasks = append(in.Tasks, generatesummary.TaskInput{
			Title:     t.Title,
			Status:    string(t.Status),
			DueDate:   t.DueDate,
			Priority:  string(t.Priority),
			CreatedAt: t.CreatedAt,
		})
	}
	return in
}

// ==========================
// Email analyses
// ==========================

type analyzeRequest struct {
	EmailContent string `json:"emailContent"`
}

// AnalyzeEmail runs the full intake analysis for the signed-in advisor.
func (h *Handler) AnalyzeEmail(c *gin.Context) {
	var req analyzeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	out, err := h.deps.Analyze.Execute(c.Request.Context(), &analyzeemail.Input{
		EmailContent: req.EmailContent,
		UserID:       advisor(c).ID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if out.AnalysisID != "" {
		status = http.StatusCreated
	}
	c.JSON(status, out)
}

func (h *Handler) GetEmailAnalysis(c *gin.Context) {
	ctx := c.Request.Context()
	record, err := h.deps.Analyses.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.deps.Clients.Get(ctx, advisor(c).ID, record.ClientID); err != nil {
		if stdErr, ok := errors.As(err); ok && stdErr.Code == errors.ErrCodeResourceNotFound {
			err = errors.NewResourceNotFoundError("Email analysis", record.ID)
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
