// internal/repository/records.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/google/uuid"
)

// listQuery appends a LIMIT when limit is positive.
func listQuery(base string, clientID string, limit int) (string, []interface{}) {
	args := []interface{}{clientID}
	if limit > 0 {
		args = append(args, limit)
		return fmt.Sprintf("%s LIMIT $%d", base, len(args)), args
	}
	return base, args
}

// ==========================
// Notes
// ==========================

type NoteRepository struct {
	db database.DBTX
}

func NewNoteRepository(db database.DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *models.Note) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	ts := now()
	n.CreatedAt, n.UpdatedAt = ts, ts

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_notes (id, client_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)`, n.ID, n.ClientID, n.Content, ts)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("client_notes", err)
	}
	return nil
}

// ListByClient returns notes newest first.
func (r *NoteRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Note, error) {
	query, args := listQuery(`
		SELECT id, client_id, content, created_at, updated_at
		FROM client_notes
		WHERE client_id = $1
		ORDER BY created_at DESC`, clientID, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list notes", err)
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.ClientID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan note", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Update(ctx context.Context, clientID, id, content string) (*models.Note, error) {
	var n models.Note
	err := r.db.QueryRowContext(ctx, `
		UPDATE client_notes SET content = $1, updated_at = $2
		WHERE id = $3 AND client_id = $4
		RETURNING id, client_id, content, created_at, updated_at`,
		content, now(), id, clientID,
	).Scan(&n.ID, &n.ClientID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, queryError(err, "Note", id, "update note")
	}
	return &n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, clientID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM client_notes WHERE id = $1 AND client_id = $2`, id, clientID)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete note", err)
	}
	return affected(res, "Note", id)
}

// ==========================
// Tasks
// ==========================

type TaskRepository struct {
	db database.DBTX
}

func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.ClientID, &t.Title, &t.Status, &due, &t.Priority, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = models.TaskPriorityMedium
	}
	t.CreatedAt = now()

	var due sql.NullTime
	if t.DueDate != nil {
		due = sql.NullTime{Time: *t.DueDate, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_tasks (id, client_id, title, status, due_date, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ClientID, t.Title, t.Status, due, t.Priority, t.CreatedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("client_tasks", err)
	}
	return nil
}

// ListByClient returns tasks newest first.
func (r *TaskRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Task, error) {
	query, args := listQuery(`
		SELECT id, client_id, title, status, due_date, priority, created_at
		FROM client_tasks
		WHERE client_id = $1
		ORDER BY created_at DESC`, clientID, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list tasks", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan task", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, clientID, id string, status models.TaskStatus) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `
		UPDATE client_tasks SET status = $1
		WHERE id = $2 AND client_id = $3
		RETURNING id, client_id, title, status, due_date, priority, created_at`,
		status, id, clientID))
	if err != nil {
		return nil, queryError(err, "Task", id, "update task status")
	}
	return t, nil
}

// ==========================
// Documents
// ==========================

type DocumentRepository struct {
	db database.DBTX
}

func NewDocumentRepository(db database.DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.UploadedAt = now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_documents (id, client_id, name, file_url, file_type, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.ClientID, d.Name, d.FileURL, d.FileType, d.FileSize, d.UploadedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("client_documents", err)
	}
	return nil
}

// ListByClient returns documents, most recently uploaded first.
func (r *DocumentRepository) ListByClient(ctx context.Context, clientID string) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, name, file_url, file_type, file_size, uploaded_at
		FROM client_documents
		WHERE client_id = $1
		ORDER BY uploaded_at DESC`, clientID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list documents", err)
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ClientID, &d.Name, &d.FileURL, &d.FileType, &d.FileSize, &d.UploadedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan document", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, clientID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM client_documents WHERE id = $1 AND client_id = $2`, id, clientID)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete document", err)
	}
	return affected(res, "Document", id)
}

// ==========================
// Summaries
// ==========================

type SummaryRepository struct {
	db database.DBTX
}

func NewSummaryRepository(db database.DBTX) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Create(ctx context.Context, s *models.ClientSummary) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_summaries (id, client_id, summary, created_at)
		VALUES ($1, $2, $3, $4)`, s.ID, s.ClientID, s.Summary, s.CreatedAt)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("client_summaries", err)
	}
	return nil
}

func (r *SummaryRepository) Latest(ctx context.Context, clientID string) (*models.ClientSummary, error) {
	var s models.ClientSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, summary, created_at
		FROM client_summaries
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, clientID).Scan(&s.ID, &s.ClientID, &s.Summary, &s.CreatedAt)
	if err != nil {
		return nil, queryError(err, "Client summary", clientID, "latest summary")
	}
	return &s, nil
}
