// Package repository is the Postgres access layer for the advisor tables.
package repository

import (
	"database/sql"
	stderrors "errors"
	"time"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
)

// Repositories groups every table accessor over one connection pool.
type Repositories struct {
	Clients   *ClientRepository
	Prompts   *PromptRepository
	Responses *ResponseRepository
	Notes     *NoteRepository
	Tasks     *TaskRepository
	Documents *DocumentRepository
	Summaries *SummaryRepository
	Analyses  *AnalysisRepository
}

func New(db database.DBTX) *Repositories {
	return &Repositories{
		Clients:   NewClientRepository(db),
		Prompts:   NewPromptRepository(db),
		Responses: NewResponseRepository(db),
		Notes:     NewNoteRepository(db),
		Tasks:     NewTaskRepository(db),
		Documents: NewDocumentRepository(db),
		Summaries: NewSummaryRepository(db),
		Analyses:  NewAnalysisRepository(db),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func now() time.Time {
	return time.Now().UTC()
}

// queryError maps sql.ErrNoRows to RESOURCE_NOT_FOUND and anything else to a query failure.
func queryError(err error, resource, id, queryType string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewResourceNotFoundError(resource, id)
	}
	return errors.NewQueryExecutionFailedError(queryType, err)
}

// affected turns a zero-row UPDATE or DELETE into RESOURCE_NOT_FOUND.
func affected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("rows affected", err)
	}
	if n == 0 {
		return errors.NewResourceNotFoundError(resource, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
