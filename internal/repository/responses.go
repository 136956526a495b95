// internal/repository/responses.go
package repository

import (
	"context"
	"database/sql"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const responseColumns = `id, client_id, summary, content, status, category, missing_info, response_type, full_query, created_at`

type ResponseRepository struct {
	db database.DBTX
}

func NewResponseRepository(db database.DBTX) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func scanResponse(row rowScanner) (*models.Response, error) {
	var (
		resp        models.Response
		missingInfo pq.StringArray
		fullQuery   []byte
		category    sql.NullString
	)
	err := row.Scan(&resp.ID, &resp.ClientID, &resp.Summary, &resp.Content, &resp.Status, &category,
		&missingInfo, &resp.ResponseType, &fullQuery, &resp.CreatedAt)
	if err != nil {
		return nil, err
	}
	resp.Category = category.String
	resp.MissingInfo = []string(missingInfo)
	if resp.MissingInfo == nil {
		resp.MissingInfo = []string{}
	}
	if len(fullQuery) > 0 {
		resp.FullQuery = fullQuery
	}
	return &resp, nil
}

func (r *ResponseRepository) Create(ctx context.Context, resp *models.Response) error {
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	if resp.Status == "" {
		resp.Status = models.ResponseStatusPending
	}
	resp.CreatedAt = now()

	var fullQuery interface{}
	if len(resp.FullQuery) > 0 {
		fullQuery = []byte(resp.FullQuery)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO responses (`+responseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		resp.ID, resp.ClientID, resp.Summary, resp.Content, resp.Status, nullString(resp.Category),
		pq.Array(resp.MissingInfo), resp.ResponseType, fullQuery, resp.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("responses", err)
	}
	return nil
}

func (r *ResponseRepository) Get(ctx context.Context, id string) (*models.Response, error) {
	resp, err := scanResponse(r.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = $1`, id))
	if err != nil {
		return nil, queryError(err, "Response", id, "get response")
	}
	return resp, nil
}

// ListByClient returns the client's responses, newest first. limit <= 0 means all.
func (r *ResponseRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses WHERE client_id = $1 ORDER BY created_at DESC`
	args := []interface{}{clientID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list responses", err)
	}
	defer rows.Close()

	out := []*models.Response{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan response", err)
		}
		out = append(out, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list responses", err)
	}
	return out, nil
}

func (r *ResponseRepository) UpdateStatus(ctx context.Context, id string, status models.ResponseStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE responses SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update response status", err)
	}
	return affected(res, "Response", id)
}
