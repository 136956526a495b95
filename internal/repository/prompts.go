// internal/repository/prompts.go
package repository

import (
	"context"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/google/uuid"
)

const promptColumns = `id, category, prompt, description, response_type, created_at, updated_at`

type PromptRepository struct {
	db database.DBTX
}

func NewPromptRepository(db database.DBTX) *PromptRepository {
	return &PromptRepository{db: db}
}

func scanPrompt(row rowScanner) (*models.Prompt, error) {
	var p models.Prompt
	if err := row.Scan(&p.ID, &p.Category, &p.Prompt, &p.Description, &p.ResponseType, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all prompts ordered by category.
func (r *PromptRepository) List(ctx context.Context) ([]*models.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+promptColumns+` FROM prompts ORDER BY category`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list prompts", err)
	}
	defer rows.Close()

	prompts := []*models.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan prompt", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list prompts", err)
	}
	return prompts, nil
}

func (r *PromptRepository) Get(ctx context.Context, id string) (*models.Prompt, error) {
	p, err := scanPrompt(r.db.QueryRowContext(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id))
	if err != nil {
		return nil, queryError(err, "Prompt", id, "get prompt")
	}
	return p, nil
}

func (r *PromptRepository) Create(ctx context.Context, p *models.Prompt) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prompts (`+promptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		p.ID, p.Category, p.Prompt, p.Description, p.ResponseType, ts,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("prompts", err)
	}
	return nil
}

// Update replaces the editable fields of prompt p.ID.
func (r *PromptRepository) Update(ctx context.Context, p *models.Prompt) (*models.Prompt, error) {
	updated, err := scanPrompt(r.db.QueryRowContext(ctx, `
		UPDATE prompts
		SET category = $1, prompt = $2, description = $3, response_type = $4, updated_at = $5
		WHERE id = $6
		RETURNING `+promptColumns,
		p.Category, p.Prompt, p.Description, p.ResponseType, now(), p.ID,
	))
	if err != nil {
		return nil, queryError(err, "Prompt", p.ID, "update prompt")
	}
	return updated, nil
}

// Upsert keys prompts by (category, response_type) and reports whether a row was inserted.
func (r *PromptRepository) Upsert(ctx context.Context, p *models.Prompt) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	ts := now()

	var inserted bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO prompts (`+promptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (category, response_type) DO UPDATE
		SET prompt = EXCLUDED.prompt, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)`,
		p.ID, p.Category, p.Prompt, p.Description, p.ResponseType, ts,
	).Scan(&inserted)
	if err != nil {
		return false, errors.NewDatabaseInsertFailedError("prompts", err)
	}
	return inserted, nil
}
