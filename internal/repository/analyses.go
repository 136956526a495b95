// internal/repository/analyses.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/google/uuid"
)

const analysisColumns = `id, client_id, email_summary, sender_details, email_intent, key_topics,
	specific_questions, attached_documents, recommended_response, raw_email, created_at`

type AnalysisRepository struct {
	db database.DBTX
}

func NewAnalysisRepository(db database.DBTX) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores the analysis; the structured parts go into jsonb columns.
func (r *AnalysisRepository) Create(ctx context.Context, rec *models.EmailAnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = now()

	cols, err := marshalAll(
		rec.SenderDetails,
		rec.EmailIntent,
		rec.KeyTopics,
		rec.SpecificQuestions,
		rec.AttachedDocuments,
		rec.RecommendedResponse,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("email_analyses", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO email_analyses (`+analysisColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.ClientID, rec.EmailSummary, cols[0], cols[1], cols[2], cols[3], cols[4], cols[5],
		nullString(rec.RawEmail), rec.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("email_analyses", err)
	}
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id string) (*models.EmailAnalysisRecord, error) {
	var (
		rec                                                    models.EmailAnalysisRecord
		sender, intent, topics, questions, attached, recommend []byte
		raw                                                    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM email_analyses WHERE id = $1`, id).Scan(
		&rec.ID, &rec.ClientID, &rec.EmailSummary, &sender, &intent, &topics, &questions, &attached, &recommend,
		&raw, &rec.CreatedAt,
	)
	if err != nil {
		return nil, queryError(err, "Email analysis", id, "get email analysis")
	}
	rec.RawEmail = raw.String

	targets := []struct {
		data []byte
		dest interface{}
	}{
		{sender, &rec.SenderDetails},
		{intent, &rec.EmailIntent},
		{topics, &rec.KeyTopics},
		{questions, &rec.SpecificQuestions},
		{attached, &rec.AttachedDocuments},
		{recommend, &rec.RecommendedResponse},
	}
	for _, t := range targets {
		if len(t.data) == 0 {
			continue
		}
		if err := json.Unmarshal(t.data, t.dest); err != nil {
			return nil, errors.NewQueryExecutionFailedError("decode email analysis", err)
		}
	}
	return &rec, nil
}

func marshalAll(values ...interface{}) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal column %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
