// internal/repository/clients.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const clientColumns = `id, user_id, name, surname, email, phone, occupation, status, portfolio_value,
	risk_profile, last_contact, annual_income, investment_goals, risk_tolerance, created_at, updated_at`

type ClientRepository struct {
	db database.DBTX
}

func NewClientRepository(db database.DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ClientRepository) WithTx(tx *sql.Tx) *ClientRepository {
	return &ClientRepository{db: tx}
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		c                          models.Client
		surname, phone, occupation sql.NullString
		lastContact                sql.NullTime
		annualIncome               sql.NullFloat64
		riskTolerance              sql.NullInt64
		goals                      pq.StringArray
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &surname, &c.Email, &phone, &occupation, &c.Status, &c.PortfolioValue,
		&c.RiskProfile, &lastContact, &annualIncome, &goals, &riskTolerance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Surname = surname.String
	c.Phone = phone.String
	c.Occupation = occupation.String
	if lastContact.Valid {
		c.LastContact = lastContact.Time
	}
	if annualIncome.Valid {
		v := annualIncome.Float64
		c.AnnualIncome = &v
	}
	if riskTolerance.Valid {
		v := int(riskTolerance.Int64)
		c.RiskTolerance = &v
	}
	c.InvestmentGoals = []string(goals)
	return &c, nil
}

// Create inserts c, filling ID and timestamps.
func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	if c.LastContact.IsZero() {
		c.LastContact = ts
	}

	var riskTolerance sql.NullInt64
	if c.RiskTolerance != nil {
		riskTolerance = sql.NullInt64{Int64: int64(*c.RiskTolerance), Valid: true}
	}
	var annualIncome sql.NullFloat64
	if c.AnnualIncome != nil {
		annualIncome = sql.NullFloat64{Float64: *c.AnnualIncome, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`,
		c.ID, c.UserID, c.Name, nullString(c.Surname), c.Email, nullString(c.Phone), nullString(c.Occupation),
		c.Status, c.PortfolioValue, c.RiskProfile, c.LastContact, annualIncome,
		pq.Array(c.InvestmentGoals), riskTolerance, ts,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError("clients", err)
	}
	return nil
}

func (r *ClientRepository) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1 AND user_id = $2`, id, userID)

	c, err := scanClient(row)
	if err != nil {
		return nil, queryError(err, "Client", id, "get client")
	}
	return c, nil
}

// GetByEmail matches case-insensitively within the advisor's book.
func (r *ClientRepository) GetByEmail(ctx context.Context, userID, email string) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE user_id = $1 AND lower(email) = lower($2)
		LIMIT 1`, userID, email)

	c, err := scanClient(row)
	if err != nil {
		return nil, queryError(err, "Client", email, "get client by email")
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, userID string) ([]*models.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE user_id = $1
		ORDER BY name, surname`, userID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list clients", err)
	}
	defer rows.Close()

	clients := []*models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan client", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list clients", err)
	}
	return clients, nil
}

// ExistingEmails returns which of emails are already on file for the advisor, lower-cased.
func (r *ClientRepository) ExistingEmails(ctx context.Context, userID string, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(strings.TrimSpace(e))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT lower(email)
		FROM clients
		WHERE user_id = $1 AND lower(email) = ANY($2)
		ORDER BY 1`, userID, pq.Array(lowered))
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("check existing emails", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan email", err)
		}
		existing = append(existing, email)
	}
	return existing, rows.Err()
}

// Update applies the non-nil fields of u and returns the stored client.
func (r *ClientRepository) Update(ctx context.Context, userID, id string, u models.ClientUpdate) (*models.Client, error) {
	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Surname != nil {
		add("surname", nullString(*u.Surname))
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Phone != nil {
		add("phone", nullString(*u.Phone))
	}
	if u.Occupation != nil {
		add("occupation", nullString(*u.Occupation))
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.PortfolioValue != nil {
		add("portfolio_value", *u.PortfolioValue)
	}
	if u.RiskProfile != nil {
		add("risk_profile", *u.RiskProfile)
	}
	if u.AnnualIncome != nil {
		add("annual_income", *u.AnnualIncome)
	}
	if u.InvestmentGoals != nil {
		add("investment_goals", pq.Array(u.InvestmentGoals))
	}
	if u.RiskTolerance != nil {
		add("risk_tolerance", *u.RiskTolerance)
	}
	add("updated_at", now())

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE clients SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+clientColumns, strings.Join(sets, ", "), len(args)-1, len(args))

	c, err := scanClient(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, queryError(err, "Client", id, "update client")
	}
	return c, nil
}

// Touch records contact with the client now.
func (r *ClientRepository) Touch(ctx context.Context, userID, id string) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients SET last_contact = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3`, ts, id, userID)
	if err != nil {
		return errors.NewQueryExecutionFailedError("touch client", err)
	}
	return affected(res, "Client", id)
}

func (r *ClientRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.NewQueryExecutionFailedError("delete client", err)
	}
	return affected(res, "Client", id)
}
