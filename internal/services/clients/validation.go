// internal/services/clients/validation.go
package clients

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/validation"
	"advisor-ai/internal/models"
)

var requiredColumns = []string{"name", "email", "portfolioValue", "riskProfile"}

// ParseCSV reads a header row and returns the data rows, skipping blank lines.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewInvalidRequestError("Empty CSV file", "a header row is required")
	}
	if err != nil {
		return nil, errors.NewInvalidRequestError("Failed to parse CSV file", err.Error())
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewInvalidRequestError("Failed to parse CSV file",
			"missing columns: "+strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []ImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInvalidRequestError("Failed to parse CSV file", err.Error())
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, ImportRow{
			Line:           len(rows) + 1,
			Name:           field(record, "name"),
			Surname:        field(record, "surname"),
			Email:          field(record, "email"),
			PortfolioValue: field(record, "portfolioValue"),
			RiskProfile:    field(record, "riskProfile"),
		})
	}
	if len(rows) == 0 {
		return nil, errors.NewInvalidRequestError("Empty CSV file", "no client rows found")
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// validateRow lists every problem with row, in column order.
func validateRow(row ImportRow) []string {
	var errs []string
	if row.Name == "" {
		errs = append(errs, "Name is required")
	}
	if row.Email == "" {
		errs = append(errs, "Email is required")
	}
	if !strings.Contains(row.Email, "@") {
		errs = append(errs, "Invalid email format")
	}
	if row.PortfolioValue == "" {
		errs = append(errs, "Portfolio value is required")
	}
	if _, err := strconv.ParseFloat(row.PortfolioValue, 64); err != nil {
		errs = append(errs, "Portfolio value must be a number")
	}
	if row.RiskProfile == "" {
		errs = append(errs, "Risk profile is required")
	}
	if _, ok := models.ParseRiskProfile(row.RiskProfile); !ok {
		errs = append(errs, "Risk profile must be conservative, moderate, or aggressive")
	}
	return errs
}

// validateRows checks every row and flags emails repeated within the file.
func validateRows(rows []ImportRow) []RowError {
	var rowErrors []RowError
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		errs := validateRow(row)
		key := strings.ToLower(row.Email)
		if first, dup := seen[key]; dup && key != "" {
			errs = append(errs, fmt.Sprintf("Email duplicates row %d", first))
		} else {
			seen[key] = row.Line
		}
		if len(errs) > 0 {
			rowErrors = append(rowErrors, RowError{Row: row.Line, Errors: errs})
		}
	}
	return rowErrors
}

func rowValidationError(rowErrors []RowError) *errors.StandardError {
	lines := make([]string, len(rowErrors))
	for i, re := range rowErrors {
		lines[i] = fmt.Sprintf("Row %d: %s", re.Row, strings.Join(re.Errors, ", "))
	}
	stdErr := errors.NewInvalidRequestError("Validation errors found", strings.Join(lines, "\n"))
	stdErr.Metadata = map[string]interface{}{"rows": rowErrors}
	return stdErr
}

func validateCreate(input *CreateInput) (models.RiskProfile, error) {
	var problems []string
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !validation.ValidateEmail(strings.TrimSpace(input.Email)) {
		problems = append(problems, "a valid email is required")
	}
	if input.PortfolioValue < 0 {
		problems = append(problems, "portfolio_value cannot be negative")
	}
	risk := models.RiskModerate
	if input.RiskProfile != "" {
		parsed, ok := models.ParseRiskProfile(input.RiskProfile)
		if !ok {
			problems = append(problems, "risk_profile must be conservative, moderate, or aggressive")
		}
		risk = parsed
	}
	if input.RiskTolerance != nil && (*input.RiskTolerance < 1 || *input.RiskTolerance > 10) {
		problems = append(problems, "risk_tolerance must be between 1 and 10")
	}
	if len(problems) > 0 {
		return "", errors.NewInvalidRequestError("Invalid client", strings.Join(problems, "; "))
	}
	return risk, nil
}

func validateUpdate(u *models.ClientUpdate) error {
	var problems []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		problems = append(problems, "name cannot be empty")
	}
	if u.Email != nil && !validation.ValidateEmail(strings.TrimSpace(*u.Email)) {
		problems = append(problems, "email is invalid")
	}
	if u.Status != nil && !u.Status.Valid() {
		problems = append(problems, "status must be pending, active, or inactive")
	}
	if u.RiskProfile != nil {
		parsed, ok := models.ParseRiskProfile(string(*u.RiskProfile))
		if !ok {
			problems = append(problems, "risk_profile must be conservative, moderate, or aggressive")
		}
		*u.RiskProfile = parsed
	}
	if u.PortfolioValue != nil && *u.PortfolioValue < 0 {
		problems = append(problems, "portfolio_value cannot be negative")
	}
	if len(problems) > 0 {
		return errors.NewInvalidRequestError("Invalid client", strings.Join(problems, "; "))
	}
	return nil
}
