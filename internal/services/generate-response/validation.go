// internal/services/generate-response/validation.go
package generateresponse

import (
	"fmt"
	"strconv"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"
)

func validateInput(input *Input) error {
	if strings.TrimSpace(input.Prompt) == "" || strings.TrimSpace(input.ClientContext) == "" {
		return errors.NewValidationError("prompt and clientContext are required")
	}
	if input.ResponseType == "" {
		input.ResponseType = models.ResponseTypeEmail
	}
	if !input.ResponseType.Valid() {
		return errors.NewInvalidRequestError("Invalid response type",
			fmt.Sprintf("responseType must be email or proposal, got %q", input.ResponseType))
	}
	return nil
}

var currencyReplacer = strings.NewReplacer("R", "", "$", "", ",", "")

// ParseClientContext reads "Key: value" lines. Unknown keys, lines without a
// colon and empty values are ignored; a portfolio value that does not parse
// as a number is left out.
func ParseClientContext(text string) ClientData {
	var data ClientData
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		switch key {
		case "Client Name":
			data.Name = value
		case "Risk Profile":
			data.RiskProfile = value
		case "Portfolio Value":
			if v, err := strconv.ParseFloat(strings.TrimSpace(currencyReplacer.Replace(value)), 64); err == nil {
				data.PortfolioValue = &v
			}
		case "Additional Context":
			data.AdditionalContext = value
		}
	}
	return data
}
