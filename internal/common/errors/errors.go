// Package errors provides the structured error type shared by the HTTP API and
// the workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"

	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"

	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicateClient  ErrorCode = "DUPLICATE_CLIENT"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeLLMNotConfigured      ErrorCode = "LLM_NOT_CONFIGURED"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed      ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeLLMEmptyResponse      ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrCodeInvalidResponseFormat ErrorCode = "INVALID_RESPONSE_FORMAT"
	ErrCodeInvalidCategory       ErrorCode = "INVALID_CATEGORY"

	ErrCodeTemplateRenderFailed ErrorCode = "TEMPLATE_RENDER_FAILED"

	ErrCodeGmailAPIError          ErrorCode = "GMAIL_API_ERROR"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to the status the API replies with.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// As extracts a *StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize returns err as a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Missing required parameters", details, false, nil)
}

func NewInvalidRequestError(message, details string) *StandardError {
	return newError(ErrCodeInvalidRequest, message, details, false, nil)
}

func NewNotAuthenticatedError(details string) *StandardError {
	return newError(ErrCodeNotAuthenticated, "Not authenticated", details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false, nil)
}

func NewRateLimitedError(details string) *StandardError {
	return newError(ErrCodeRateLimited, "Too many requests, please try again later.", details, true, nil)
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("%s not found", resource), details, false, nil)
}

func NewDuplicateClientError(emails []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateClient,
		Message:   "The following emails already exist in your account",
		Details:   strings.Join(emails, "\n"),
		Metadata:  map[string]interface{}{"emails": emails},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidStateError(message, details string) *StandardError {
	return newError(ErrCodeInvalidState, message, details, false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", errDetails(err), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, errDetails(err)), true, err)
}

func NewDatabaseInsertFailedError(table string, err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed",
		fmt.Sprintf("table: %s, error: %s", table, errDetails(err)), true, err)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search query failed",
		fmt.Sprintf("index: %s, error: %s", index, errDetails(err)), true, err)
}

func NewLLMNotConfiguredError() *StandardError {
	return newError(ErrCodeLLMNotConfigured, "OpenAI API key is not configured", "", false, nil)
}

func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM request timeout", errDetails(err), true, err)
}

func NewLLMRequestFailedError(err error) *StandardError {
	return newError(ErrCodeLLMRequestFailed, "LLM API error", errDetails(err), true, err)
}

func NewLLMEmptyResponseError() *StandardError {
	return newError(ErrCodeLLMEmptyResponse, "No response generated from OpenAI", "", true, nil)
}

func NewInvalidResponseFormatError(err error) *StandardError {
	return newError(ErrCodeInvalidResponseFormat, "Invalid response format from OpenAI", errDetails(err), true, err)
}

func NewInvalidCategoryError(got string) *StandardError {
	return newError(ErrCodeInvalidCategory, "Failed to determine valid category",
		fmt.Sprintf("category: %q", got), false, nil)
}

func NewTemplateRenderFailedError(err error) *StandardError {
	return newError(ErrCodeTemplateRenderFailed, "Failed to render prompt template", errDetails(err), false, err)
}

func NewGmailAPIError(operation string, err error) *StandardError {
	return newError(ErrCodeGmailAPIError, fmt.Sprintf("Failed to %s", operation), errDetails(err), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true, err)
}

// ==========================
// 4. Status and BPMN mapping
// ==========================

// HTTPStatus returns the HTTP status for an error code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeNotAuthenticated, ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateClient, ErrCodeInvalidState:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeLLMTimeout, ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// BPMNErrorMapping maps internal codes to the error codes modelled on boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:      "ADVISOR_INPUT_INVALID",
	ErrCodeInvalidRequest:        "ADVISOR_INPUT_INVALID",
	ErrCodeResourceNotFound:      "ADVISOR_RECORD_NOT_FOUND",
	ErrCodeLLMNotConfigured:      "ADVISOR_LLM_UNAVAILABLE",
	ErrCodeLLMTimeout:            "ADVISOR_LLM_TIMEOUT",
	ErrCodeLLMRequestFailed:      "ADVISOR_LLM_FAILED",
	ErrCodeLLMEmptyResponse:      "ADVISOR_LLM_FAILED",
	ErrCodeInvalidResponseFormat: "ADVISOR_RESPONSE_INVALID",
	ErrCodeInvalidCategory:       "ADVISOR_CATEGORY_INVALID",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeGmailAPIError,
		ErrCodeExternalService,
		ErrCodeLLMRequestFailed:
		return 3

	case ErrCodeLLMEmptyResponse,
		ErrCodeInvalidResponseFormat,
		ErrCodeTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "RATE"):
		return "AUTH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "RESPONSE_FORMAT") || strings.Contains(codeStr, "CATEGORY"):
		return "AI"
	case strings.Contains(codeStr, "GMAIL") || strings.Contains(codeStr, "NOTIFICATION"):
		return "MAIL"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATA"
	default:
		return "SYSTEM"
	}
}
