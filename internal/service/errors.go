package service

import (
	"net/http"
)

// APIError ошибка с HTTP статусом, переносится через слои как значение,
// а не через panic/recover
type APIError struct {
	Status int    `json:"-"`
	Detail string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Detail
}

func newValidationError(detail string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Detail: detail}
}

func newNotFoundError(detail string) *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: detail}
}

func newUpstreamError(status int, detail string) *APIError {
	return &APIError{Status: status, Detail: detail}
}

func newInternalError(detail string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Detail: detail}
}

// newRollbackError сообщение всегда упоминает откат, даже если откатывать
// было нечего
func newRollbackError(cause error) *APIError {
	return &APIError{
		Status: http.StatusInternalServerError,
		Detail: "Transaction failed, rolled back: " + cause.Error(),
	}
}
