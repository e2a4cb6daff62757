package error

import "net/http"

func ValidationError(message string) ValidationErrorType {
	return ValidationErrorType(message)
}

type ValidationErrorType string

func (err ValidationErrorType) Error() string {
	return string(err)
}

func (err ValidationErrorType) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationErrorType) StatusCode() int {
	return http.StatusBadRequest
}
