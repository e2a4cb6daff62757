package error

import "net/http"

// NotFoundError is raised when a requested record (a tenant, or a sync
// status for a phone number that never connected) does not exist. The
// recovery middleware maps it to a 404 response.
type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}
