package error

// GenericError is implemented by every typed error in this package so the
// recovery middleware can map panics to structured HTTP responses.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
