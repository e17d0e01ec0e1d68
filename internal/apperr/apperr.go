package apperr

import (
	"errors"
	"net/http"
)

// Error 业务错误：自带 HTTP 状态码，handler 层统一映射
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func Unauthorized(msg string) error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func NotFound(msg string) error     { return &Error{Status: http.StatusNotFound, Message: msg} }
func Conflict(msg string) error     { return &Error{Status: http.StatusConflict, Message: msg} }
func Internal(msg string, err error) error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// Status 提取状态码；非业务错误一律 500
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Message 提取对外文案；非业务错误不泄露内部细节
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return "internal error"
}
