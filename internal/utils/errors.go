package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorKind classifies business-rule failures.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindAuthorization
)

// AppError is a failure whose message is safe to show to the client.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Status maps the error kind to its HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// ValidationError reports missing or malformed input.
func ValidationError(format string, args ...any) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist.
func NotFoundError(format string, args ...any) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation such as a double booking.
func ConflictError(format string, args ...any) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports an actor acting outside its rights.
func AuthorizationError(format string, args ...any) error {
	return &AppError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// RespondError writes err to the client. Business-rule errors keep their
// message; anything else becomes a generic 500 and is logged with its detail.
func RespondError(c *gin.Context, log *logrus.Entry, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(c, appErr.Status(), appErr.Message)
		return
	}
	if log != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}
	InternalServerError(c, "Server error")
}
