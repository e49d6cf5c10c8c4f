package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var statusByCode = map[string]int{
	apperrors.CodeInvalidInput:  http.StatusBadRequest,
	apperrors.CodeNotFound:      http.StatusNotFound,
	apperrors.CodeUnauthorized:  http.StatusUnauthorized,
	apperrors.CodeUpstream:      http.StatusBadGateway,
	auth.CodeInvalidToken:       http.StatusUnauthorized,
	auth.CodeInvalidCredentials: http.StatusUnauthorized,
	auth.CodeUserNotFound:       http.StatusNotFound,
	auth.CodeEmailExists:        http.StatusConflict,
	auth.CodeNicknameExists:     http.StatusConflict,
	auth.CodeLinkingDisabled:    http.StatusConflict,
	auth.CodeOAuthExchange:      http.StatusBadGateway,
	auth.CodeNotConfigured:      http.StatusServiceUnavailable,
}

// fromDomainError maps an AppError code onto a status. Unknown codes
// become a 500 carrying fallbackCode.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	status, known := statusByCode[code]
	if !known {
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
	if code == apperrors.CodeInvalidInput {
		code = "invalid_request"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.CodeInternal && appErr.Code != "" {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
