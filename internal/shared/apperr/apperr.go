package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	Invalid      Kind = "invalid"
	NotFound     Kind = "not_found"
	Unauthorized Kind = "unauthorized"
	Forbidden    Kind = "forbidden"
	Conflict     Kind = "conflict"
	Config       Kind = "config"
	Unavailable  Kind = "unavailable"
	Internal     Kind = "internal"
)

const genericMsg = "Something went wrong. Please try again."

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s(%s): %v", e.Kind, e.Code, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Code)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

// Constructors (PublicMsg must stay short and safe)
func InvalidErr(code, publicMsg string, fields map[string]string) *AppError {
	return &AppError{Kind: Invalid, Code: code, PublicMsg: publicMsg, Fields: fields}
}
func NotFoundErr(code, publicMsg string) *AppError {
	return &AppError{Kind: NotFound, Code: code, PublicMsg: publicMsg}
}
func UnauthorizedErr(publicMsg string) *AppError {
	return &AppError{Kind: Unauthorized, Code: "UNAUTHORIZED", PublicMsg: publicMsg}
}
func ForbiddenErr(publicMsg string) *AppError {
	return &AppError{Kind: Forbidden, Code: "FORBIDDEN", PublicMsg: publicMsg}
}
func ConflictErr(code, publicMsg string) *AppError {
	return &AppError{Kind: Conflict, Code: code, PublicMsg: publicMsg}
}

// ConfigErr: operator-actionable misconfiguration. The code is preserved for
// log correlation; the user only ever sees a generic message.
func ConfigErr(code string, err error) *AppError {
	return &AppError{Kind: Config, Code: code, PublicMsg: genericMsg, Err: err}
}

// UnavailableErr: transient storage/transport failure, caller may retry.
func UnavailableErr(code string, err error) *AppError {
	return &AppError{Kind: Unavailable, Code: code, PublicMsg: genericMsg, Err: err}
}

// Wrap: internal error without a public message (default 500)
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	return &AppError{Kind: Internal, Code: "INTERNAL", PublicMsg: genericMsg, Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Invalid:
			return http.StatusBadRequest
		case Unauthorized:
			return http.StatusUnauthorized
		case Forbidden:
			return http.StatusForbidden
		case NotFound:
			return http.StatusNotFound
		case Conflict:
			return http.StatusConflict
		case Unavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return genericMsg
}

func Code(err error) string {
	if ae, ok := As(err); ok && ae.Code != "" {
		return ae.Code
	}
	return "INTERNAL"
}
