// Package geoerr defines the error kinds shared by the geocoding, NUTS and
// feature packages.
package geoerr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/rotisserie/eris"
)

// Sentinel errors. Callers test for a kind with errors.Is.
var (
	ErrNotFound           = eris.New("geoerr: not found")
	ErrInvalidArgument    = eris.New("geoerr: invalid argument")
	ErrServiceUnavailable = eris.New("geoerr: service unavailable")
	ErrAmbiguousResult    = eris.New("geoerr: ambiguous result")
)

// Kind classifies an error for callers that need a coarse outcome,
// such as the HTTP API or batch exports.
type Kind string

// Error kinds.
const (
	KindNone               Kind = ""
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
	KindServiceUnavailable Kind = "service_unavailable"
	KindAmbiguousResult    Kind = "ambiguous_result"
	KindInternal           Kind = "internal"
)

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return eris.Wrapf(ErrNotFound, format, args...)
}

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidArgument, format, args...)
}

// Unavailable wraps ErrServiceUnavailable with a formatted message.
func Unavailable(format string, args ...any) error {
	return eris.Wrapf(ErrServiceUnavailable, format, args...)
}

// Ambiguous wraps ErrAmbiguousResult with a formatted message.
func Ambiguous(format string, args ...any) error {
	return eris.Wrapf(ErrAmbiguousResult, format, args...)
}

// Transport converts an HTTP client failure into a ServiceUnavailable error.
// Context cancellation is returned unchanged so callers can tell it apart.
func Transport(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return eris.Wrap(err, msg)
	}
	return eris.Wrapf(ErrServiceUnavailable, "%s: %v", msg, err)
}

// Status converts a non-2xx upstream HTTP status into an error. 404 maps to
// NotFound, everything else to ServiceUnavailable.
func Status(code int, msg string) error {
	if code >= 200 && code < 300 {
		return nil
	}
	if code == http.StatusNotFound {
		return eris.Wrapf(ErrNotFound, "%s: status %d", msg, code)
	}
	return eris.Wrapf(ErrServiceUnavailable, "%s: status %d", msg, code)
}

// KindOf reports the kind of err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAmbiguousResult):
		return KindAmbiguousResult
	case errors.Is(err, ErrServiceUnavailable), isNetwork(err):
		return KindServiceUnavailable
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to the status code served by the HTTP API.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNone:
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindAmbiguousResult:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isNetwork(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
