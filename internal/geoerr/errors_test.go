package geoerr

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"not found", NotFound("nuts: no region at level %d", 2), KindNotFound},
		{"invalid", InvalidArgument("bad level"), KindInvalidArgument},
		{"unavailable", Unavailable("gisco down"), KindServiceUnavailable},
		{"ambiguous", Ambiguous("2 matches"), KindAmbiguousResult},
		{"wrapped twice", eris.Wrap(NotFound("x"), "feature: find nuts"), KindNotFound},
		{"conn refused", eris.Wrap(syscall.ECONNREFUSED, "dial"), KindServiceUnavailable},
		{"other", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Ambiguous("x")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Unavailable("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("x")))
}

func TestStatus(t *testing.T) {
	assert.NoError(t, Status(http.StatusOK, "gisco"))
	assert.ErrorIs(t, Status(http.StatusNotFound, "gisco"), ErrNotFound)
	assert.ErrorIs(t, Status(http.StatusTooManyRequests, "gisco"), ErrServiceUnavailable)
	assert.ErrorIs(t, Status(http.StatusInternalServerError, "gisco"), ErrServiceUnavailable)
}

func TestTransport(t *testing.T) {
	assert.NoError(t, Transport(nil, "x"))
	assert.ErrorIs(t, Transport(errors.New("connection reset by peer"), "gisco: request"), ErrServiceUnavailable)

	err := Transport(context.Canceled, "gisco: request")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
}
