// internal/apperrors/apperrors_test.go
package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err    error
		kind   Kind
		status int
		code   string
	}{
		{InvalidRequest("bad input"), KindInvalidRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{Unauthenticated("no token"), KindUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{Forbidden("not yours"), KindForbidden, http.StatusForbidden, "FORBIDDEN"},
		{NotFound("negotiation"), KindNotFound, http.StatusNotFound, "NOT_FOUND"},
		{Internal("boom", errors.New("cause")), KindInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err))
		assert.Equal(t, tc.status, HTTPStatus(tc.err))
		assert.Equal(t, tc.code, Code(tc.err))
	}
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	err := errors.New("driver: bad connection")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestInternalCauseIsNotExposed(t *testing.T) {
	cause := errors.New("pq: connection refused at 10.0.0.3")
	err := Internal("failed to load negotiation", cause)

	assert.NotContains(t, PublicMessage(err), "10.0.0.3")
	assert.ErrorIs(t, err, cause)
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "negotiation not found", PublicMessage(NotFound("negotiation")))
}
