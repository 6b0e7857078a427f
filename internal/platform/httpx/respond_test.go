package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep/gatekeep/internal/shared"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate", shared.ErrDuplicateUser, http.StatusConflict},
		{"not found", fmt.Errorf("lookup: %w", shared.ErrUserNotFound), http.StatusNotFound},
		{"credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{"token", shared.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden},
		{"validation", fmt.Errorf("%w: email", shared.ErrValidation), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, nil, tc.err)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, StatusError, decodeEnvelope(t, rr).Status)
		})
	}
}

func TestRespondErrorSanitisesInternalFailures(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, errors.New("pq: connection refused to 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Internal server error", env.Message)
	assert.NotContains(t, rr.Body.String(), "10.0.0.3")
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var target map[string]any
	err := DecodeJSON(req, &target)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestOKEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, http.StatusCreated, "User Created")
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"ok","data":"User Created"}`, rr.Body.String())
}

func TestFailDataCarriesReasonInData(t *testing.T) {
	rr := httptest.NewRecorder()
	FailData(rr, http.StatusConflict, "User already exists!!")

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"status":"error","data":"User already exists!!"}`, rr.Body.String())
}
