package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("op", "bad"), http.StatusBadRequest},
		{apperr.NotFound("op", "product", 1), http.StatusNotFound},
		{apperr.Insufficient("op", "product", 1, "available", 5, 2), http.StatusUnprocessableEntity},
		{apperr.Conflict("op", "reservation", 1, "dup"), http.StatusConflict},
		{&apperr.Error{Kind: apperr.ErrTransient}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestWriteErrorNamesEntity(t *testing.T) {
	rec := httptest.NewRecorder()
	status := WriteError(rec, apperr.Insufficient("reserve", "product", 7, "available", 10, 3))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "product", body.Entity)
	assert.Equal(t, int64(7), body.EntityID)
	assert.Contains(t, body.Error, "available 3")
}

func TestWriteErrorHidesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal error", body.Error)
}
