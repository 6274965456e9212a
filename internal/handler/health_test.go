package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestHealthHandler(t *testing.T) {
	t.Run("ok when database answers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(stubPinger{}).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("unavailable when ping fails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(stubPinger{err: errors.New("down")}).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "down")
	})
}
