package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWriter(t *testing.T) {
	t.Parallel()

	t.Run("captures the written status", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

		sw.WriteHeader(http.StatusTeapot)

		assert.Equal(t, http.StatusTeapot, sw.status)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("optional interfaces stay reachable through the wrapper", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

		require.NoError(t, http.NewResponseController(sw).Flush())
		assert.True(t, rec.Flushed)
	})
}
