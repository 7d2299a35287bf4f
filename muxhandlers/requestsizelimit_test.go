package muxhandlers

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSizeLimitMiddleware(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		for _, size := range []int64{0, -1} {
			_, err := RequestSizeLimitMiddleware(RequestSizeLimitConfig{MaxBytes: size})
			assert.ErrorIs(t, err, ErrInvalidMaxSize)
		}
	})

	newRouter := func(t *testing.T, limit int64) *mux.Router {
		t.Helper()

		mw, err := RequestSizeLimitMiddleware(RequestSizeLimitConfig{MaxBytes: limit})
		require.NoError(t, err)

		r := mux.NewRouter()
		r.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}

				w.WriteHeader(http.StatusBadRequest)
				return
			}

			w.Write(body)
		})
		r.Use(mw)

		return r
	}

	tests := []struct {
		name     string
		body     string
		chunked  bool
		wantCode int
	}{
		{"under limit", "hello", false, http.StatusOK},
		{"at limit", "0123456789", false, http.StatusOK},
		{"declared over limit", "0123456789a", false, http.StatusRequestEntityTooLarge},
		{"streamed over limit", "0123456789a", true, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}

			w := httptest.NewRecorder()
			newRouter(t, 10).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
