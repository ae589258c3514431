package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestAPIKeyAuth(t *testing.T) {
	keys := []string{"dev-api-key-789", "test-api-key-456"}

	testCases := []struct {
		name               string
		header             string
		value              string
		expectedStatusCode int
		shouldCallNext     bool
		expectedKey        string
	}{
		{
			name:               "Success - X-API-Key header",
			header:             XAPIKey,
			value:              "dev-api-key-789",
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKey:        "dev-api-key-789",
		},
		{
			name:               "Success - Authorization header without scheme",
			header:             "Authorization",
			value:              "test-api-key-456",
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKey:        "test-api-key-456",
		},
		{
			name:               "Success - Authorization header with Bearer prefix",
			header:             "Authorization",
			value:              "Bearer test-api-key-456",
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKey:        "test-api-key-456",
		},
		{
			name:               "Success - Bearer prefix is case-insensitive",
			header:             "Authorization",
			value:              "bearer dev-api-key-789",
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKey:        "dev-api-key-789",
		},
		{
			name:               "Failure - no key",
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
		{
			name:               "Failure - unknown key",
			header:             XAPIKey,
			value:              "wrong-key",
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
		{
			name:               "Failure - unknown bearer key",
			header:             "Authorization",
			value:              "Bearer wrong-key",
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			nextCalled := false
			var keyInContext string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				keyInContext, _ = GetAPIKey(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			middleware := APIKeyAuth(keys, testLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rr := httptest.NewRecorder()

			// when
			middleware.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.shouldCallNext, nextCalled)
			if tc.shouldCallNext {
				assert.Equal(t, tc.expectedKey, keyInContext)
			} else {
				require.JSONEq(t,
					`{"error":"Authentication required. Please provide a valid API key."}`,
					rr.Body.String())
			}
		})
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusOK))
	assert.Equal(t, "3xx", statusClass(http.StatusMovedPermanently))
	assert.Equal(t, "4xx", statusClass(http.StatusNotFound))
	assert.Equal(t, "5xx", statusClass(http.StatusInternalServerError))
	assert.Equal(t, "unknown", statusClass(100))
}
