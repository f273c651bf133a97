package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier accepts a single token.
type stubVerifier struct {
	valid    string
	identity model.Identity
}

func (v stubVerifier) Verify(token string) (model.Identity, error) {
	if token != v.valid {
		return model.Identity{}, errors.New("bad signature")
	}
	return v.identity, nil
}

var testVerifier = stubVerifier{valid: "good-token", identity: model.Identity{ID: 1, Username: "admin"}}

func TestRequireAuth(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name            string
		authorization   string
		expectedStatus  int
		expectHandler   bool
		expectedMessage string
	}{
		{
			name:           "Valid token",
			authorization:  "Bearer good-token",
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:            "Missing header",
			authorization:   "",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "No token",
		},
		{
			name:            "Wrong scheme",
			authorization:   "Basic good-token",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "Bearer without token",
			authorization:   "Bearer",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "Invalid token",
			authorization:   "Bearer forged",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen model.Identity
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				seen, _ = auth.IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := RequireAuth(testVerifier, logger)(testHandler)

			req := httptest.NewRequest(http.MethodPost, "/products", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)

			if tt.expectHandler {
				assert.Equal(t, testVerifier.identity, seen)
				return
			}

			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, model.ErrCodeUnauthorised, resp.Error)
			assert.Equal(t, tt.expectedMessage, resp.Message)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name          string
		authorization string
		expectedView  auth.View
	}{
		{name: "No header", expectedView: auth.PublicView},
		{name: "Valid token", authorization: "Bearer good-token", expectedView: auth.AdminView},
		{name: "Invalid token stays public", authorization: "Bearer forged", expectedView: auth.PublicView},
		{name: "Malformed header stays public", authorization: "good-token", expectedView: auth.PublicView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var view auth.View
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				view = auth.ViewFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := Identify(testVerifier)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedView, view)
		})
	}
}

func TestLogging(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		path           string
		handlerStatus  int
		expectedStatus int
	}{
		{
			name:           "Successful request",
			method:         http.MethodGet,
			path:           "/products",
			handlerStatus:  http.StatusOK,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found request",
			method:         http.MethodGet,
			path:           "/products/999",
			handlerStatus:  http.StatusNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Server error",
			method:         http.MethodPost,
			path:           "/import",
			handlerStatus:  http.StatusInternalServerError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			handler := Logging(logger)(testHandler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		shouldPanic    bool
		panicValue     interface{}
		expectedStatus int
	}{
		{
			name:           "No panic",
			shouldPanic:    false,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Panic with string",
			shouldPanic:    true,
			panicValue:     "something went wrong",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Panic with error",
			shouldPanic:    true,
			panicValue:     assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Recovery(logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.shouldPanic {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, model.ErrCodeInternalError, resp.Error)
				assert.NotContains(t, w.Body.String(), "something went wrong")
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "Status OK", statusCode: http.StatusOK},
		{name: "Status Created", statusCode: http.StatusCreated},
		{name: "Status Unauthorized", statusCode: http.StatusUnauthorized},
		{name: "Status Internal Server Error", statusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			rw.WriteHeader(tt.statusCode)

			assert.Equal(t, tt.statusCode, rw.statusCode)
			assert.Equal(t, tt.statusCode, w.Code)
		})
	}
}
