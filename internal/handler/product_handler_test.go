package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, includeHidden bool) ([]model.Product, error) {
	args := m.Called(ctx, includeHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id int64, patch *model.ProductPatch) (*model.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) Delete(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) Import(ctx context.Context, products []model.Product) (int, error) {
	args := m.Called(ctx, products)
	return args.Int(0), args.Error(1)
}

// withURLParam attaches a chi route parameter to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: 2, Name: "Product 2", Price: 20.00, Available: true, Active: true, CreatedAt: time.Now()},
		{ID: 1, Name: "Product 1", Price: 10.00, Available: true, Active: true, CreatedAt: time.Now()},
	}

	tests := []struct {
		name           string
		query          string
		admin          bool
		expectHidden   bool
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Public listing",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Public caller asking for all is ignored",
			query:          "?all=true",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Admin without all flag",
			admin:          true,
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Admin asking for all",
			query:          "?all=TRUE",
			admin:          true,
			expectHidden:   true,
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Service error",
			mockError:      model.NewBackendError("failed to load products", errors.New("connection refused")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCatalogService)
			handler := NewProductHandler(mockService, logger)

			mockService.On("List", mock.Anything, tt.expectHidden).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil)
			if tt.admin {
				req = req.WithContext(auth.WithIdentity(req.Context(), model.Identity{ID: 1, Username: "admin"}))
			}
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockError != nil {
				resp := decodeError(t, w)
				assert.Equal(t, "Internal server error", resp.Message)
				assert.NotContains(t, resp.Message, "connection refused")
			} else {
				var products []model.Product
				require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
				assert.Len(t, products, len(tt.mockReturn))
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	testProduct := &model.Product{ID: 7, Name: "Product 7", Price: 10.00, Active: true}

	tests := []struct {
		name           string
		id             string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			id:             "7",
			mockReturn:     testProduct,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Product not found",
			id:             "99",
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Non-numeric id",
			id:             "abc",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCatalogService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Get", mock.Anything, mock.AnythingOfType("int64")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/products/"+tt.id, nil), "id", tt.id)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusNotFound {
				assert.Equal(t, "Not found", decodeError(t, w).Message)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"name":"Lamp","price":19.5,"category":"Home","available":true}`,
			mockReturn:     &model.Product{ID: 1700000000000, Name: "Lamp", Price: 19.5, Active: true},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Duplicate id",
			body:           `{"id":5,"name":"Clash"}`,
			mockError:      model.ErrDuplicateID,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Backend failure",
			body:           `{"name":"Lamp"}`,
			mockError:      model.NewBackendError("failed to load products", errors.New("boom")),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCatalogService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.ProductInput")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var product model.Product
				require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
				assert.Equal(t, tt.mockReturn.ID, product.ID)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Update(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		id             string
		body           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			id:             "3",
			body:           `{"price":12.5}`,
			mockReturn:     &model.Product{ID: 3, Price: 12.5, Active: true},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Not found",
			id:             "99",
			body:           `{"price":12.5}`,
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Non-numeric id",
			id:             "x",
			body:           `{}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid JSON",
			id:             "3",
			body:           `nope`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCatalogService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Update", mock.Anything, mock.AnythingOfType("int64"), mock.AnythingOfType("*model.ProductPatch")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := withURLParam(httptest.NewRequest(http.MethodPut, "/products/"+tt.id, strings.NewReader(tt.body)), "id", tt.id)
			w := httptest.NewRecorder()

			handler.Update(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockCatalogService)
	handler := NewProductHandler(mockService, logger)

	mockService.On("Delete", mock.Anything, int64(4)).Return(&model.Product{ID: 4, Active: false}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/products/4", nil), "id", "4")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var product model.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
	assert.Equal(t, int64(4), product.ID)
	assert.False(t, product.Active)
	mockService.AssertExpectations(t)
}

func TestProductHandler_Import(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name            string
		body            string
		expectCount     int
		mockError       error
		expectedStatus  int
		expectService   bool
		expectedMessage string
	}{
		{
			name:           "Success",
			body:           `[{"id":1,"name":"A"},{"id":2,"name":"B"}]`,
			expectCount:    2,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Empty array",
			body:           `[]`,
			expectCount:    0,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:            "Object instead of array",
			body:            `{"id":1}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Array expected",
		},
		{
			name:           "Invalid JSON",
			body:           `[{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCatalogService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Import", mock.Anything, mock.MatchedBy(func(ps []model.Product) bool {
					return len(ps) == tt.expectCount
				})).Return(tt.expectCount, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Import(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp model.ImportResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.True(t, resp.OK)
				assert.Equal(t, tt.expectCount, resp.Count)
			}
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, decodeError(t, w).Message)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"validation", model.ErrArrayExpected, http.StatusBadRequest, model.ErrCodeArrayExpected},
		{"auth", model.ErrInvalidCredentials, http.StatusUnauthorized, model.ErrCodeInvalidCredentials},
		{"not found", model.ErrUserNotFound, http.StatusNotFound, model.ErrCodeUserNotFound},
		{"backend", model.NewBackendError("failed", errors.New("secret detail")), http.StatusInternalServerError, model.ErrCodeInternalError},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			writeError(w, req, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "secret detail")
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
		})
	}
}
