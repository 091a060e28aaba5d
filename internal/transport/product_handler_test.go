package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shoply/internal/domain"
	"shoply/internal/media"
	"shoply/internal/repository"
	"shoply/internal/service"
)

type mockProductService struct {
	createFunc      func(ctx context.Context, in service.ProductCreateInput, files []service.ImageFile) (*domain.Product, error)
	listFunc        func(ctx context.Context) ([]*domain.Product, error)
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	searchFunc      func(ctx context.Context, term string) ([]*domain.Product, error)
	updateFunc      func(ctx context.Context, id uuid.UUID, in service.ProductUpdateInput, newFiles []service.ImageFile, deleteList []string) (*domain.Product, error)
	removeFunc      func(ctx context.Context, id uuid.UUID) error
	addImagesFunc   func(ctx context.Context, id uuid.UUID, files []service.ImageFile) (*domain.Product, error)
	deleteImageFunc func(ctx context.Context, id uuid.UUID, remoteID string) (*domain.Product, error)
}

func (m *mockProductService) Create(ctx context.Context, in service.ProductCreateInput, files []service.ImageFile) (*domain.Product, error) {
	return m.createFunc(ctx, in, files)
}

func (m *mockProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return m.listFunc(ctx)
}

func (m *mockProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductService) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	return m.searchFunc(ctx, term)
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, in service.ProductUpdateInput, newFiles []service.ImageFile, deleteList []string) (*domain.Product, error) {
	return m.updateFunc(ctx, id, in, newFiles, deleteList)
}

func (m *mockProductService) Remove(ctx context.Context, id uuid.UUID) error {
	return m.removeFunc(ctx, id)
}

func (m *mockProductService) AddImages(ctx context.Context, id uuid.UUID, files []service.ImageFile) (*domain.Product, error) {
	return m.addImagesFunc(ctx, id, files)
}

func (m *mockProductService) DeleteImage(ctx context.Context, id uuid.UUID, remoteID string) (*domain.Product, error) {
	return m.deleteImageFunc(ctx, id, remoteID)
}

func passthrough(next http.Handler) http.Handler { return next }

func newProductRouter(svc *mockProductService) chi.Router {
	handler := NewProductHandler(svc, media.NewSigner("secret", "key", "bucket", "preset"), zap.NewNop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router, passthrough, passthrough)
	return router
}

// newMultipartRequest builds a multipart form with the given fields and a
// number of fake PNG files under the "images" field.
func newMultipartRequest(t *testing.T, method, target string, fields map[string]string, imageCount int) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	for i := 0; i < imageCount; i++ {
		part, err := writer.CreateFormFile("images", "image.png")
		require.NoError(t, err)
		_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type envelopeResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeResponse {
	t.Helper()
	var env envelopeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestProductHandlerCreate(t *testing.T) {
	svc := &mockProductService{
		createFunc: func(ctx context.Context, in service.ProductCreateInput, files []service.ImageFile) (*domain.Product, error) {
			assert.Equal(t, "Widget", in.Name)
			assert.Equal(t, 9.99, in.Price)
			assert.Equal(t, "Tools", in.Category)
			assert.Len(t, files, 2)
			return &domain.Product{ID: uuid.New(), Name: in.Name, Price: in.Price}, nil
		},
	}
	router := newProductRouter(svc)

	req := newMultipartRequest(t, http.MethodPost, "/products/add", map[string]string{
		"name":        "Widget",
		"description": "A useful widget",
		"price":       "9.99",
		"category":    "Tools",
	}, 2)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Product added successfully", env.Message)
}

func TestProductHandlerCreateTooManyImages(t *testing.T) {
	svc := &mockProductService{
		createFunc: func(ctx context.Context, in service.ProductCreateInput, files []service.ImageFile) (*domain.Product, error) {
			return nil, &service.ImageLimitError{Remaining: 5}
		},
	}
	router := newProductRouter(svc)

	req := newMultipartRequest(t, http.MethodPost, "/products/add", map[string]string{
		"name":        "Widget",
		"description": "A useful widget",
		"price":       "9.99",
		"category":    "Tools",
	}, 6)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "you can only upload 5 more image(s)", env.Message)
}

func TestProductHandlerCreateInvalidPrice(t *testing.T) {
	router := newProductRouter(&mockProductService{})

	req := newMultipartRequest(t, http.MethodPost, "/products/add", map[string]string{
		"name":  "Widget",
		"price": "not-a-number",
	}, 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandlerGetByIDNotFound(t *testing.T) {
	svc := &mockProductService{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
			return nil, repository.ErrProductNotFound
		},
	}
	router := newProductRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "product not found", env.Message)
}

func TestProductHandlerGetByIDInvalidUUID(t *testing.T) {
	router := newProductRouter(&mockProductService{})

	req := httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandlerSearchEmptyTerm(t *testing.T) {
	svc := &mockProductService{
		searchFunc: func(ctx context.Context, term string) ([]*domain.Product, error) {
			return nil, service.ErrEmptySearchTerm
		},
	}
	router := newProductRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/products/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandlerDeleteImage(t *testing.T) {
	productID := uuid.New()
	svc := &mockProductService{
		deleteImageFunc: func(ctx context.Context, id uuid.UUID, remoteID string) (*domain.Product, error) {
			assert.Equal(t, productID, id)
			assert.Equal(t, "products/a", remoteID)
			return &domain.Product{ID: id}, nil
		},
	}
	router := newProductRouter(svc)

	body := strings.NewReader(`{"remote_id":"products/a"}`)
	req := httptest.NewRequest(http.MethodDelete, "/products/deleteImage/"+productID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Image deleted successfully", env.Message)
}

func TestProductHandlerDeleteImageMissingRemoteID(t *testing.T) {
	router := newProductRouter(&mockProductService{})

	req := httptest.NewRequest(http.MethodDelete, "/products/deleteImage/"+uuid.NewString(), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandlerAddImagesToFullProduct(t *testing.T) {
	svc := &mockProductService{
		addImagesFunc: func(ctx context.Context, id uuid.UUID, files []service.ImageFile) (*domain.Product, error) {
			return nil, &service.ImageLimitError{Remaining: 0}
		},
	}
	router := newProductRouter(svc)

	req := newMultipartRequest(t, http.MethodPost, "/products/add-image/"+uuid.NewString(), nil, 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "you can only upload 0 more image(s)", env.Message)
}

func TestProductHandlerUpdateSplitsDeleteList(t *testing.T) {
	productID := uuid.New()
	svc := &mockProductService{
		updateFunc: func(ctx context.Context, id uuid.UUID, in service.ProductUpdateInput, newFiles []service.ImageFile, deleteList []string) (*domain.Product, error) {
			assert.Equal(t, []string{"a", "b"}, deleteList)
			require.NotNil(t, in.Name)
			assert.Equal(t, "Renamed", *in.Name)
			assert.Nil(t, in.Price)
			return &domain.Product{ID: id, Name: *in.Name}, nil
		},
	}
	router := newProductRouter(svc)

	req := newMultipartRequest(t, http.MethodPut, "/products/update/"+productID.String(), map[string]string{
		"name":          "Renamed",
		"delete_images": "a,b",
	}, 0)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProductHandlerRemove(t *testing.T) {
	productID := uuid.New()
	svc := &mockProductService{
		removeFunc: func(ctx context.Context, id uuid.UUID) error {
			assert.Equal(t, productID, id)
			return nil
		},
	}
	router := newProductRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/products/remove/"+productID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Product removed successfully", env.Message)
}

func TestProductHandlerUploadSignature(t *testing.T) {
	router := newProductRouter(&mockProductService{})

	req := httptest.NewRequest(http.MethodPost, "/products/cloudinary-signature", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cred struct {
		Signature    string `json:"signature"`
		Timestamp    int64  `json:"timestamp"`
		UploadPreset string `json:"upload_preset"`
	}
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &cred))
	assert.NotEmpty(t, cred.Signature)
	assert.NotZero(t, cred.Timestamp)
	assert.Equal(t, "preset", cred.UploadPreset)
}
