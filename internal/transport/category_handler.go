package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shoply/internal/middleware"
	"shoply/internal/service"
)

// AddCategoryRequest carries the new category name
type AddCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categories service.CategoryService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Post("/add", h.Add)
		r.Get("/", h.List)
	})
}

// Add handles POST /categories/add
func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categories.Add(r.Context(), req.Name)
	if err != nil {
		h.logger.Debug("Category creation failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Category added", zap.String("name", category.Name))
	middleware.RespondWithData(w, http.StatusOK, "Category added", category)
}

// List handles GET /categories/
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", categories)
}
