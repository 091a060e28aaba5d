package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoply/internal/media"
	"shoply/internal/middleware"
	"shoply/internal/service"
)

// DeleteImageRequest names the image to drop from a product
type DeleteImageRequest struct {
	RemoteID string `json:"remote_id" validate:"required"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	products service.ProductService
	signer   *media.Signer
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, signer *media.Signer, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		signer:   signer,
		logger:   logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Post("/cloudinary-signature", h.UploadSignature)
		r.Get("/{id}", h.GetByID)
		r.Put("/update/{id}", h.Update)
		r.Delete("/deleteImage/{id}", h.DeleteImage)
		r.Post("/add-image/{id}", h.AddImages)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/add", h.Create)
			r.Delete("/remove/{id}", h.Remove)
		})
	})
}

// Create handles POST /products/add: multipart fields plus up to 5 images
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	files, err := imageFilesFromRequest(r)
	if err != nil {
		h.logger.Debug("Failed to parse multipart form", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	in := service.ProductCreateInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
	}

	product, err := h.products.Create(r.Context(), in, files)
	if err != nil {
		h.logger.Error("Product creation failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Product added", zap.String("product_id", product.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, "Product added successfully", product)
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", products)
}

// Search handles GET /products/search?search=term
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")

	products, err := h.products.Search(r.Context(), term)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", products)
}

// GetByID handles GET /products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", product)
}

// Update handles PUT /products/update/{id}: optional field changes, optional
// new images and an optional delete list, all in one multipart request
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	files, err := imageFilesFromRequest(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := service.ProductUpdateInput{}
	if v := r.FormValue("name"); v != "" {
		in.Name = &v
	}
	if v := r.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
			return
		}
		in.Price = &price
	}
	if v := r.FormValue("category"); v != "" {
		in.Category = &v
	}

	deleteList := r.Form["delete_images"]
	if len(deleteList) == 1 && strings.Contains(deleteList[0], ",") {
		deleteList = strings.Split(deleteList[0], ",")
	}

	product, err := h.products.Update(r.Context(), id, in, files, deleteList)
	if err != nil {
		h.logger.Error("Product update failed", zap.Error(err), zap.String("product_id", id.String()))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "Product updated successfully", product)
}

// Remove handles DELETE /products/remove/{id}
func (h *ProductHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.products.Remove(r.Context(), id); err != nil {
		h.logger.Error("Product removal failed", zap.Error(err), zap.String("product_id", id.String()))
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "Product removed successfully", nil)
}

// DeleteImage handles DELETE /products/deleteImage/{id}; the body names the
// target image by its remote identifier
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req DeleteImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "image remote_id is required")
		return
	}

	product, err := h.products.DeleteImage(r.Context(), id, req.RemoteID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "Image deleted successfully", product)
}

// AddImages handles POST /products/add-image/{id}: up to 5 files total
func (h *ProductHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	files, err := imageFilesFromRequest(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	product, err := h.products.AddImages(r.Context(), id, files)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "Image(s) added successfully", product)
}

// UploadSignature handles POST /products/cloudinary-signature: a short-lived
// signed credential for direct client-to-store uploads
func (h *ProductHandler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	cred := h.signer.Sign()
	middleware.RespondWithData(w, http.StatusOK, "", cred)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}
