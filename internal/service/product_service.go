package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoply/internal/cache"
	"shoply/internal/domain"
	"shoply/internal/repository"
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrCategoryNotFound = errors.New("category does not exist")
	ErrEmptySearchTerm  = errors.New("search term is required")
)

const (
	productListCacheKey = "products:all"
	productCacheTTL     = 5 * time.Minute
)

func productCacheKey(id uuid.UUID) string {
	return "products:id:" + id.String()
}

// ProductCreateInput carries the validated-at-transport fields for creation.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
}

// ProductUpdateInput carries optional field changes; nil means unchanged.
type ProductUpdateInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	Create(ctx context.Context, in ProductCreateInput, files []ImageFile) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Search(ctx context.Context, term string) ([]*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductUpdateInput, newFiles []ImageFile, deleteList []string) (*domain.Product, error)
	Remove(ctx context.Context, id uuid.UUID) error
	AddImages(ctx context.Context, id uuid.UUID, files []ImageFile) (*domain.Product, error)
	DeleteImage(ctx context.Context, id uuid.UUID, remoteID string) (*domain.Product, error)
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	images     *ImageSetManager
	cache      cache.Cache
	logger     *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	images *ImageSetManager,
	c cache.Cache,
	logger *zap.Logger,
) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		images:     images,
		cache:      c,
		logger:     logger,
	}
}

// Create validates the input, resolves the category, uploads the image batch
// and persists the product. Validation failures are detected before any
// remote-store call is attempted.
func (s *productService) Create(ctx context.Context, in ProductCreateInput, files []ImageFile) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, ErrMissingFields
	}
	if in.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, ErrNoImagesProvided
	}
	if len(files) > domain.MaxProductImages {
		return nil, &ImageLimitError{Remaining: domain.MaxProductImages}
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  category.ID,
		Category:    category.Name,
		Images:      domain.ImageRefList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.images.AddImages(ctx, product, files); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, product.ID)
	return product, nil
}

// List returns all products, served from cache when possible.
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	var cached []*domain.Product
	if err := s.cache.GetJSON(ctx, productListCacheKey, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Product list cache read failed", zap.Error(err))
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if err := s.cache.SetJSON(ctx, productListCacheKey, products, productCacheTTL); err != nil {
		s.logger.Warn("Product list cache write failed", zap.Error(err))
	}

	return products, nil
}

// GetByID returns one product, served from cache when possible.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var cached domain.Product
	if err := s.cache.GetJSON(ctx, productCacheKey(id), &cached); err == nil {
		return &cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, productCacheKey(id), product, productCacheTTL); err != nil {
		s.logger.Warn("Product cache write failed", zap.Error(err))
	}

	return product, nil
}

// Search finds products by case-insensitive substring match on name. An
// empty term is always rejected; it never falls back to an unfiltered list.
func (s *productService) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptySearchTerm
	}

	products, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return products, nil
}

// Update applies field changes and delegates image reconciliation to the
// image set manager, then persists the fully reconciled product.
func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductUpdateInput, newFiles []ImageFile, deleteList []string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, ErrMissingFields
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, ErrMissingFields
		}
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		product.Price = *in.Price
	}
	if in.Category != nil {
		category, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.Category = category.Name
	}

	if err := s.images.ReplaceImages(ctx, product, newFiles, deleteList); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.ID)
	return product, nil
}

// Remove releases all owned remote images, then deletes the catalog record.
// Under the default policy media failures are logged and never block the
// catalog deletion.
func (s *productService) Remove(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.images.RemoveAll(ctx, product); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// AddImages appends a new batch to an existing product's image list.
func (s *productService) AddImages(ctx context.Context, id uuid.UUID, files []ImageFile) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.images.AddImages(ctx, product, files); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.ID)
	return product, nil
}

// DeleteImage removes one image from a product.
func (s *productService) DeleteImage(ctx context.Context, id uuid.UUID, remoteID string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.images.DeleteImage(ctx, product, remoteID); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.ID)
	return product, nil
}

func (s *productService) resolveCategory(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	return category, nil
}

// invalidate drops the cached list and the cached product. Cache failures
// are logged only; the database remains the source of truth.
func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, productListCacheKey, productCacheKey(id)); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
}
