package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shoply/internal/domain"
	"shoply/internal/media"
)

var (
	ErrNoImagesProvided = errors.New("no images uploaded")
	ErrImageNotFound    = errors.New("image not found in product")
)

// ImageLimitError reports a rejected batch together with how many more
// images the product can still take.
type ImageLimitError struct {
	Remaining int
}

func (e *ImageLimitError) Error() string {
	return fmt.Sprintf("you can only upload %d more image(s)", e.Remaining)
}

// ImageFile is one uploaded file buffered in memory, decoupled from the
// transport's multipart types.
type ImageFile struct {
	Data        []byte
	ContentType string
}

// ImageSetManager keeps a product's ordered image list consistent with the
// remote media store across mutations. It enforces the image-count bound
// before any upload is attempted and applies the configured consistency
// policy to destroy failures: legacy mode (default) logs and proceeds,
// strict mode surfaces the failure and keeps the local ref.
type ImageSetManager struct {
	store        media.Store
	logger       *zap.Logger
	strictDelete bool
}

// NewImageSetManager creates an ImageSetManager.
func NewImageSetManager(store media.Store, logger *zap.Logger, strictDelete bool) *ImageSetManager {
	return &ImageSetManager{
		store:        store,
		logger:       logger,
		strictDelete: strictDelete,
	}
}

// AddImages uploads the batch concurrently and appends the resulting refs to
// the product's image list in input order. The whole batch fails if any
// upload fails; refs uploaded by sibling goroutines are discarded and their
// remote objects orphaned (no cleanup pass, accepted trade-off).
func (m *ImageSetManager) AddImages(ctx context.Context, product *domain.Product, files []ImageFile) error {
	if len(files) == 0 {
		return ErrNoImagesProvided
	}

	if len(product.Images)+len(files) > domain.MaxProductImages {
		return &ImageLimitError{Remaining: product.RemainingImageSlots()}
	}

	refs, err := m.uploadAll(ctx, files)
	if err != nil {
		return err
	}

	product.Images = append(product.Images, refs...)
	return nil
}

// DeleteImage destroys one remote object and removes its ref from the
// product. A missing remote object counts as destroyed.
func (m *ImageSetManager) DeleteImage(ctx context.Context, product *domain.Product, remoteID string) error {
	if !product.Images.Contains(remoteID) {
		return ErrImageNotFound
	}

	if err := m.store.Destroy(ctx, remoteID); err != nil {
		if m.strictDelete {
			return err
		}
		m.logger.Warn("Media destroy failed, removing catalog reference anyway",
			zap.String("remote_id", remoteID),
			zap.Error(err),
		)
	}

	product.Images = product.Images.Remove(remoteID)
	return nil
}

// ReplaceImages reconciles the image list during a full product update:
// deletions are applied first, then the count bound is re-validated against
// the shrunken list, then the new batch is uploaded and appended.
func (m *ImageSetManager) ReplaceImages(ctx context.Context, product *domain.Product, newFiles []ImageFile, deleteList []string) error {
	// Validate the whole delete list up front so no remote call is wasted on
	// a request that names an unknown image.
	for _, remoteID := range deleteList {
		if !product.Images.Contains(remoteID) {
			return ErrImageNotFound
		}
	}

	for _, remoteID := range deleteList {
		if err := m.DeleteImage(ctx, product, remoteID); err != nil {
			return err
		}
	}

	if len(newFiles) == 0 {
		return nil
	}

	if len(product.Images)+len(newFiles) > domain.MaxProductImages {
		return &ImageLimitError{Remaining: product.RemainingImageSlots()}
	}

	refs, err := m.uploadAll(ctx, newFiles)
	if err != nil {
		return err
	}

	product.Images = append(product.Images, refs...)
	return nil
}

// RemoveAll destroys every remote object concurrently. Individual failures
// are collected and logged; in legacy mode they never abort the batch, so
// product deletion proceeds regardless. Strict mode returns the joined
// failures instead.
func (m *ImageSetManager) RemoveAll(ctx context.Context, product *domain.Product) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)

	for _, ref := range product.Images {
		wg.Add(1)
		go func(remoteID string) {
			defer wg.Done()
			if err := m.store.Destroy(ctx, remoteID); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
		}(ref.RemoteID)
	}
	wg.Wait()

	if len(failures) == 0 {
		product.Images = domain.ImageRefList{}
		return nil
	}

	for _, err := range failures {
		m.logger.Warn("Media destroy failed during product removal",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}

	if m.strictDelete {
		return errors.Join(failures...)
	}

	product.Images = domain.ImageRefList{}
	return nil
}

// uploadAll fans the batch out, one goroutine per file, and fans back in.
// Results land at their input index so order is deterministic. A failed
// upload does not cancel siblings; their results are simply discarded with
// the batch.
func (m *ImageSetManager) uploadAll(ctx context.Context, files []ImageFile) ([]domain.ImageRef, error) {
	refs := make([]domain.ImageRef, len(files))

	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			ref, err := m.store.Upload(ctx, media.UploadInput{
				Reader:      bytes.NewReader(file.Data),
				Size:        int64(len(file.Data)),
				ContentType: file.ContentType,
			})
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Error("Image batch upload failed", zap.Error(err))
		return nil, err
	}

	return refs, nil
}
