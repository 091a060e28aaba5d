package transport

import (
	"errors"
	"io"
	"net/http"

	"shoply/internal/media"
	"shoply/internal/middleware"
	"shoply/internal/repository"
	"shoply/internal/service"
)

// maxMultipartMemory caps in-memory multipart parsing; files stay buffered
// in memory like the original upload pipeline expects.
const maxMultipartMemory = 32 << 20

// imageFilesFromRequest parses the multipart form and buffers every file
// under the "images" field, preserving submission order.
func imageFilesFromRequest(r *http.Request) ([]service.ImageFile, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, err
	}

	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["images"]
	files := make([]service.ImageFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		files = append(files, service.ImageFile{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		})
	}

	return files, nil
}

// respondServiceError maps domain errors onto the HTTP taxonomy. Validation
// and not-found conditions surface as 4xx with their message; remote-store
// and unknown failures become a generic 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var limitErr *service.ImageLimitError

	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrNoImagesProvided),
		errors.Is(err, service.ErrEmptySearchTerm),
		errors.Is(err, service.ErrCategoryNameRequired),
		errors.Is(err, repository.ErrCategoryAlreadyExists):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &limitErr):
		middleware.RespondWithError(w, http.StatusBadRequest, limitErr.Error())

	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")

	case errors.Is(err, service.ErrImageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "image not found in product")

	default:
		var uploadErr *media.UploadError
		var deleteErr *media.DeletionError
		if errors.As(err, &uploadErr) || errors.As(err, &deleteErr) {
			middleware.RespondWithError(w, http.StatusInternalServerError, "media store error")
			return
		}
		middleware.RespondWithError(w, http.StatusInternalServerError, "server error")
	}
}
