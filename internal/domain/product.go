package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxProductImages is the upper bound on a product's image list. It is
// enforced before any upload is attempted so a doomed batch never reaches
// the media store.
const MaxProductImages = 5

// ImageRef points at one stored image: the media store's identifier used for
// later deletion, and the retrievable URL returned at upload time. The URL is
// derived from the remote ID and never mutated independently.
type ImageRef struct {
	RemoteID string `json:"remote_id"`
	URL      string `json:"url"`
}

// ImageRefList is the ordered image set of a product, persisted as a JSONB
// column. Order reflects insertion order; append-only except explicit
// deletion.
type ImageRefList []ImageRef

// Scan implements sql.Scanner for the JSONB images column.
func (l *ImageRefList) Scan(value any) error {
	if value == nil {
		*l = ImageRefList{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type %T for ImageRefList", value)
	}

	if err := json.Unmarshal(b, l); err != nil {
		return fmt.Errorf("failed to unmarshal images JSONB: %w", err)
	}
	return nil
}

// Value implements driver.Valuer for the JSONB images column.
func (l ImageRefList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte(`[]`), nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images to JSONB: %w", err)
	}
	return b, nil
}

// Contains reports whether the list holds a ref with the given remote ID.
func (l ImageRefList) Contains(remoteID string) bool {
	for _, ref := range l {
		if ref.RemoteID == remoteID {
			return true
		}
	}
	return false
}

// Remove returns a copy of the list without the ref matching remoteID,
// preserving the order of the remaining refs.
func (l ImageRefList) Remove(remoteID string) ImageRefList {
	out := make(ImageRefList, 0, len(l))
	for _, ref := range l {
		if ref.RemoteID != remoteID {
			out = append(out, ref)
		}
	}
	return out
}

// Product represents a catalog item
type Product struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description string       `json:"description" db:"description"`
	Price       float64      `json:"price" db:"price"`
	CategoryID  uuid.UUID    `json:"category_id" db:"category_id"`
	Category    string       `json:"category,omitempty"`
	Images      ImageRefList `json:"images" db:"images"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// RemainingImageSlots returns how many more images the product may hold.
func (p *Product) RemainingImageSlots() int {
	return MaxProductImages - len(p.Images)
}

// Category represents a product category. Categories are referenced, never
// owned, by products; names are unique case-insensitively.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
