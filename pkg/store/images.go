package store

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waweruedwin8/alx-travel-app/pkg/models"
)

type ImageInput struct {
	URL          string
	Caption      string
	IsPrimary    bool
	DisplayOrder int
}

// AddImage attaches an image to a listing. Host only; display order is
// unique within the listing, and at most one image is primary.
func (s *Store) AddImage(actor *models.User, listingUid string, in ImageInput) (*models.ListingImage, error) {
	if actor == nil {
		return nil, &PermissionDeniedError{Reason: "authentication required"}
	}
	if strings.TrimSpace(in.URL) == "" {
		return nil, &ValidationError{Field: "url", Reason: "must not be empty"}
	}
	if in.DisplayOrder < 0 {
		return nil, &ValidationError{Field: "order", Reason: "must not be negative"}
	}

	var image models.ListingImage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, listingUid, false)
		if err != nil {
			return err
		}
		if !CanModify(actor, listing) {
			return &PermissionDeniedError{Reason: "only the host can add images to this listing"}
		}

		var count int64
		if err := tx.Model(&models.ListingImage{}).
			Where("listing_id = ? AND display_order = ?", listing.ID, in.DisplayOrder).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConstraintViolationError{Constraint: "image order must be unique within a listing"}
		}

		if in.IsPrimary {
			if err := tx.Model(&models.ListingImage{}).
				Where("listing_id = ?", listing.ID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}

		image = models.ListingImage{
			ImageUid:     uuid.New().String(),
			ListingID:    listing.ID,
			URL:          in.URL,
			Caption:      in.Caption,
			IsPrimary:    in.IsPrimary,
			DisplayOrder: in.DisplayOrder,
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetImage looks an image up by its own uid, regardless of the parent
// listing's active flag.
func (s *Store) GetImage(uid string) (*models.ListingImage, error) {
	var image models.ListingImage
	if err := s.db.Where("image_uid = ?", uid).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "image"}
		}
		return nil, err
	}
	return &image, nil
}
