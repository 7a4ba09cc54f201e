package store

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waweruedwin8/alx-travel-app/pkg/models"
)

func validateReviewRating(rating int) error {
	if rating < 1 || rating > 5 {
		return &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	return nil
}

// roundHalfEven rounds to 2 decimal places with ties going to the even
// digit, so a mean of 1.125 stores as 1.12.
func roundHalfEven(v float64) float64 {
	scaled := v * 100
	floor := math.Floor(scaled)
	switch diff := scaled - floor; {
	case diff > 0.5:
		floor++
	case diff == 0.5:
		if math.Mod(floor, 2) != 0 {
			floor++
		}
	}
	return floor / 100
}

// recomputeRating rewrites the listing's derived rating and total_reviews
// from the current review set. Must run inside the same transaction as the
// review write that triggered it, after the listing row has been locked.
func recomputeRating(tx *gorm.DB, listingID uint) error {
	var reviews []models.Review
	if err := tx.Where("listing_id = ?", listingID).Find(&reviews).Error; err != nil {
		return err
	}
	rating := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		rating = roundHalfEven(float64(sum) / float64(len(reviews)))
	}
	return tx.Model(&models.Listing{}).Where("id = ?", listingID).Updates(map[string]interface{}{
		"rating":        rating,
		"total_reviews": len(reviews),
	}).Error
}

// ListReviews returns a listing's reviews newest first. Works for inactive
// listings too: soft delete keeps reviews reachable by direct reference.
func (s *Store) ListReviews(listingUid string) ([]models.Review, error) {
	var listing models.Listing
	if err := s.db.Where("listing_uid = ?", listingUid).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "listing"}
		}
		return nil, err
	}
	var reviews []models.Review
	err := s.db.Where("listing_id = ?", listing.ID).
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Store) CreateReview(reviewer *models.User, listingUid string, rating int, comment string) (*models.Review, error) {
	if reviewer == nil {
		return nil, &PermissionDeniedError{Reason: "authentication required"}
	}
	if err := validateReviewRating(rating); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, listingUid, false)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Review{}).
			Where("listing_id = ? AND reviewer_id = ?", listing.ID, reviewer.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConstraintViolationError{Constraint: "reviewer already reviewed this listing"}
		}

		review = models.Review{
			ReviewUid:  uuid.New().String(),
			ListingID:  listing.ID,
			ReviewerID: reviewer.ID,
			Rating:     rating,
			Comment:    comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, listing.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Reviewer").First(&review, review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *Store) UpdateReview(actor *models.User, listingUid, reviewUid string, rating int, comment string) (*models.Review, error) {
	if actor == nil {
		return nil, &PermissionDeniedError{Reason: "authentication required"}
	}
	if err := validateReviewRating(rating); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, listingUid, true)
		if err != nil {
			return err
		}
		if err := tx.Where("review_uid = ? AND listing_id = ?", reviewUid, listing.ID).
			First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "review"}
			}
			return err
		}
		if review.ReviewerID != actor.ID {
			return &PermissionDeniedError{Reason: "only the reviewer can modify this review"}
		}
		review.Rating = rating
		review.Comment = comment
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, listing.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Reviewer").First(&review, review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review and re-runs the aggregate, so rating and
// total_reviews never go stale on deletion.
func (s *Store) DeleteReview(actor *models.User, listingUid, reviewUid string) error {
	if actor == nil {
		return &PermissionDeniedError{Reason: "authentication required"}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, listingUid, true)
		if err != nil {
			return err
		}
		var review models.Review
		if err := tx.Where("review_uid = ? AND listing_id = ?", reviewUid, listing.ID).
			First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "review"}
			}
			return err
		}
		if review.ReviewerID != actor.ID {
			return &PermissionDeniedError{Reason: "only the reviewer can delete this review"}
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, listing.ID)
	})
}
