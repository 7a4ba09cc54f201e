package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/waweruedwin8/alx-travel-app/pkg/models"
)

// Store is the single data-access boundary. Every invariant on the entities
// is enforced here so no caller can bypass it.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// lockListing loads a listing row by uid, taking a row lock for the duration
// of the transaction so concurrent review writes serialize per listing.
// sqlite has no SELECT FOR UPDATE; its write transactions serialize on the
// database lock anyway.
func lockListing(tx *gorm.DB, uid string, includeInactive bool) (*models.Listing, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	q = q.Where("listing_uid = ?", uid)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var listing models.Listing
	if err := q.First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "listing"}
		}
		return nil, err
	}
	return &listing, nil
}
