package store

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waweruedwin8/alx-travel-app/pkg/models"
)

func (s *Store) CreateCategory(name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	var count int64
	if err := s.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConstraintViolationError{Constraint: "category name must be unique"}
	}

	category := models.Category{
		CategoryUid: uuid.New().String(),
		Name:        name,
		Description: description,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes a category. Listings referencing it keep existing
// with a nulled category, never cascade. Returns the uids of the listings
// whose reference was nulled so callers can drop cached copies.
func (s *Store) DeleteCategory(uid string) ([]string, error) {
	var affected []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("category_uid = ?", uid).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "category"}
			}
			return err
		}
		if err := tx.Model(&models.Listing{}).
			Where("category_id = ?", category.ID).
			Pluck("listing_uid", &affected).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Listing{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

func (s *Store) getCategory(tx *gorm.DB, uid string) (*models.Category, error) {
	var category models.Category
	if err := tx.Where("category_uid = ?", uid).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "category"}
		}
		return nil, err
	}
	return &category, nil
}
