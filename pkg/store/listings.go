package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waweruedwin8/alx-travel-app/pkg/models"
)

// CanModify is the host-only mutation predicate.
func CanModify(actor *models.User, listing *models.Listing) bool {
	return actor != nil && actor.ID == listing.HostID
}

type ListingInput struct {
	Title         string
	Description   string
	Location      string
	Address       string
	PricePerNight float64
	ListingType   string
	CategoryUid   string
	MaxGuests     int
	Bedrooms      int
	Bathrooms     int
	Latitude      *float64
	Longitude     *float64
	Amenities     string
	HouseRules    string
	CheckInTime   string
	CheckOutTime  string
	MinimumNights int
	MaximumNights int
	Featured      bool
}

// ListingUpdate carries a partial update; nil fields are left untouched.
// Rating and TotalReviews are deliberately absent: they are derived.
type ListingUpdate struct {
	Title         *string
	Description   *string
	Location      *string
	Address       *string
	PricePerNight *float64
	ListingType   *string
	CategoryUid   *string
	MaxGuests     *int
	Bedrooms      *int
	Bathrooms     *int
	Latitude      *float64
	Longitude     *float64
	Amenities     *string
	HouseRules    *string
	CheckInTime   *string
	CheckOutTime  *string
	MinimumNights *int
	MaximumNights *int
	Featured      *bool
}

func validateListing(l *models.Listing) error {
	if strings.TrimSpace(l.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(l.Location) == "" {
		return &ValidationError{Field: "location", Reason: "must not be empty"}
	}
	if l.PricePerNight <= 0 {
		return &ValidationError{Field: "price_per_night", Reason: "must be greater than 0"}
	}
	if !models.IsValidListingType(l.ListingType) {
		return &ValidationError{Field: "listing_type", Reason: "must be one of " + strings.Join(models.ListingTypes, ", ")}
	}
	if l.MaxGuests < 1 {
		return &ValidationError{Field: "max_guests", Reason: "must be at least 1"}
	}
	if l.Bedrooms < 1 {
		return &ValidationError{Field: "bedrooms", Reason: "must be at least 1"}
	}
	if l.Bathrooms < 1 {
		return &ValidationError{Field: "bathrooms", Reason: "must be at least 1"}
	}
	if l.MinimumNights < 1 || l.MaximumNights < 1 {
		return &ValidationError{Field: "minimum_nights", Reason: "night bounds must be positive"}
	}
	if l.MinimumNights > l.MaximumNights {
		return &ValidationError{Field: "maximum_nights", Reason: "must be greater than or equal to minimum_nights"}
	}
	for _, v := range []struct{ field, value string }{
		{"check_in_time", l.CheckInTime},
		{"check_out_time", l.CheckOutTime},
	} {
		if v.value == "" {
			continue
		}
		if _, err := time.Parse("15:04", v.value); err != nil {
			return &ValidationError{Field: v.field, Reason: "must be in HH:MM format"}
		}
	}
	return nil
}

func (s *Store) CreateListing(host *models.User, in ListingInput) (*models.Listing, error) {
	if host == nil {
		return nil, &PermissionDeniedError{Reason: "authentication required"}
	}

	listing := models.Listing{
		ListingUid:    uuid.New().String(),
		Title:         in.Title,
		Description:   in.Description,
		Location:      in.Location,
		Address:       in.Address,
		PricePerNight: in.PricePerNight,
		ListingType:   in.ListingType,
		MaxGuests:     in.MaxGuests,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Amenities:     in.Amenities,
		HouseRules:    in.HouseRules,
		CheckInTime:   in.CheckInTime,
		CheckOutTime:  in.CheckOutTime,
		MinimumNights: in.MinimumNights,
		MaximumNights: in.MaximumNights,
		HostID:        host.ID,
		IsActive:      true,
		Featured:      in.Featured,
	}

	// Source defaults.
	if listing.ListingType == "" {
		listing.ListingType = "apartment"
	}
	if listing.MaxGuests == 0 {
		listing.MaxGuests = 1
	}
	if listing.Bedrooms == 0 {
		listing.Bedrooms = 1
	}
	if listing.Bathrooms == 0 {
		listing.Bathrooms = 1
	}
	if listing.MinimumNights == 0 {
		listing.MinimumNights = 1
	}
	if listing.MaximumNights == 0 {
		listing.MaximumNights = 365
	}

	if in.CategoryUid != "" {
		category, err := s.getCategory(s.db, in.CategoryUid)
		if err != nil {
			return nil, err
		}
		listing.CategoryID = &category.ID
	}

	if err := validateListing(&listing); err != nil {
		return nil, err
	}
	if err := s.db.Create(&listing).Error; err != nil {
		return nil, err
	}
	return s.GetListing(listing.ListingUid, false)
}

// GetListing loads a listing with its associations. Inactive listings are
// hidden unless includeInactive is set.
func (s *Store) GetListing(uid string, includeInactive bool) (*models.Listing, error) {
	query := s.db.Where("listing_uid = ?", uid)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var listing models.Listing
	err := query.
		Preload("Host").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Reviews.Reviewer").
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "listing"}
		}
		return nil, err
	}
	return &listing, nil
}

func (s *Store) UpdateListing(actor *models.User, uid string, up ListingUpdate) (*models.Listing, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("listing_uid = ? AND is_active = ?", uid, true).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "listing"}
			}
			return err
		}
		if !CanModify(actor, &listing) {
			return &PermissionDeniedError{Reason: "only the host can modify this listing"}
		}

		if up.Title != nil {
			listing.Title = *up.Title
		}
		if up.Description != nil {
			listing.Description = *up.Description
		}
		if up.Location != nil {
			listing.Location = *up.Location
		}
		if up.Address != nil {
			listing.Address = *up.Address
		}
		if up.PricePerNight != nil {
			listing.PricePerNight = *up.PricePerNight
		}
		if up.ListingType != nil {
			listing.ListingType = *up.ListingType
		}
		if up.CategoryUid != nil {
			if *up.CategoryUid == "" {
				listing.CategoryID = nil
			} else {
				category, err := s.getCategory(tx, *up.CategoryUid)
				if err != nil {
					return err
				}
				listing.CategoryID = &category.ID
			}
		}
		if up.MaxGuests != nil {
			listing.MaxGuests = *up.MaxGuests
		}
		if up.Bedrooms != nil {
			listing.Bedrooms = *up.Bedrooms
		}
		if up.Bathrooms != nil {
			listing.Bathrooms = *up.Bathrooms
		}
		if up.Latitude != nil {
			listing.Latitude = up.Latitude
		}
		if up.Longitude != nil {
			listing.Longitude = up.Longitude
		}
		if up.Amenities != nil {
			listing.Amenities = *up.Amenities
		}
		if up.HouseRules != nil {
			listing.HouseRules = *up.HouseRules
		}
		if up.CheckInTime != nil {
			listing.CheckInTime = *up.CheckInTime
		}
		if up.CheckOutTime != nil {
			listing.CheckOutTime = *up.CheckOutTime
		}
		if up.MinimumNights != nil {
			listing.MinimumNights = *up.MinimumNights
		}
		if up.MaximumNights != nil {
			listing.MaximumNights = *up.MaximumNights
		}
		if up.Featured != nil {
			listing.Featured = *up.Featured
		}

		if err := validateListing(&listing); err != nil {
			return err
		}
		return tx.Save(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetListing(uid, false)
}

// SoftDeleteListing flags the listing inactive. Images and reviews stay
// retrievable by direct reference.
func (s *Store) SoftDeleteListing(actor *models.User, uid string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("listing_uid = ? AND is_active = ?", uid, true).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "listing"}
			}
			return err
		}
		if !CanModify(actor, &listing) {
			return &PermissionDeniedError{Reason: "only the host can delete this listing"}
		}
		return tx.Model(&listing).Update("is_active", false).Error
	})
}

type ListingFilter struct {
	Location    string
	MinPrice    *float64
	MaxPrice    *float64
	ListingType string
	Search      string
	Featured    *bool
	Ordering    string
	Page        int
	Size        int
}

var orderColumns = map[string]string{
	"price_per_night": "price_per_night",
	"rating":          "rating",
	"created_at":      "created_at",
}

func (f ListingFilter) orderClause() (string, error) {
	ordering := f.Ordering
	if ordering == "" {
		ordering = "-created_at"
	}
	direction := "ASC"
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		ordering = ordering[1:]
	}
	column, ok := orderColumns[ordering]
	if !ok {
		return "", &ValidationError{Field: "ordering", Reason: "must be one of price_per_night, rating, created_at"}
	}
	return column + " " + direction, nil
}

func (s *Store) filteredListings(f ListingFilter) *gorm.DB {
	query := s.db.Model(&models.Listing{}).Where("is_active = ?", true)
	if f.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}
	if f.MinPrice != nil {
		query = query.Where("price_per_night >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price_per_night <= ?", *f.MaxPrice)
	}
	if f.ListingType != "" {
		query = query.Where("listing_type = ?", f.ListingType)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if f.Featured != nil {
		query = query.Where("featured = ?", *f.Featured)
	}
	return query
}

// ListListings returns the page of active listings matching every supplied
// filter, plus the total match count.
func (s *Store) ListListings(f ListingFilter) ([]models.Listing, int64, error) {
	if f.ListingType != "" && !models.IsValidListingType(f.ListingType) {
		return nil, 0, &ValidationError{Field: "listing_type", Reason: "must be one of " + strings.Join(models.ListingTypes, ", ")}
	}
	order, err := f.orderClause()
	if err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.Size
	if size < 1 || size > 100 {
		size = 10
	}

	var total int64
	if err := s.filteredListings(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err = s.filteredListings(f).
		Order(order).
		Offset((page - 1) * size).
		Limit(size).
		Preload("Host").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
