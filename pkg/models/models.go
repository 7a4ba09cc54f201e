package models

import (
	"strings"
	"time"
)

// ListingTypes are the accepted values for Listing.ListingType.
var ListingTypes = []string{"apartment", "house", "villa", "hotel", "hostel", "resort"}

func IsValidListingType(t string) bool {
	for _, v := range ListingTypes {
		if v == t {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	UserUid      string `gorm:"type:uuid;uniqueIndex;not null"`
	Username     string `gorm:"size:80;not null;uniqueIndex"`
	Email        string `gorm:"size:120"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	CategoryUid string `gorm:"type:uuid;uniqueIndex;not null"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string
	CreatedAt   time.Time
}

type Listing struct {
	ID            uint   `gorm:"primaryKey"`
	ListingUid    string `gorm:"type:uuid;uniqueIndex;not null"`
	Title         string `gorm:"size:200;not null"`
	Description   string
	Location      string `gorm:"size:100;not null;index"`
	Address       string
	PricePerNight float64 `gorm:"not null;index"`
	ListingType   string  `gorm:"size:20;not null;default:'apartment'"`
	CategoryID    *uint
	Category      *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	MaxGuests     int       `gorm:"not null;default:1"`
	Bedrooms      int       `gorm:"not null;default:1"`
	Bathrooms     int       `gorm:"not null;default:1"`

	// Rating and TotalReviews are derived from the Review set and are only
	// ever written by the store's recompute step.
	Rating       float64 `gorm:"not null;default:0;index;check:rating >= 0 AND rating <= 5"`
	TotalReviews int     `gorm:"not null;default:0"`

	Latitude      *float64
	Longitude     *float64
	Amenities     string // comma-separated
	HouseRules    string
	CheckInTime   string `gorm:"size:5"`
	CheckOutTime  string `gorm:"size:5"`
	MinimumNights int    `gorm:"not null;default:1"`
	MaximumNights int    `gorm:"not null;default:365"`
	HostID        uint   `gorm:"not null;index"`
	Host          User   `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE"`
	IsActive      bool   `gorm:"not null;default:true;index"`
	Featured      bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Images  []ListingImage `gorm:"foreignKey:ListingID"`
	Reviews []Review       `gorm:"foreignKey:ListingID"`
}

// AmenitiesList splits the comma-separated amenities field.
func (l *Listing) AmenitiesList() []string {
	if l.Amenities == "" {
		return []string{}
	}
	parts := strings.Split(l.Amenities, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type ListingImage struct {
	ID           uint    `gorm:"primaryKey"`
	ImageUid     string  `gorm:"type:uuid;uniqueIndex;not null"`
	ListingID    uint    `gorm:"not null;uniqueIndex:idx_listing_image_order"`
	Listing      Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	URL          string  `gorm:"not null"`
	Caption      string  `gorm:"size:200"`
	IsPrimary    bool    `gorm:"not null;default:false"`
	DisplayOrder int     `gorm:"not null;default:0;uniqueIndex:idx_listing_image_order"`
	CreatedAt    time.Time
}

type Review struct {
	ID         uint    `gorm:"primaryKey"`
	ReviewUid  string  `gorm:"type:uuid;uniqueIndex;not null"`
	ListingID  uint    `gorm:"not null;uniqueIndex:idx_listing_reviewer"`
	Listing    Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	ReviewerID uint    `gorm:"not null;uniqueIndex:idx_listing_reviewer"`
	Reviewer   User    `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE"`
	Rating     int     `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string  `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
