package main

import (
	"log"

	"github.com/waweruedwin8/alx-travel-app/pkg/auth"
	"github.com/waweruedwin8/alx-travel-app/pkg/models"
	"github.com/waweruedwin8/alx-travel-app/pkg/store"
)

func seedTestData() {
	host, err := st.GetUserByUsername("demo_host")
	if err != nil {
		hash, err := auth.HashPassword("demo-password-123")
		if err != nil {
			log.Printf("Failed to hash demo password: %v", err)
			return
		}
		host, err = st.CreateUser("demo_host", "host@example.com", hash)
		if err != nil {
			log.Printf("Failed to create demo host: %v", err)
			return
		}
		log.Printf("Created demo host: %s", host.Username)
	}

	var beachfront *models.Category
	categories, err := st.ListCategories()
	if err != nil {
		log.Printf("Failed to list categories: %v", err)
		return
	}
	for i := range categories {
		if categories[i].Name == "Beachfront" {
			beachfront = &categories[i]
			break
		}
	}
	if beachfront == nil {
		beachfront, err = st.CreateCategory("Beachfront", "Steps from the water")
		if err != nil {
			log.Printf("Failed to create demo category: %v", err)
			return
		}
	}

	var count int64
	db.Model(&models.Listing{}).Count(&count)
	if count > 0 {
		log.Println("Listings already present, skipping seed")
		return
	}

	seeds := []store.ListingInput{
		{
			Title:         "Sunny Beach Apartment",
			Description:   "Two-bedroom apartment a short walk from the beach.",
			Location:      "Mombasa",
			Address:       "12 Ocean Drive",
			PricePerNight: 85,
			ListingType:   "apartment",
			CategoryUid:   beachfront.CategoryUid,
			MaxGuests:     4,
			Bedrooms:      2,
			Bathrooms:     1,
			Amenities:     "wifi, kitchen, air conditioning",
			MinimumNights: 2,
			MaximumNights: 30,
		},
		{
			Title:         "Hillside Villa",
			Description:   "Quiet villa with a garden and a view over the valley.",
			Location:      "Nairobi",
			Address:       "4 Ridge Lane",
			PricePerNight: 220,
			ListingType:   "villa",
			MaxGuests:     8,
			Bedrooms:      4,
			Bathrooms:     3,
			Amenities:     "wifi, pool, parking",
			MinimumNights: 3,
			MaximumNights: 90,
			Featured:      true,
		},
	}
	for _, in := range seeds {
		if _, err := st.CreateListing(host, in); err != nil {
			log.Printf("Failed to seed listing %q: %v", in.Title, err)
		}
	}
	log.Println("Listing test data seeded")
}
