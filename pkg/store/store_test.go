package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/waweruedwin8/alx-travel-app/pkg/models"
)

func setupStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Review{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return New(db)
}

func createTestUser(t *testing.T, s *Store, username string) *models.User {
	user, err := s.CreateUser(username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestListing(t *testing.T, s *Store, host *models.User, title string, price float64) *models.Listing {
	listing, err := s.CreateListing(host, ListingInput{
		Title:         title,
		Location:      "Mombasa",
		PricePerNight: price,
		MinimumNights: 2,
		MaximumNights: 10,
	})
	if err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

func TestCreateListingValidation(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")

	_, err := s.CreateListing(host, ListingInput{
		Title:         "Bad nights",
		Location:      "Nairobi",
		PricePerNight: 100,
		MinimumNights: 10,
		MaximumNights: 2,
	})
	assert.True(t, IsValidation(err))

	_, err = s.CreateListing(host, ListingInput{
		Title:         "Free stay",
		Location:      "Nairobi",
		PricePerNight: 0,
	})
	assert.True(t, IsValidation(err))

	_, err = s.CreateListing(host, ListingInput{
		Title:         "Weird type",
		Location:      "Nairobi",
		PricePerNight: 100,
		ListingType:   "castle",
	})
	assert.True(t, IsValidation(err))
}

func TestCreateListingDefaults(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")

	listing, err := s.CreateListing(host, ListingInput{
		Title:         "Minimal",
		Location:      "Kisumu",
		PricePerNight: 50,
	})
	assert.NoError(t, err)
	assert.Equal(t, "apartment", listing.ListingType)
	assert.Equal(t, 1, listing.MaxGuests)
	assert.Equal(t, 1, listing.MinimumNights)
	assert.Equal(t, 365, listing.MaximumNights)
	assert.Equal(t, 0.0, listing.Rating)
	assert.Equal(t, 0, listing.TotalReviews)
	assert.True(t, listing.IsActive)
	assert.NotEmpty(t, listing.ListingUid)
}

func TestRatingRecompute(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	u1 := createTestUser(t, s, "guest1")
	u2 := createTestUser(t, s, "guest2")
	listing := createTestListing(t, s, host, "Reviewed", 100)

	_, err := s.CreateReview(u1, listing.ListingUid, 4, "nice")
	assert.NoError(t, err)
	_, err = s.CreateReview(u2, listing.ListingUid, 2, "meh")
	assert.NoError(t, err)

	got, err := s.GetListing(listing.ListingUid, false)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, got.Rating)
	assert.Equal(t, 2, got.TotalReviews)
}

func TestRatingRecomputeRounding(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	listing := createTestListing(t, s, host, "Rounded", 100)

	for i, rating := range []int{5, 4, 4} {
		reviewer := createTestUser(t, s, "guest"+string(rune('a'+i)))
		_, err := s.CreateReview(reviewer, listing.ListingUid, rating, "")
		assert.NoError(t, err)
	}

	got, _ := s.GetListing(listing.ListingUid, false)
	// 13/3 = 4.333... rounds to 4.33
	assert.Equal(t, 4.33, got.Rating)
	assert.Equal(t, 3, got.TotalReviews)
}

func TestRatingRecomputeTieRoundsToEven(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	listing := createTestListing(t, s, host, "Tied", 100)

	// Seven ones and a two: mean 1.125, which rounds half-to-even to 1.12.
	ratings := []int{1, 1, 1, 1, 1, 1, 1, 2}
	for i, rating := range ratings {
		reviewer := createTestUser(t, s, "guest"+string(rune('a'+i)))
		_, err := s.CreateReview(reviewer, listing.ListingUid, rating, "")
		assert.NoError(t, err)
	}

	got, _ := s.GetListing(listing.ListingUid, false)
	assert.Equal(t, 1.12, got.Rating)
	assert.Equal(t, 8, got.TotalReviews)
}

func TestRatingRecomputeOnUpdateAndDelete(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	u1 := createTestUser(t, s, "guest1")
	u2 := createTestUser(t, s, "guest2")
	listing := createTestListing(t, s, host, "Changing", 100)

	r1, err := s.CreateReview(u1, listing.ListingUid, 4, "")
	assert.NoError(t, err)
	_, err = s.CreateReview(u2, listing.ListingUid, 2, "")
	assert.NoError(t, err)

	_, err = s.UpdateReview(u1, listing.ListingUid, r1.ReviewUid, 5, "better")
	assert.NoError(t, err)
	got, _ := s.GetListing(listing.ListingUid, false)
	assert.Equal(t, 3.5, got.Rating)
	assert.Equal(t, 2, got.TotalReviews)

	err = s.DeleteReview(u1, listing.ListingUid, r1.ReviewUid)
	assert.NoError(t, err)
	got, _ = s.GetListing(listing.ListingUid, false)
	assert.Equal(t, 2.0, got.Rating)
	assert.Equal(t, 1, got.TotalReviews)
}

func TestRatingResetsWhenLastReviewDeleted(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	guest := createTestUser(t, s, "guest")
	listing := createTestListing(t, s, host, "Emptied", 100)

	review, err := s.CreateReview(guest, listing.ListingUid, 5, "")
	assert.NoError(t, err)
	err = s.DeleteReview(guest, listing.ListingUid, review.ReviewUid)
	assert.NoError(t, err)

	got, _ := s.GetListing(listing.ListingUid, false)
	assert.Equal(t, 0.0, got.Rating)
	assert.Equal(t, 0, got.TotalReviews)
}

func TestDuplicateReviewRejected(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	guest := createTestUser(t, s, "guest")
	listing := createTestListing(t, s, host, "Once only", 100)

	_, err := s.CreateReview(guest, listing.ListingUid, 4, "")
	assert.NoError(t, err)
	_, err = s.CreateReview(guest, listing.ListingUid, 5, "again")
	assert.True(t, IsConstraintViolation(err))

	got, _ := s.GetListing(listing.ListingUid, false)
	assert.Equal(t, 1, got.TotalReviews)
}

func TestCreateReviewPropagatesStoreErrors(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	guest := createTestUser(t, s, "guest")
	listing := createTestListing(t, s, host, "Broken", 100)

	// A failing uniqueness check must surface as an error, not read as
	// "no duplicate" and fall through.
	if err := s.db.Migrator().DropTable(&models.Review{}); err != nil {
		t.Fatalf("failed to drop reviews table: %v", err)
	}
	_, err := s.CreateReview(guest, listing.ListingUid, 4, "")
	assert.Error(t, err)
	assert.False(t, IsConstraintViolation(err))
	assert.False(t, IsValidation(err))
}

func TestReviewRatingRange(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	guest := createTestUser(t, s, "guest")
	listing := createTestListing(t, s, host, "Ranged", 100)

	_, err := s.CreateReview(guest, listing.ListingUid, 0, "")
	assert.True(t, IsValidation(err))
	_, err = s.CreateReview(guest, listing.ListingUid, 6, "")
	assert.True(t, IsValidation(err))
}

func TestImageOrderUniquePerListing(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	listing := createTestListing(t, s, host, "Pictured", 100)
	other := createTestListing(t, s, host, "Other", 100)

	_, err := s.AddImage(host, listing.ListingUid, ImageInput{URL: "http://img/1", DisplayOrder: 0})
	assert.NoError(t, err)
	_, err = s.AddImage(host, listing.ListingUid, ImageInput{URL: "http://img/2", DisplayOrder: 0})
	assert.True(t, IsConstraintViolation(err))

	// Same order on another listing is fine.
	_, err = s.AddImage(host, other.ListingUid, ImageInput{URL: "http://img/3", DisplayOrder: 0})
	assert.NoError(t, err)
}

func TestImagePrimaryIsExclusive(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	listing := createTestListing(t, s, host, "Pictured", 100)

	first, err := s.AddImage(host, listing.ListingUid, ImageInput{URL: "http://img/1", IsPrimary: true, DisplayOrder: 0})
	assert.NoError(t, err)
	_, err = s.AddImage(host, listing.ListingUid, ImageInput{URL: "http://img/2", IsPrimary: true, DisplayOrder: 1})
	assert.NoError(t, err)

	reloaded, err := s.GetImage(first.ImageUid)
	assert.NoError(t, err)
	assert.False(t, reloaded.IsPrimary)
}

func TestImageRequiresHost(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	stranger := createTestUser(t, s, "stranger")
	listing := createTestListing(t, s, host, "Guarded", 100)

	_, err := s.AddImage(stranger, listing.ListingUid, ImageInput{URL: "http://img/1"})
	assert.True(t, IsPermissionDenied(err))
}

func TestUpdateListingHostOnly(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	stranger := createTestUser(t, s, "stranger")
	listing := createTestListing(t, s, host, "Original title", 100)

	newTitle := "Hijacked"
	_, err := s.UpdateListing(stranger, listing.ListingUid, ListingUpdate{Title: &newTitle})
	assert.True(t, IsPermissionDenied(err))

	got, _ := s.GetListing(listing.ListingUid, false)
	assert.Equal(t, "Original title", got.Title)

	_, err = s.UpdateListing(host, listing.ListingUid, ListingUpdate{Title: &newTitle})
	assert.NoError(t, err)
	got, _ = s.GetListing(listing.ListingUid, false)
	assert.Equal(t, "Hijacked", got.Title)
}

func TestUpdateListingValidatesCombinedState(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	listing := createTestListing(t, s, host, "Bounded", 100)

	// minimum_nights is 2; raising it above maximum_nights must fail.
	bad := 20
	_, err := s.UpdateListing(host, listing.ListingUid, ListingUpdate{MinimumNights: &bad})
	assert.True(t, IsValidation(err))
}

func TestSoftDeleteVisibility(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	guest := createTestUser(t, s, "guest")
	listing := createTestListing(t, s, host, "Going away", 100)

	_, err := s.CreateReview(guest, listing.ListingUid, 4, "lovely")
	assert.NoError(t, err)
	image, err := s.AddImage(host, listing.ListingUid, ImageInput{URL: "http://img/1"})
	assert.NoError(t, err)

	err = s.SoftDeleteListing(guest, listing.ListingUid)
	assert.True(t, IsPermissionDenied(err))

	err = s.SoftDeleteListing(host, listing.ListingUid)
	assert.NoError(t, err)

	_, err = s.GetListing(listing.ListingUid, false)
	assert.True(t, IsNotFound(err))

	// Direct references survive the soft delete.
	got, err := s.GetListing(listing.ListingUid, true)
	assert.NoError(t, err)
	assert.False(t, got.IsActive)

	reviews, err := s.ListReviews(listing.ListingUid)
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)

	_, err = s.GetImage(image.ImageUid)
	assert.NoError(t, err)

	listings, total, err := s.ListListings(ListingFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Len(t, listings, 0)
}

func TestListListingsPriceRange(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	createTestListing(t, s, host, "Mid", 100)

	min, max := 50.0, 150.0
	listings, total, err := s.ListListings(ListingFilter{MinPrice: &min, MaxPrice: &max})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, listings, 1)

	min = 200.0
	listings, total, err = s.ListListings(ListingFilter{MinPrice: &min})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Len(t, listings, 0)
}

func TestListListingsFiltersConjoin(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")

	_, err := s.CreateListing(host, ListingInput{
		Title: "Beach villa", Description: "Sea view", Location: "Mombasa",
		PricePerNight: 200, ListingType: "villa",
	})
	assert.NoError(t, err)
	_, err = s.CreateListing(host, ListingInput{
		Title: "City flat", Description: "Downtown", Location: "Nairobi",
		PricePerNight: 80, ListingType: "apartment",
	})
	assert.NoError(t, err)

	_, total, err := s.ListListings(ListingFilter{Location: "momb", ListingType: "villa"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Search is case-insensitive across title, description and location.
	_, total, err = s.ListListings(ListingFilter{Search: "SEA"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = s.ListListings(ListingFilter{Search: "sea", ListingType: "apartment"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestListListingsOrdering(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	createTestListing(t, s, host, "Pricey", 300)
	createTestListing(t, s, host, "Cheap", 50)

	listings, _, err := s.ListListings(ListingFilter{Ordering: "price_per_night"})
	assert.NoError(t, err)
	assert.Equal(t, "Cheap", listings[0].Title)

	listings, _, err = s.ListListings(ListingFilter{Ordering: "-price_per_night"})
	assert.NoError(t, err)
	assert.Equal(t, "Pricey", listings[0].Title)

	_, _, err = s.ListListings(ListingFilter{Ordering: "host_id"})
	assert.True(t, IsValidation(err))
}

func TestListListingsPagination(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	for i := 0; i < 5; i++ {
		createTestListing(t, s, host, "Listing "+string(rune('a'+i)), float64(100+i))
	}

	listings, total, err := s.ListListings(ListingFilter{Ordering: "price_per_night", Page: 2, Size: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, listings, 2)
	assert.Equal(t, 102.0, listings[0].PricePerNight)
}

func TestDeleteCategoryNullsListingReference(t *testing.T) {
	s := setupStore(t)
	host := createTestUser(t, s, "host")
	category, err := s.CreateCategory("Beachfront", "")
	assert.NoError(t, err)

	listing, err := s.CreateListing(host, ListingInput{
		Title: "Categorized", Location: "Mombasa", PricePerNight: 90,
		CategoryUid: category.CategoryUid,
	})
	assert.NoError(t, err)
	assert.NotNil(t, listing.CategoryID)

	affected, err := s.DeleteCategory(category.CategoryUid)
	assert.NoError(t, err)
	assert.Equal(t, []string{listing.ListingUid}, affected)

	got, err := s.GetListing(listing.ListingUid, false)
	assert.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)
}

func TestCategoryNameUnique(t *testing.T) {
	s := setupStore(t)
	_, err := s.CreateCategory("Beachfront", "")
	assert.NoError(t, err)
	_, err = s.CreateCategory("Beachfront", "again")
	assert.True(t, IsConstraintViolation(err))

	_, err = s.CreateCategory("   ", "")
	assert.True(t, IsValidation(err))
}
