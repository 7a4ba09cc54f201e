package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waweruedwin8/alx-travel-app/pkg/auth"
	"github.com/waweruedwin8/alx-travel-app/pkg/models"
	"github.com/waweruedwin8/alx-travel-app/pkg/store"
)

func writeStoreError(c *gin.Context, err error) {
	switch {
	case store.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case store.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case store.IsPermissionDenied(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case store.IsConstraintViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func categoryJSON(category *models.Category) gin.H {
	return gin.H{
		"category_uid": category.CategoryUid,
		"name":         category.Name,
		"description":  category.Description,
		"created_at":   category.CreatedAt,
	}
}

func imageJSON(image *models.ListingImage) gin.H {
	return gin.H{
		"image_uid":  image.ImageUid,
		"url":        image.URL,
		"caption":    image.Caption,
		"is_primary": image.IsPrimary,
		"order":      image.DisplayOrder,
		"created_at": image.CreatedAt,
	}
}

func reviewJSON(review *models.Review) gin.H {
	return gin.H{
		"review_uid":    review.ReviewUid,
		"reviewer_uid":  review.Reviewer.UserUid,
		"reviewer_name": review.Reviewer.Username,
		"rating":        review.Rating,
		"comment":       review.Comment,
		"created_at":    review.CreatedAt,
		"updated_at":    review.UpdatedAt,
	}
}

func listingListItem(listing *models.Listing) gin.H {
	var categoryName interface{}
	if listing.Category != nil {
		categoryName = listing.Category.Name
	}
	var primaryImage interface{}
	for i := range listing.Images {
		if listing.Images[i].IsPrimary {
			primaryImage = listing.Images[i].URL
			break
		}
	}
	return gin.H{
		"listing_uid":     listing.ListingUid,
		"title":           listing.Title,
		"location":        listing.Location,
		"price_per_night": listing.PricePerNight,
		"listing_type":    listing.ListingType,
		"category_name":   categoryName,
		"max_guests":      listing.MaxGuests,
		"bedrooms":        listing.Bedrooms,
		"bathrooms":       listing.Bathrooms,
		"rating":          listing.Rating,
		"total_reviews":   listing.TotalReviews,
		"host_name":       listing.Host.Username,
		"primary_image":   primaryImage,
		"featured":        listing.Featured,
		"created_at":      listing.CreatedAt,
	}
}

func listingDetail(listing *models.Listing) gin.H {
	var category interface{}
	if listing.Category != nil {
		category = categoryJSON(listing.Category)
	}
	images := make([]gin.H, len(listing.Images))
	for i := range listing.Images {
		images[i] = imageJSON(&listing.Images[i])
	}
	reviews := make([]gin.H, len(listing.Reviews))
	for i := range listing.Reviews {
		reviews[i] = reviewJSON(&listing.Reviews[i])
	}
	return gin.H{
		"listing_uid":     listing.ListingUid,
		"title":           listing.Title,
		"description":     listing.Description,
		"location":        listing.Location,
		"address":         listing.Address,
		"price_per_night": listing.PricePerNight,
		"listing_type":    listing.ListingType,
		"category":        category,
		"max_guests":      listing.MaxGuests,
		"bedrooms":        listing.Bedrooms,
		"bathrooms":       listing.Bathrooms,
		"rating":          listing.Rating,
		"total_reviews":   listing.TotalReviews,
		"latitude":        listing.Latitude,
		"longitude":       listing.Longitude,
		"amenities":       listing.Amenities,
		"amenities_list":  listing.AmenitiesList(),
		"house_rules":     listing.HouseRules,
		"check_in_time":   listing.CheckInTime,
		"check_out_time":  listing.CheckOutTime,
		"minimum_nights":  listing.MinimumNights,
		"maximum_nights":  listing.MaximumNights,
		"host": gin.H{
			"user_uid":  listing.Host.UserUid,
			"username":  listing.Host.Username,
			"joined_at": listing.Host.CreatedAt,
		},
		"images":     images,
		"reviews":    reviews,
		"featured":   listing.Featured,
		"created_at": listing.CreatedAt,
		"updated_at": listing.UpdatedAt,
	}
}

func getCategories(c *gin.Context) {
	categories, err := st.ListCategories()
	if err != nil {
		writeStoreError(c, err)
		return
	}
	items := make([]gin.H, len(categories))
	for i := range categories {
		items[i] = categoryJSON(&categories[i])
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func createCategory(c *gin.Context) {
	var request struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	category, err := st.CreateCategory(request.Name, request.Description)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryJSON(category))
}

func deleteCategory(c *gin.Context) {
	affected, err := st.DeleteCategory(c.Param("categoryUid"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	// Cached listing details embed the category object.
	for _, uid := range affected {
		listingCache.InvalidateListing(c.Request.Context(), uid)
	}
	c.Status(http.StatusNoContent)
}

type listingRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	Location      string   `json:"location" binding:"required"`
	Address       string   `json:"address"`
	PricePerNight float64  `json:"price_per_night" binding:"required"`
	ListingType   string   `json:"listing_type"`
	CategoryUid   string   `json:"category_uid"`
	MaxGuests     int      `json:"max_guests"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Amenities     string   `json:"amenities"`
	HouseRules    string   `json:"house_rules"`
	CheckInTime   string   `json:"check_in_time"`
	CheckOutTime  string   `json:"check_out_time"`
	MinimumNights int      `json:"minimum_nights"`
	MaximumNights int      `json:"maximum_nights"`
	Featured      bool     `json:"featured"`
}

func createListing(c *gin.Context) {
	var request listingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	listing, err := st.CreateListing(auth.CurrentUser(c), store.ListingInput{
		Title:         request.Title,
		Description:   request.Description,
		Location:      request.Location,
		Address:       request.Address,
		PricePerNight: request.PricePerNight,
		ListingType:   request.ListingType,
		CategoryUid:   request.CategoryUid,
		MaxGuests:     request.MaxGuests,
		Bedrooms:      request.Bedrooms,
		Bathrooms:     request.Bathrooms,
		Latitude:      request.Latitude,
		Longitude:     request.Longitude,
		Amenities:     request.Amenities,
		HouseRules:    request.HouseRules,
		CheckInTime:   request.CheckInTime,
		CheckOutTime:  request.CheckOutTime,
		MinimumNights: request.MinimumNights,
		MaximumNights: request.MaximumNights,
		Featured:      request.Featured,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listingDetail(listing))
}

func getListings(c *gin.Context) {
	filter := store.ListingFilter{
		Location:    c.Query("location"),
		ListingType: c.Query("listing_type"),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
	}

	if v := c.Query("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_price must be a number"})
			return
		}
		filter.MinPrice = &price
	}
	if v := c.Query("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_price must be a number"})
			return
		}
		filter.MaxPrice = &price
	}
	if v := c.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be a boolean"})
			return
		}
		filter.Featured = &featured
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}
	filter.Page = page
	filter.Size = size

	listings, total, err := st.ListListings(filter)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	items := make([]gin.H, len(listings))
	for i := range listings {
		items[i] = listingListItem(&listings[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": total,
		"items":         items,
	})
}

func getListing(c *gin.Context) {
	uid := c.Param("listingUid")
	ctx := c.Request.Context()

	if body, ok := listingCache.GetListing(ctx, uid); ok {
		c.Data(http.StatusOK, "application/json", body)
		return
	}

	listing, err := st.GetListing(uid, false)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	payload := listingDetail(listing)
	if body, err := json.Marshal(payload); err == nil {
		listingCache.SetListing(ctx, uid, body)
		c.Data(http.StatusOK, "application/json", body)
		return
	}
	c.JSON(http.StatusOK, payload)
}

type listingUpdateRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location"`
	Address       *string  `json:"address"`
	PricePerNight *float64 `json:"price_per_night"`
	ListingType   *string  `json:"listing_type"`
	CategoryUid   *string  `json:"category_uid"`
	MaxGuests     *int     `json:"max_guests"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Amenities     *string  `json:"amenities"`
	HouseRules    *string  `json:"house_rules"`
	CheckInTime   *string  `json:"check_in_time"`
	CheckOutTime  *string  `json:"check_out_time"`
	MinimumNights *int     `json:"minimum_nights"`
	MaximumNights *int     `json:"maximum_nights"`
	Featured      *bool    `json:"featured"`
}

func updateListing(c *gin.Context) {
	uid := c.Param("listingUid")
	var request listingUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	listing, err := st.UpdateListing(auth.CurrentUser(c), uid, store.ListingUpdate{
		Title:         request.Title,
		Description:   request.Description,
		Location:      request.Location,
		Address:       request.Address,
		PricePerNight: request.PricePerNight,
		ListingType:   request.ListingType,
		CategoryUid:   request.CategoryUid,
		MaxGuests:     request.MaxGuests,
		Bedrooms:      request.Bedrooms,
		Bathrooms:     request.Bathrooms,
		Latitude:      request.Latitude,
		Longitude:     request.Longitude,
		Amenities:     request.Amenities,
		HouseRules:    request.HouseRules,
		CheckInTime:   request.CheckInTime,
		CheckOutTime:  request.CheckOutTime,
		MinimumNights: request.MinimumNights,
		MaximumNights: request.MaximumNights,
		Featured:      request.Featured,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	listingCache.InvalidateListing(c.Request.Context(), uid)
	c.JSON(http.StatusOK, listingDetail(listing))
}

func deleteListing(c *gin.Context) {
	uid := c.Param("listingUid")
	if err := st.SoftDeleteListing(auth.CurrentUser(c), uid); err != nil {
		writeStoreError(c, err)
		return
	}
	listingCache.InvalidateListing(c.Request.Context(), uid)
	c.Status(http.StatusNoContent)
}

func getListingReviews(c *gin.Context) {
	reviews, err := st.ListReviews(c.Param("listingUid"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	items := make([]gin.H, len(reviews))
	for i := range reviews {
		items[i] = reviewJSON(&reviews[i])
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func createListingReview(c *gin.Context) {
	uid := c.Param("listingUid")
	var request reviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	review, err := st.CreateReview(auth.CurrentUser(c), uid, request.Rating, request.Comment)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	listingCache.InvalidateListing(c.Request.Context(), uid)
	c.JSON(http.StatusCreated, reviewJSON(review))
}

func updateListingReview(c *gin.Context) {
	uid := c.Param("listingUid")
	var request reviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	review, err := st.UpdateReview(auth.CurrentUser(c), uid, c.Param("reviewUid"), request.Rating, request.Comment)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	listingCache.InvalidateListing(c.Request.Context(), uid)
	c.JSON(http.StatusOK, reviewJSON(review))
}

func deleteListingReview(c *gin.Context) {
	uid := c.Param("listingUid")
	if err := st.DeleteReview(auth.CurrentUser(c), uid, c.Param("reviewUid")); err != nil {
		writeStoreError(c, err)
		return
	}
	listingCache.InvalidateListing(c.Request.Context(), uid)
	c.Status(http.StatusNoContent)
}

func addListingImage(c *gin.Context) {
	uid := c.Param("listingUid")
	var request struct {
		URL       string `json:"url" binding:"required"`
		Caption   string `json:"caption"`
		IsPrimary bool   `json:"is_primary"`
		Order     int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	image, err := st.AddImage(auth.CurrentUser(c), uid, store.ImageInput{
		URL:          request.URL,
		Caption:      request.Caption,
		IsPrimary:    request.IsPrimary,
		DisplayOrder: request.Order,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	listingCache.InvalidateListing(c.Request.Context(), uid)
	c.JSON(http.StatusCreated, imageJSON(image))
}
