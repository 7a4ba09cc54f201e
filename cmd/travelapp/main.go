package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waweruedwin8/alx-travel-app/pkg/auth"
	"github.com/waweruedwin8/alx-travel-app/pkg/cache"
	"github.com/waweruedwin8/alx-travel-app/pkg/database"
	"github.com/waweruedwin8/alx-travel-app/pkg/store"
)

var (
	db           *gorm.DB
	st           *store.Store
	listingCache *cache.Cache
	jwtSecret    string
)

func main() {
	log.Println("Starting travel listings service...")

	db = database.Init()
	st = store.New(db)
	listingCache = cache.New(getEnv("REDIS_ADDR", ""))
	jwtSecret = getEnv("JWT_SECRET", "dev-secret-change-me")

	seedTestData()

	server := gin.Default()
	registerRoutes(server)

	port := getEnv("PORT", "8080")
	log.Println("Travel listings service starting on :" + port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func registerRoutes(server *gin.Engine) {
	optional := auth.Middleware(st, jwtSecret, false)
	required := auth.Middleware(st, jwtSecret, true)

	server.POST("/api/v1/auth/register", register)
	server.POST("/api/v1/auth/login", login)

	server.GET("/api/v1/categories", getCategories)
	server.POST("/api/v1/categories", required, createCategory)
	server.DELETE("/api/v1/categories/:categoryUid", required, deleteCategory)

	server.GET("/api/v1/listings", optional, getListings)
	server.POST("/api/v1/listings", required, createListing)
	server.GET("/api/v1/listings/:listingUid", optional, getListing)
	server.PUT("/api/v1/listings/:listingUid", required, updateListing)
	server.PATCH("/api/v1/listings/:listingUid", required, updateListing)
	server.DELETE("/api/v1/listings/:listingUid", required, deleteListing)

	server.GET("/api/v1/listings/:listingUid/reviews", getListingReviews)
	server.POST("/api/v1/listings/:listingUid/reviews", required, createListingReview)
	server.PUT("/api/v1/listings/:listingUid/reviews/:reviewUid", required, updateListingReview)
	server.DELETE("/api/v1/listings/:listingUid/reviews/:reviewUid", required, deleteListingReview)

	server.POST("/api/v1/listings/:listingUid/images", required, addListingImage)

	server.GET("/manage/health", healthCheck)
}

func healthCheck(ctx *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": "Service is active",
	})
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
