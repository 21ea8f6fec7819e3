package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"spot_market/internal/domain" // Importing domain models
	"spot_market/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Feed pagination bounds
const (
	defaultPage  = 1                // First page when none requested
	defaultSize  = 20               // Spots per page when none requested
	maxSize      = 20               // Upper bound on page size
	feedCacheTTL = 60 * time.Second // Feed and detail cache lifetime
)

// spotFeed is the feed response envelope, also used as the cache value.
type spotFeed struct {
	Spots []spotSummary `json:"spots"` // Page of shaped spots
	Page  int           `json:"page"`  // Current page
	Size  int           `json:"size"`  // Page size
}

// currentUserID extracts the authenticated caller's ID from the context.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID") // Set by the auth middleware
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// contextRedis returns the Redis client injected by the router, if any.
func contextRedis(c *gin.Context) *redis.Client {
	if v, exists := c.Get("redisClient"); exists {
		if rdb, ok := v.(*redis.Client); ok {
			return rdb
		}
	}
	return nil
}

// invalidateSpotCache drops the cached detail for a spot plus the first feed
// pages (simple version: delete first 5 pages at the default size).
func invalidateSpotCache(c *gin.Context, spotID uint) {
	rdb := contextRedis(c)
	if rdb == nil {
		return // Caching disabled
	}
	ctx := context.Background() // Context for Redis operations
	keys := []string{"spot:" + strconv.Itoa(int(spotID))}
	for i := 1; i <= 5; i++ {
		keys = append(keys, "spots:page:"+strconv.Itoa(i)+":size:"+strconv.Itoa(defaultSize))
	}
	_ = utils.DeleteCache(ctx, rdb, keys...) // Best effort, a stale miss is harmless
}

// parsePagination reads page/size query params with validation
func parsePagination(c *gin.Context) (int, int, map[string]string) {
	page, size := defaultPage, defaultSize
	errs := map[string]string{}
	// Page must be a positive integer when provided
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v >= 1 {
			page = v
		} else {
			errs["page"] = "Page must be a positive integer"
		}
	}
	// Size must be between 1 and 20 when provided
	if s := c.Query("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 && v <= maxSize {
			size = v
		} else {
			errs["size"] = "Size must be between 1 and 20"
		}
	}
	return page, size, errs
}

// ListSpotsHandler returns a page of spots with images and reviews attached.
// No authentication required.
func ListSpotsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size, errs := parsePagination(c) // Validate pagination params
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		ctx := context.Background() // Context for Redis operations
		cacheKey := "spots:page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(size)
		var cached spotFeed // Try the cache first
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached) // Serve the cached page
			return
		}
		offset := (page - 1) * size // Calculate offset
		var spots []domain.Spot     // Page of spots
		// Fetch the page with images and reviews eagerly loaded
		if err := db.Preload("SpotImages").Preload("Reviews").
			Order("id").
			Offset(offset).
			Limit(size).
			Find(&spots).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch spots")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch spots"})
			return
		}
		feed := spotFeed{Spots: shapeSpotSummaries(spots), Page: page, Size: size}
		_ = utils.SetCache(ctx, rdb, cacheKey, feed, feedCacheTTL) // Cache the page
		c.JSON(http.StatusOK, feed)                                // Return the feed page
	}
}

// CurrentSpotsHandler returns the authenticated caller's spots
func CurrentSpotsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var spots []domain.Spot // Spots owned by the caller
		if err := db.Preload("SpotImages").Preload("Reviews").
			Where("owner_id = ?", userID).
			Order("id").
			Find(&spots).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch owned spots")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch spots"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"spots": shapeSpotSummaries(spots)})
	}
}

// CreateSpotHandler creates a spot owned by the authenticated caller
func CreateSpotHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var req SpotInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		// Validate all spot fields
		if errs := validateSpotInput(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		// The caller is always the owner, regardless of the payload
		spot := domain.Spot{
			OwnerID:     userID,
			Address:     req.Address,
			City:        req.City,
			State:       req.State,
			Country:     req.Country,
			Lat:         *req.Lat,
			Lng:         *req.Lng,
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
		}
		// Persist the spot
		if err := db.Create(&spot).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"owner_id": userID,      // Caller ID
				"error":    err.Error(), // Error message
			}).Error("Failed to create spot")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create spot"})
			return
		}
		// Log the creation
		logrus.WithFields(logrus.Fields{
			"spot_id":  spot.ID, // New spot ID
			"owner_id": userID,  // Owner ID
		}).Info("Spot created")
		invalidateSpotCache(c, spot.ID)                  // Drop stale feed pages
		c.JSON(http.StatusCreated, gin.H{"spot": spot}) // Return the created spot
	}
}

// GetSpotHandler returns a single spot with owner, images, reviews with
// reviewer identity, and the derived preview image and rating fields.
// No authentication required.
func GetSpotHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse the spot ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		ctx := context.Background() // Context for Redis operations
		cacheKey := "spot:" + strconv.Itoa(id)
		var cached spotDetail // Try the cache first
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached) // Serve the cached detail
			return
		}
		var spot domain.Spot // Fetch the spot with images and reviews
		if err := db.Preload("SpotImages").Preload("Reviews").First(&spot, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		var owner domain.User // Fetch the owner for the response
		if err := db.First(&owner, spot.OwnerID).Error; err != nil {
			logrus.WithField("spot_id", spot.ID).Error("Spot owner missing")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		// Fetch the reviewers in one query and index them by ID
		reviewerIDs := make([]uint, 0, len(spot.Reviews))
		for _, r := range spot.Reviews {
			reviewerIDs = append(reviewerIDs, r.UserID)
		}
		reviewers := map[uint]domain.User{}
		if len(reviewerIDs) > 0 {
			var users []domain.User
			if err := db.Where("id IN ?", reviewerIDs).Find(&users).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			for _, u := range users {
				reviewers[u.ID] = u
			}
		}
		// Join each review with its author
		reviews := make([]reviewWithUser, len(spot.Reviews))
		for i, r := range spot.Reviews {
			u := reviewers[r.UserID]
			reviews[i] = reviewWithUser{
				Review: r,
				User:   reviewerSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName},
			}
		}
		detail := spotDetail{
			Spot:         spot,                                                        // Raw spot with images
			Owner:        ownerSummary{FirstName: owner.FirstName, LastName: owner.LastName}, // Owner identity
			Reviews:      reviews,                                                     // Reviews with authors
			PreviewImage: previewImageURL(spot.SpotImages),                            // Derived preview image URL
			AvgRating:    averageStars(spot.Reviews),                                  // Derived average rating
			NumReviews:   len(spot.Reviews),                                           // Review count
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, detail, feedCacheTTL) // Cache the detail
		c.JSON(http.StatusOK, detail)                                // Return the detail
	}
}

// UpdateSpotHandler replaces a spot's fields, owner only
func UpdateSpotHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse the spot ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		var spot domain.Spot // Fetch the target spot
		if err := db.First(&spot, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		// Only the owner may update
		if spot.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		var req SpotInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		// Re-validate all spot fields
		if errs := validateSpotInput(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		// Replace the mutable fields
		spot.Address = req.Address
		spot.City = req.City
		spot.State = req.State
		spot.Country = req.Country
		spot.Lat = *req.Lat
		spot.Lng = *req.Lng
		spot.Name = req.Name
		spot.Description = req.Description
		spot.Price = *req.Price
		// Persist the update
		if err := db.Save(&spot).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"spot_id": spot.ID,     // Spot ID
				"error":   err.Error(), // Error message
			}).Error("Failed to update spot")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update spot"})
			return
		}
		invalidateSpotCache(c, spot.ID)            // Drop stale cache entries
		c.JSON(http.StatusOK, gin.H{"spot": spot}) // Return the updated spot
	}
}

// DeleteSpotHandler removes a spot and everything attached to it, owner only
func DeleteSpotHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse the spot ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		var spot domain.Spot // Fetch the target spot
		if err := db.First(&spot, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		// Only the owner may delete
		if spot.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		// Cascade the delete through reviews and images atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			var reviewIDs []uint // Reviews attached to this spot
			if err := tx.Model(&domain.Review{}).Where("spot_id = ?", spot.ID).Pluck("id", &reviewIDs).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove images of those reviews
			if len(reviewIDs) > 0 {
				if err := tx.Where("review_id IN ?", reviewIDs).Delete(&domain.ReviewImage{}).Error; err != nil {
					return err // Return error to rollback
				}
			}
			// Remove the reviews themselves
			if err := tx.Where("spot_id = ?", spot.ID).Delete(&domain.Review{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the spot's images
			if err := tx.Where("spot_id = ?", spot.ID).Delete(&domain.SpotImage{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the spot itself
			return tx.Delete(&spot).Error
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"spot_id": spot.ID,     // Spot ID
				"error":   err.Error(), // Error message
			}).Error("Failed to delete spot")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete spot"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"spot_id":  spot.ID, // Deleted spot ID
			"owner_id": userID,  // Owner ID
		}).Info("Spot deleted")
		invalidateSpotCache(c, spot.ID)                             // Drop stale cache entries
		c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted"}) // Return success message
	}
}

// AddSpotImageHandler attaches an image to a spot, owner only. Flagging the
// new image as preview clears the flag from any previous preview image so at
// most one image per spot carries it.
func AddSpotImageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse the spot ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		var spot domain.Spot // Fetch the target spot
		if err := db.First(&spot, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		// Only the owner may attach images
		if spot.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		var req ImageInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		// Validate the image URL
		if errs := validateImageInput(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		image := domain.SpotImage{SpotID: spot.ID, URL: req.URL, Preview: req.Preview}
		// Create the image, demoting any existing preview in the same transaction
		err = db.Transaction(func(tx *gorm.DB) error {
			if req.Preview {
				// Clear the flag from the current preview image, if any
				if err := tx.Model(&domain.SpotImage{}).
					Where("spot_id = ? AND preview = ?", spot.ID, true).
					Update("preview", false).Error; err != nil {
					return err // Return error to rollback
				}
			}
			return tx.Create(&image).Error
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"spot_id": spot.ID,     // Spot ID
				"error":   err.Error(), // Error message
			}).Error("Failed to attach spot image")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to attach image"})
			return
		}
		invalidateSpotCache(c, spot.ID) // Drop stale cache entries
		// Return the created image record
		c.JSON(http.StatusCreated, gin.H{
			"id":      image.ID,      // New image ID
			"url":     image.URL,     // Image URL
			"preview": image.Preview, // Preview flag
		})
	}
}
