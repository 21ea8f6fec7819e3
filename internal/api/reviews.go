package api

import (
	"errors"   // Sentinel errors
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"spot_market/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Row locking clause
)

// errImageCapReached aborts the attach transaction when a review already
// holds the maximum number of images.
var errImageCapReached = errors.New("review image cap reached")

// reviewAuthor is the author identity attached to each of the caller's
// reviews.
type reviewAuthor struct {
	ID       uint   `json:"id"`       // Author user ID
	Username string `json:"username"` // Author username
}

// reviewSpot is the spot summary attached to each of the caller's reviews.
type reviewSpot struct {
	ID           uint    `json:"id"`           // Spot ID
	Name         string  `json:"name"`         // Spot name
	PreviewImage *string `json:"previewImage"` // Preview image URL, null when absent
}

// currentReview is one entry of the caller's review listing.
type currentReview struct {
	domain.Review
	User reviewAuthor `json:"user"` // Review author
	Spot reviewSpot   `json:"spot"` // Reviewed spot summary
}

// CreateReviewHandler posts a review of a spot by the authenticated caller
func CreateReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var req ReviewInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		// Validate review text and stars
		if errs := validateReviewInput(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		var spot domain.Spot // The reviewed spot must exist
		if err := db.First(&spot, req.SpotID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Spot not found"})
			return
		}
		review := domain.Review{
			SpotID: spot.ID,    // Reviewed spot
			UserID: userID,     // The caller is always the author
			Review: req.Review, // Review text
			Stars:  *req.Stars, // Star rating
		}
		// Persist the review
		if err := db.Create(&review).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"spot_id": spot.ID,     // Spot ID
				"user_id": userID,      // Author ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create review")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create review"})
			return
		}
		// Log the creation
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID, // New review ID
			"spot_id":   spot.ID,   // Reviewed spot ID
			"user_id":   userID,    // Author ID
			"stars":     review.Stars,
		}).Info("Review created")
		invalidateSpotCache(c, spot.ID)    // Ratings feed into the cached shapes
		c.JSON(http.StatusCreated, review) // Return the created review
	}
}

// CurrentReviewsHandler returns the caller's reviews, each joined with the
// author identity, a summary of the reviewed spot, and the review's images
func CurrentReviewsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var user domain.User // Fetch the caller for the author block
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var reviews []domain.Review // The caller's reviews with their images
		if err := db.Preload("ReviewImages").
			Where("user_id = ?", userID).
			Order("id").
			Find(&reviews).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch reviews")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
			return
		}
		// Fetch the reviewed spots with their images in one query
		spotIDs := make([]uint, 0, len(reviews))
		for _, r := range reviews {
			spotIDs = append(spotIDs, r.SpotID)
		}
		spots := map[uint]domain.Spot{}
		if len(spotIDs) > 0 {
			var list []domain.Spot
			if err := db.Preload("SpotImages").Where("id IN ?", spotIDs).Find(&list).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
				return
			}
			for _, s := range list {
				spots[s.ID] = s
			}
		}
		// Join each review with its author and spot summary
		out := make([]currentReview, len(reviews))
		for i, r := range reviews {
			s := spots[r.SpotID]
			out[i] = currentReview{
				Review: r,
				User:   reviewAuthor{ID: user.ID, Username: user.Username},
				Spot: reviewSpot{
					ID:           s.ID,
					Name:         s.Name,
					PreviewImage: previewImageURL(s.SpotImages), // Derived preview image URL
				},
			}
		}
		c.JSON(http.StatusOK, gin.H{"reviews": out}) // Return the caller's reviews
	}
}

// AddReviewImageHandler attaches an image to a review, owner only. The
// ten-image cap is checked inside the insert transaction with the review row
// locked, so concurrent submissions cannot slip past it. SQLite has no
// FOR UPDATE; its single writer already serializes the check and the insert.
func AddReviewImageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		reviewID, err := strconv.Atoi(c.Param("reviewId")) // Parse the review ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		var review domain.Review // Fetch the target review
		if err := db.First(&review, reviewID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		// Only the author may attach images
		if review.UserID != userID {
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
		image := domain.ReviewImage{ReviewID: review.ID, URL: req.URL}
		// Count and insert atomically under the review row lock
		err = db.Transaction(func(tx *gorm.DB) error {
			q := tx
			if tx.Dialector.Name() == "mysql" {
				q = tx.Clauses(clause.Locking{Strength: "UPDATE"}) // Lock the review row
			}
			var locked domain.Review
			if err := q.First(&locked, review.ID).Error; err != nil {
				return err // Return error to rollback
			}
			var count int64 // Current image count for this review
			if err := tx.Model(&domain.ReviewImage{}).Where("review_id = ?", review.ID).Count(&count).Error; err != nil {
				return err // Return error to rollback
			}
			if count >= domain.MaxReviewImages {
				return errImageCapReached // Cap reached, rollback
			}
			return tx.Create(&image).Error
		})
		// Cap violations surface as forbidden
		if errors.Is(err, errImageCapReached) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Maximum number of images reached"})
			return
		}
		// Handle other transaction failures
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"review_id": review.ID,   // Review ID
				"error":     err.Error(), // Error message
			}).Error("Failed to attach review image")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to attach image"})
			return
		}
		// Return the created image record
		c.JSON(http.StatusCreated, gin.H{
			"id":  image.ID,  // New image ID
			"url": image.URL, // Image URL
		})
	}
}

// UpdateReviewHandler replaces a review's text and stars, owner only
func UpdateReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		reviewID, err := strconv.Atoi(c.Param("reviewId")) // Parse the review ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		var review domain.Review // Fetch the target review
		if err := db.First(&review, reviewID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		// Only the author may update
		if review.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		var req ReviewInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		// Re-validate review text and stars
		if errs := validateReviewInput(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		// Replace the mutable fields; the reviewed spot never changes
		review.Review = req.Review
		review.Stars = *req.Stars
		// Persist the update
		if err := db.Save(&review).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"review_id": review.ID,   // Review ID
				"error":     err.Error(), // Error message
			}).Error("Failed to update review")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update review"})
			return
		}
		invalidateSpotCache(c, review.SpotID) // Stars feed into the cached shapes
		c.JSON(http.StatusOK, review)         // Return the updated review
	}
}

// DeleteReviewHandler removes a review and its images, owner only
func DeleteReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		reviewID, err := strconv.Atoi(c.Param("reviewId")) // Parse the review ID
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		var review domain.Review // Fetch the target review
		if err := db.First(&review, reviewID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		// Only the author may delete
		if review.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		// Cascade the delete through the review's images atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("review_id = ?", review.ID).Delete(&domain.ReviewImage{}).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&review).Error
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"review_id": review.ID,   // Review ID
				"error":     err.Error(), // Error message
			}).Error("Failed to delete review")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete review"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID,     // Deleted review ID
			"spot_id":   review.SpotID, // Reviewed spot ID
			"user_id":   userID,        // Author ID
		}).Info("Review deleted")
		invalidateSpotCache(c, review.SpotID) // Ratings feed into the cached shapes
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
	}
}
