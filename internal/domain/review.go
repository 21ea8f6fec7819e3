package domain

import "time"

// MaxReviewImages caps the number of images attached to a single review.
const MaxReviewImages = 10

// Review Model
type Review struct {
	ID           uint          `gorm:"primaryKey" json:"id"`                              // Primary key
	SpotID       uint          `gorm:"not null;index" json:"spotId"`                      // Foreign key to Spot
	UserID       uint          `gorm:"not null;index" json:"userId"`                      // Foreign key to the authoring User
	Review       string        `gorm:"not null;type:text" json:"review"`                  // Review text
	Stars        int           `gorm:"not null" json:"stars"`                             // Star rating, [1, 5]
	ReviewImages []ReviewImage `gorm:"foreignKey:ReviewID" json:"reviewImages,omitempty"` // Attached images, at most MaxReviewImages
	CreatedAt    time.Time     `json:"createdAt"`                                         // Timestamp of creation
	UpdatedAt    time.Time     `json:"updatedAt"`                                         // Timestamp of last update
}
