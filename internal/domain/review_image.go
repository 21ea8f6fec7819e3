package domain

import "time"

// ReviewImage Model
type ReviewImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`           // Primary key
	ReviewID  uint      `gorm:"not null;index" json:"reviewId"` // Foreign key to Review
	URL       string    `gorm:"not null" json:"url"`            // Image URL
	CreatedAt time.Time `json:"createdAt"`                      // Timestamp of creation
	UpdatedAt time.Time `json:"updatedAt"`                      // Timestamp of last update
}
