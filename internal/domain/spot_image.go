package domain

import "time"

// SpotImage Model
type SpotImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                  // Primary key
	SpotID    uint      `gorm:"not null;index" json:"spotId"`          // Foreign key to Spot
	URL       string    `gorm:"not null" json:"url"`                   // Image URL
	Preview   bool      `gorm:"not null;default:false" json:"preview"` // At most one preview image per spot
	CreatedAt time.Time `json:"createdAt"`                             // Timestamp of creation
	UpdatedAt time.Time `json:"updatedAt"`                             // Timestamp of last update
}
