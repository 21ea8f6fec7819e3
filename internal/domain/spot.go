package domain

import "time"

// Spot Model
type Spot struct {
	ID          uint        `gorm:"primaryKey" json:"id"`                          // Primary key
	OwnerID     uint        `gorm:"not null;index" json:"ownerId"`                 // Foreign key to the owning User
	Address     string      `gorm:"not null" json:"address"`                       // Street address
	City        string      `gorm:"not null" json:"city"`                          // City
	State       string      `gorm:"not null" json:"state"`                         // State or province
	Country     string      `gorm:"not null" json:"country"`                       // Country
	Lat         float64     `gorm:"not null" json:"lat"`                           // Latitude, [-90, 90]
	Lng         float64     `gorm:"not null" json:"lng"`                           // Longitude, [-180, 180]
	Name        string      `gorm:"not null" json:"name"`                          // Listing name, 1-50 chars
	Description string      `gorm:"not null;type:text" json:"description"`         // Listing description
	Price       float64     `gorm:"not null" json:"price"`                         // Nightly price, > 0
	SpotImages  []SpotImage `gorm:"foreignKey:SpotID" json:"spotImages,omitempty"` // Attached images
	Reviews     []Review    `gorm:"foreignKey:SpotID" json:"reviews,omitempty"`    // Reviews of this spot
	CreatedAt   time.Time   `json:"createdAt"`                                     // Timestamp of creation
	UpdatedAt   time.Time   `json:"updatedAt"`                                     // Timestamp of last update
}
