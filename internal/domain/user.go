package domain

import "time"

// User Model
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`            // Primary key
	Username       string    `gorm:"unique;not null" json:"username"` // Unique username
	Email          string    `gorm:"unique;not null" json:"email"`    // Unique email address
	HashedPassword string    `gorm:"not null" json:"-"`               // Bcrypt hash, never serialized
	FirstName      string    `gorm:"not null" json:"firstName"`       // First name
	LastName       string    `gorm:"not null" json:"lastName"`        // Last name
	Spots          []Spot    `gorm:"foreignKey:OwnerID" json:"-"`     // Spots owned by this user
	Reviews        []Review  `gorm:"foreignKey:UserID" json:"-"`      // Reviews written by this user
	CreatedAt      time.Time `json:"createdAt"`                       // Timestamp of creation
	UpdatedAt      time.Time `json:"updatedAt"`                       // Timestamp of last update
}
