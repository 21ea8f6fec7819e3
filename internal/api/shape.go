package api

import (
	"spot_market/internal/domain" // Importing domain models
)

// ownerSummary is the owner identity attached to a spot detail response.
type ownerSummary struct {
	FirstName string `json:"firstName"` // Owner first name
	LastName  string `json:"lastName"`  // Owner last name
}

// reviewerSummary is the reviewer identity attached to each review in a spot
// detail response.
type reviewerSummary struct {
	ID        uint   `json:"id"`        // Reviewer user ID
	FirstName string `json:"firstName"` // Reviewer first name
	LastName  string `json:"lastName"`  // Reviewer last name
}

// spotSummary is a spot with its derived display fields, used by the feed and
// the owner listing endpoints.
type spotSummary struct {
	domain.Spot
	PreviewImage *string  `json:"previewImage"` // URL of the preview-flagged image, null when absent
	AvgRating    *float64 `json:"avgRating"`    // Average star rating, null when unreviewed
}

// reviewWithUser is a review joined with its author, used by the spot detail
// response.
type reviewWithUser struct {
	domain.Review
	User reviewerSummary `json:"user"` // Review author
}

// spotDetail is the full single-spot response shape.
type spotDetail struct {
	domain.Spot
	Owner        ownerSummary     `json:"owner"`        // Spot owner identity
	Reviews      []reviewWithUser `json:"reviews"`      // Reviews with author identity
	PreviewImage *string          `json:"previewImage"` // URL of the preview-flagged image, null when absent
	AvgRating    *float64         `json:"avgRating"`    // Average star rating, null when unreviewed
	NumReviews   int              `json:"numReviews"`   // Review count
}

// previewImageURL returns the url of the preview-flagged image, or nil.
// Insertion order is irrelevant since at most one image carries the flag.
func previewImageURL(images []domain.SpotImage) *string {
	for _, img := range images {
		if img.Preview {
			url := img.URL
			return &url
		}
	}
	return nil
}

// averageStars returns the mean star rating, or nil for zero reviews.
func averageStars(reviews []domain.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Stars
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

// shapeSpotSummary derives the display fields for a single spot.
func shapeSpotSummary(spot domain.Spot) spotSummary {
	return spotSummary{
		Spot:         spot,                              // Raw spot with preloaded images and reviews
		PreviewImage: previewImageURL(spot.SpotImages),  // Derived preview image URL
		AvgRating:    averageStars(spot.Reviews),        // Derived average rating
	}
}

// shapeSpotSummaries derives the display fields for a page of spots.
func shapeSpotSummaries(spots []domain.Spot) []spotSummary {
	out := make([]spotSummary, len(spots))
	for i, s := range spots {
		out[i] = shapeSpotSummary(s)
	}
	return out
}
