package api

import (
	"net/url" // URL parsing for image validation
	"regexp"  // Regular expressions
	"strings" // String manipulation
)

// emailPattern is a light-weight shape check, not a full RFC parse.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// SpotInput carries the client-supplied fields of a spot. Numeric fields are
// pointers so a missing field is distinguishable from a legitimate zero
// (lat 0 and lng 0 are valid coordinates).
type SpotInput struct {
	Address     string   `json:"address"`     // Street address
	City        string   `json:"city"`        // City
	State       string   `json:"state"`       // State or province
	Country     string   `json:"country"`     // Country
	Lat         *float64 `json:"lat"`         // Latitude
	Lng         *float64 `json:"lng"`         // Longitude
	Name        string   `json:"name"`        // Listing name
	Description string   `json:"description"` // Listing description
	Price       *float64 `json:"price"`       // Nightly price
}

// validateSpotInput checks all spot fields and returns field-level error
// messages, empty when the input is valid.
func validateSpotInput(in *SpotInput) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(in.Address) == "" {
		errs["address"] = "Please provide a valid address"
	}
	if strings.TrimSpace(in.City) == "" {
		errs["city"] = "Please provide a valid city"
	}
	if strings.TrimSpace(in.State) == "" {
		errs["state"] = "Please provide a valid state"
	}
	if strings.TrimSpace(in.Country) == "" {
		errs["country"] = "Please provide a valid country"
	}
	if in.Lat == nil || *in.Lat < -90 || *in.Lat > 90 {
		errs["lat"] = "Latitude must be between -90 and 90"
	}
	if in.Lng == nil || *in.Lng < -180 || *in.Lng > 180 {
		errs["lng"] = "Longitude must be between -180 and 180"
	}
	if n := strings.TrimSpace(in.Name); n == "" || len(in.Name) > 50 {
		errs["name"] = "Name must be between 1 and 50 characters"
	}
	if strings.TrimSpace(in.Description) == "" {
		errs["description"] = "Please provide a valid description"
	}
	if in.Price == nil || *in.Price <= 0 {
		errs["price"] = "Price must be greater than 0"
	}
	return errs
}

// ReviewInput carries the client-supplied fields of a review. Stars is a
// pointer so a missing rating is not mistaken for zero.
type ReviewInput struct {
	SpotID uint   `json:"spotId"` // Target spot, only read on creation
	Review string `json:"review"` // Review text
	Stars  *int   `json:"stars"`  // Star rating
}

// validateReviewInput checks review text and star rating.
func validateReviewInput(in *ReviewInput) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(in.Review) == "" {
		errs["review"] = "Review text is required"
	}
	if in.Stars == nil || *in.Stars < 1 || *in.Stars > 5 {
		errs["stars"] = "Stars must be an integer from 1 to 5"
	}
	return errs
}

// ImageInput carries the client-supplied fields of an image attachment.
type ImageInput struct {
	URL     string `json:"url"`     // Image URL
	Preview bool   `json:"preview"` // Preview flag, only honored for spot images
}

// validateImageInput checks that the url is present and URL-shaped.
func validateImageInput(in *ImageInput) map[string]string {
	errs := map[string]string{}
	if !isValidURL(in.URL) {
		errs["url"] = "Please provide a valid image URL"
	}
	return errs
}

// isValidURL reports whether s parses as an absolute http(s) URL.
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SignupInput carries the client-supplied fields of a new account.
type SignupInput struct {
	Username  string `json:"username"`  // Unique username
	Email     string `json:"email"`     // Unique email address
	Password  string `json:"password"`  // Plaintext password, hashed before storage
	FirstName string `json:"firstName"` // First name
	LastName  string `json:"lastName"`  // Last name
}

// validateSignupInput checks all signup fields.
func validateSignupInput(in *SignupInput) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "Username is required"
	}
	if !emailPattern.MatchString(in.Email) {
		errs["email"] = "Please provide a valid email"
	}
	if len(in.Password) < 8 || len(in.Password) > 64 {
		errs["password"] = "Password must be 8-64 characters"
	}
	if strings.TrimSpace(in.FirstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs["lastName"] = "Last name is required"
	}
	return errs
}
