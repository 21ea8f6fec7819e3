// Package client is a typed Go client for the spot_market REST API. It is
// consumed by the spotctl CLI and by the end-to-end tests.
package client

import (
	"bytes"         // Request body buffering
	"context"       // Request cancellation
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Error formatting
	"net/http"      // HTTP client
	"strconv"       // String conversion
	"strings"       // String manipulation

	"spot_market/internal/domain" // Shared entity types
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int               // HTTP status code
	Message    string            // Top-level error message, when present
	Errors     map[string]string // Field-level validation messages, when present
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for field, msg := range e.Errors {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Sprintf("api error %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a spot_market server. Token is set automatically by Signup
// and Login and sent as a bearer token on every subsequent request.
type Client struct {
	BaseURL    string       // Server base URL, without trailing slash
	Token      string       // Session token
	HTTPClient *http.Client // Underlying HTTP client
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: http.DefaultClient,
	}
}

// do runs one API round trip, decoding the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer // Request body
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Non-2xx responses decode into an APIError
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Message = envelope.Message
			apiErr.Errors = envelope.Errors
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SignupParams are the fields of a new account.
type SignupParams struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthResult is the server's response to signup and login.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Signup registers a new account and stores its session token on the client.
func (c *Client) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/users", params, &res); err != nil {
		return nil, err
	}
	c.Token = res.Token
	return &res, nil
}

// Login opens a session by username or email and stores its token on the
// client.
func (c *Client) Login(ctx context.Context, credential, password string) (*AuthResult, error) {
	body := map[string]string{"credential": credential, "password": password}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/session", body, &res); err != nil {
		return nil, err
	}
	c.Token = res.Token
	return &res, nil
}

// Logout closes the session and clears the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/session", nil, nil); err != nil {
		return err
	}
	c.Token = ""
	return nil
}

// SpotParams are the client-supplied fields of a spot.
type SpotParams struct {
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// SpotSummary is a spot with its derived display fields.
type SpotSummary struct {
	domain.Spot
	PreviewImage *string  `json:"previewImage"` // Preview image URL, nil when absent
	AvgRating    *float64 `json:"avgRating"`    // Average star rating, nil when unreviewed
}

// SpotPage is one page of the public feed.
type SpotPage struct {
	Spots []SpotSummary `json:"spots"` // Page of spots
	Page  int           `json:"page"`  // Current page
	Size  int           `json:"size"`  // Page size
}

// SpotDetail is the full single-spot response.
type SpotDetail struct {
	domain.Spot
	Owner struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"owner"`
	Reviews []struct {
		domain.Review
		User struct {
			ID        uint   `json:"id"`
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"user"`
	} `json:"reviews"`
	PreviewImage *string  `json:"previewImage"` // Preview image URL, nil when absent
	AvgRating    *float64 `json:"avgRating"`    // Average star rating, nil when unreviewed
	NumReviews   int      `json:"numReviews"`   // Review count
}

// ImageResult is the record returned after attaching an image.
type ImageResult struct {
	ID      uint   `json:"id"`      // New image ID
	URL     string `json:"url"`     // Image URL
	Preview bool   `json:"preview"` // Preview flag, spot images only
}

// ListSpots fetches one feed page. Zero page or size means the server
// default.
func (c *Client) ListSpots(ctx context.Context, page, size int) (*SpotPage, error) {
	path := "/api/spots"
	params := []string{}
	if page > 0 {
		params = append(params, "page="+strconv.Itoa(page))
	}
	if size > 0 {
		params = append(params, "size="+strconv.Itoa(size))
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}
	var res SpotPage
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentSpots fetches the authenticated caller's spots.
func (c *Client) CurrentSpots(ctx context.Context) ([]SpotSummary, error) {
	var res struct {
		Spots []SpotSummary `json:"spots"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/spots/current", nil, &res); err != nil {
		return nil, err
	}
	return res.Spots, nil
}

// GetSpot fetches one spot with its derived fields.
func (c *Client) GetSpot(ctx context.Context, id uint) (*SpotDetail, error) {
	var res SpotDetail
	if err := c.do(ctx, http.MethodGet, "/api/spots/"+strconv.Itoa(int(id)), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateSpot creates a spot owned by the caller.
func (c *Client) CreateSpot(ctx context.Context, params SpotParams) (*domain.Spot, error) {
	var res struct {
		Spot domain.Spot `json:"spot"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/spots", params, &res); err != nil {
		return nil, err
	}
	return &res.Spot, nil
}

// UpdateSpot replaces a spot's fields.
func (c *Client) UpdateSpot(ctx context.Context, id uint, params SpotParams) (*domain.Spot, error) {
	var res struct {
		Spot domain.Spot `json:"spot"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/spots/"+strconv.Itoa(int(id)), params, &res); err != nil {
		return nil, err
	}
	return &res.Spot, nil
}

// DeleteSpot removes a spot and everything attached to it.
func (c *Client) DeleteSpot(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/spots/"+strconv.Itoa(int(id)), nil, nil)
}

// AddSpotImage attaches an image to a spot the caller owns.
func (c *Client) AddSpotImage(ctx context.Context, spotID uint, url string, preview bool) (*ImageResult, error) {
	body := map[string]any{"url": url, "preview": preview}
	var res ImageResult
	if err := c.do(ctx, http.MethodPost, "/api/spots/"+strconv.Itoa(int(spotID))+"/images", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentReview is one entry of the caller's review listing.
type CurrentReview struct {
	domain.Review
	User struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Spot struct {
		ID           uint    `json:"id"`
		Name         string  `json:"name"`
		PreviewImage *string `json:"previewImage"`
	} `json:"spot"`
}

// CreateReview posts a review of a spot.
func (c *Client) CreateReview(ctx context.Context, spotID uint, text string, stars int) (*domain.Review, error) {
	body := map[string]any{"spotId": spotID, "review": text, "stars": stars}
	var res domain.Review
	if err := c.do(ctx, http.MethodPost, "/api/reviews", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentReviews fetches the caller's reviews with spot summaries.
func (c *Client) CurrentReviews(ctx context.Context) ([]CurrentReview, error) {
	var res struct {
		Reviews []CurrentReview `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/reviews/current", nil, &res); err != nil {
		return nil, err
	}
	return res.Reviews, nil
}

// AddReviewImage attaches an image to a review the caller owns.
func (c *Client) AddReviewImage(ctx context.Context, reviewID uint, url string) (*ImageResult, error) {
	body := map[string]any{"url": url}
	var res ImageResult
	if err := c.do(ctx, http.MethodPost, "/api/reviews/"+strconv.Itoa(int(reviewID))+"/images", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateReview replaces a review's text and stars.
func (c *Client) UpdateReview(ctx context.Context, reviewID uint, text string, stars int) (*domain.Review, error) {
	body := map[string]any{"review": text, "stars": stars}
	var res domain.Review
	if err := c.do(ctx, http.MethodPut, "/api/reviews/"+strconv.Itoa(int(reviewID)), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteReview removes a review and its images.
func (c *Client) DeleteReview(ctx context.Context, reviewID uint) error {
	return c.do(ctx, http.MethodDelete, "/api/reviews/"+strconv.Itoa(int(reviewID)), nil, nil)
}
