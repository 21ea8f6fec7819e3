package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"spot_market/internal/domain"     // Importing domain models
	"spot_market/internal/middleware" // Session cookie name
	"spot_market/internal/utils"      // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// sessionTTL is the cookie lifetime in seconds, matching the JWT expiry.
const sessionTTL = 24 * 60 * 60

// LoginRequest is the login payload; credential may be a username or email.
type LoginRequest struct {
	Credential string `json:"credential" binding:"required"` // Username or email
	Password   string `json:"password" binding:"required"`   // Plaintext password
}

// setSessionCookie attaches the session token to the response.
func setSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetCookie(middleware.TokenCookie, token, sessionTTL, "/", "", secure, true)
}

// SignupHandler registers a new user and opens a session for it
func SignupHandler(db *gorm.DB, jwtSecret string, isProd bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		// Validate all signup fields
		if errs := validateSignupInput(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		// Hash the password before storage
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
			return
		}
		// Usernames and emails are stored lowercase to keep uniqueness case-insensitive
		user := domain.User{
			Username:       strings.ToLower(req.Username),
			Email:          strings.ToLower(req.Email),
			HashedPassword: string(hash),
			FirstName:      req.FirstName,
			LastName:       req.LastName,
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// Duplicate username or email trips the unique constraints
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username or email already exists"})
			return
		}
		// Open a session for the new user
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
			return
		}
		setSessionCookie(c, token, isProd) // Set the session cookie
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
		}).Info("User registered")
		// Return the created user and token
		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

// LoginHandler authenticates a user by username or email and opens a session
func LoginHandler(db *gorm.DB, jwtSecret string, isProd bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Credential and password are required"})
			return
		}
		cred := strings.ToLower(req.Credential) // Normalize the credential
		var user domain.User                    // Fetch user by username or email
		if err := db.Where("username = ? OR email = ?", cred, cred).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Generate the session token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
			return
		}
		setSessionCookie(c, token, isProd) // Set the session cookie
		// Return the user and token
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

// SessionHandler returns the authenticated caller, or a null user when the
// request carries no valid session
func SessionHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(middleware.TokenCookie) // Read the session cookie
		if err != nil || tokenStr == "" {
			c.JSON(http.StatusOK, gin.H{"user": nil}) // No session
			return
		}
		claims, err := utils.ParseJWT(tokenStr, jwtSecret) // Validate the token
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil}) // Expired or invalid session
			return
		}
		var user domain.User // Fetch the session user
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil}) // Account no longer exists
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user}) // Return the session user
	}
}

// LogoutHandler clears the session cookie
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true) // Expire the cookie
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
