package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/sms"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// UserContextKey is the key used to store user in Gin context
	UserContextKey = "user"
	// DefaultTokenDuration is the validity period for JWT tokens
	DefaultTokenDuration = 7 * 24 * time.Hour
	// DefaultCookieName carries the JWT for browser clients.
	DefaultCookieName = "token"
)

// Options configures a BasicAuthenticator.
type Options struct {
	JWTSecret     string
	TokenDuration time.Duration
	CookieName    string
	OTPDuration   time.Duration
	// RevealOTP returns generated codes to the caller and tolerates SMS
	// failures. Never enable in production.
	RevealOTP bool
	SMS       sms.Sender
}

// BasicAuthenticator implements email/password and phone/OTP authentication
// with HS256 JWTs.
type BasicAuthenticator struct {
	db         *gorm.DB
	jwtSecret  []byte
	tokenTTL   time.Duration
	cookieName string
	otpTTL     time.Duration
	revealOTP  bool
	sms        sms.Sender
	now        func() time.Time
}

var _ Authenticator = (*BasicAuthenticator)(nil)

// NewBasicAuthenticator creates a new basic authenticator
func NewBasicAuthenticator(db *gorm.DB, opts Options) *BasicAuthenticator {
	a := &BasicAuthenticator{
		db:         db,
		jwtSecret:  []byte(opts.JWTSecret),
		tokenTTL:   opts.TokenDuration,
		cookieName: opts.CookieName,
		otpTTL:     opts.OTPDuration,
		revealOTP:  opts.RevealOTP,
		sms:        opts.SMS,
		now:        time.Now,
	}
	if a.tokenTTL <= 0 {
		a.tokenTTL = DefaultTokenDuration
	}
	if a.cookieName == "" {
		a.cookieName = DefaultCookieName
	}
	if a.otpTTL <= 0 {
		a.otpTTL = time.Minute
	}
	return a
}

// CookieName returns the name of the auth cookie.
func (a *BasicAuthenticator) CookieName() string { return a.cookieName }

// TokenDuration returns the JWT lifetime.
func (a *BasicAuthenticator) TokenDuration() time.Duration { return a.tokenTTL }

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches the hash
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account and returns a token for it.
func (a *BasicAuthenticator) Register(email, password string) (*LoginResponse, error) {
	email = normalizeEmail(email)

	var count int64
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{Email: &email, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return a.respond(&user)
}

// Login authenticates by email (or username) and password.
func (a *BasicAuthenticator) Login(identifier, password string) (*LoginResponse, error) {
	identifier = normalizeEmail(identifier)

	var user models.User
	result := a.db.Where("email = ? OR username = ?", identifier, identifier).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Warn("Login attempt with unknown account", "identifier", identifier)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	if user.PasswordHash == "" || !VerifyPassword(user.PasswordHash, password) {
		slog.Warn("Login attempt with incorrect password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	slog.Info("User logged in successfully", "user_id", user.ID)
	return a.respond(&user)
}

func (a *BasicAuthenticator) respond(user *models.User) (*LoginResponse, error) {
	token, err := a.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Token: token, User: user}, nil
}

// GenerateToken creates a JWT token for a user
func (a *BasicAuthenticator) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "bakchoddost",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

// validateToken validates a JWT token and returns claims
func (a *BasicAuthenticator) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrUnauthorized
}

// tokenFromRequest reads the Bearer header first, then the auth cookie.
func (a *BasicAuthenticator) tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(a.cookieName); err == nil {
		return cookie
	}
	return ""
}

// Middleware returns a Gin middleware for authentication.
// It checks the Authorization Bearer header, then the auth cookie.
func (a *BasicAuthenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := a.tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			c.Abort()
			return
		}

		user, err := a.validateAndLoadUser(tokenString)
		if err != nil {
			slog.Warn("Invalid token", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// validateAndLoadUser validates a JWT and loads the user from the database.
func (a *BasicAuthenticator) validateAndLoadUser(tokenString string) (*models.User, error) {
	claims, err := a.validateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	var user models.User
	if err := a.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &user, nil
}

// GetUserFromContext extracts the authenticated user from the Gin context
func (a *BasicAuthenticator) GetUserFromContext(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, ErrUnauthorized
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, errors.New("invalid user in context")
	}
	return user, nil
}
