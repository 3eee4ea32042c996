package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/audit"
	"github.com/bakchoddost/bakchoddost/internal/auth"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves account endpoints: password and OTP login, the
// session cookie, and profile setup.
type AuthHandler struct {
	db           *gorm.DB
	auth         *auth.BasicAuthenticator
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. Cookies are marked Secure when
// secureCookie is set.
func NewAuthHandler(db *gorm.DB, authenticator *auth.BasicAuthenticator, secureCookie bool) *AuthHandler {
	return &AuthHandler{db: db, auth: authenticator, secureCookie: secureCookie}
}

// SessionResponse is returned by every endpoint that logs a user in.
type SessionResponse struct {
	ID    string  `json:"id"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Token string  `json:"token"`
}

// MeResponse describes the current user.
type MeResponse struct {
	ID       string  `json:"id"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Username *string `json:"username"`
	Name     string  `json:"name"`
}

// OTPStartRequest asks for a code to be sent to phone.
type OTPStartRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// OTPConfirmRequest exchanges a code for a session.
type OTPConfirmRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// RegisterProfileRequest sets the display name and derives a username.
type RegisterProfileRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1"`
	LastName  string `json:"lastName"`
}

// RegisterProfileResponse reports the assigned username.
type RegisterProfileResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName(), token, int(h.auth.TokenDuration().Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) startSession(c *gin.Context, status int, resp *auth.LoginResponse) {
	h.setSessionCookie(c, resp.Token)
	c.JSON(status, SessionResponse{
		ID:    resp.User.ID.String(),
		Email: resp.User.Email,
		Phone: resp.User.Phone,
		Token: resp.Token,
	})
}

// Register godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.RegisterRequest true "Email and password"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "A valid email and a password of at least 6 characters are required"})
		return
	}

	resp, err := h.auth.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already in use"})
			return
		}
		slog.Error("Registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	audit.LogAction(h.db, resp.User.ID, audit.ActionCreateUser, audit.UserResource(resp.User.ID), nil)
	h.startSession(c, http.StatusCreated, resp)
}

// Login godoc
// @Summary User login
// @Description Authenticate with email (or username) and password; sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
			return
		}
		slog.Error("Login failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	audit.LogAction(h.db, resp.User.ID, audit.ActionLogin, audit.UserResource(resp.User.ID), nil)
	h.startSession(c, http.StatusOK, resp)
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.auth.CookieName(), "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me godoc
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, meResponse(user))
}

func meResponse(u *models.User) MeResponse {
	return MeResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		Phone:    u.Phone,
		Username: u.Username,
		Name:     u.Name,
	}
}

// StartOTP godoc
// @Summary Send a one-time login code
// @Description Creates the account on first use. The code is echoed back only outside production.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body OTPStartRequest true "Phone number"
// @Success 200 {object} auth.OTPStartResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/otp/start [post]
func (h *AuthHandler) StartOTP(c *gin.Context) {
	var req OTPStartRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Phone) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Phone is required"})
		return
	}

	res, err := h.auth.StartOTP(c.Request.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, auth.ErrSMSUnavailable) {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to send OTP"})
			return
		}
		slog.Error("OTP start failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ConfirmOTP godoc
// @Summary Confirm a one-time login code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body OTPConfirmRequest true "Phone and code"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/otp/confirm [post]
func (h *AuthHandler) ConfirmOTP(c *gin.Context) {
	var req OTPConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Phone and code are required"})
		return
	}

	resp, err := h.auth.ConfirmOTP(c.Request.Context(), req.Phone, strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, auth.ErrInvalidOTP):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid OTP"})
		return
	case errors.Is(err, auth.ErrOTPExpired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "OTP expired"})
		return
	case err != nil:
		slog.Error("OTP confirm failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	audit.LogAction(h.db, resp.User.ID, audit.ActionOTPConfirmed, audit.UserResource(resp.User.ID), nil)
	h.startSession(c, http.StatusOK, resp)
}

// UsernameAvailable godoc
// @Summary Check whether a username is free
// @Tags auth
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]bool
// @Router /auth/username-available [get]
func (h *AuthHandler) UsernameAvailable(c *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(c.Query("username")))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"available": false})
		return
	}
	ok, err := h.auth.UsernameAvailable(c.Request.Context(), name)
	if err != nil {
		slog.Error("Username check failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": ok})
}

// RegisterProfile godoc
// @Summary Set display name and claim a username
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body RegisterProfileRequest true "Name"
// @Success 200 {object} RegisterProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/register-profile [post]
func (h *AuthHandler) RegisterProfile(c *gin.Context) {
	var req RegisterProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FirstName) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "First name is required"})
		return
	}

	userID := getUserID(c)
	user, err := h.auth.RegisterProfile(c.Request.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		slog.Error("Profile registration failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	audit.LogAction(h.db, user.ID, audit.ActionUpdateProfile, audit.UserResource(user.ID), map[string]interface{}{
		"username": *user.Username,
	})
	c.JSON(http.StatusOK, RegisterProfileResponse{OK: true, Username: *user.Username, Name: user.Name})
}
