package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"armory/internal/model"
	"armory/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginQRRequest represents a login with the identity code printed on a badge.
type LoginQRRequest struct {
	IDCode string `json:"id_code" form:"id_code" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *model.User `json:"user,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// RegisterHelp describes the registration payload.
type RegisterHelp struct {
	Message        string            `json:"message"`
	RequiredFields map[string]string `json:"required_fields"`
	ContentType    string            `json:"content_type"`
}

// RegisterInfo godoc
// @Summary Describe registration fields
// @Tags auth
// @Produce json
// @Success 200 {object} RegisterHelp
// @Router /register [get]
func (h *AuthHandler) RegisterInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, RegisterHelp{
		Message: "Please send a POST request with registration details",
		RequiredFields: map[string]string{
			"username":         "string (required)",
			"password":         "string (required)",
			"confirm_password": "string (required, must match password)",
			"full_name":        "string (required)",
			"rank":             "string (required)",
			"unit":             "string (required)",
			"email":            "string (required)",
			"phone_number":     "string (digits only)",
			"birth_date":       "YYYY-MM-DD or DD/MM/YYYY or MM/DD/YYYY",
			"role":             "string (one of: Civilian Employee, Military Personnel, Contractor)",
			"id_code":          "string (optional, generated when empty)",
		},
		ContentType: "application/json",
	})
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	// field rules live in RegisterInput.Validate so every error is reported at once
	result, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
		Message:      "Registration successful",
	})
}

// Login godoc
// @Summary Login with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

// LoginQR godoc
// @Summary Login with an identity code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginQRRequest true "Identity code"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login/qr [post]
func (h *AuthHandler) LoginQR(c echo.Context) error {
	var req LoginQRRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.LoginByIdentityCode(c.Request().Context(), req.IDCode)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: accessToken})
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken, claims); err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}
