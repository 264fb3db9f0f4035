package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"armory/internal/auth"
	"armory/internal/errors"
)

// ClaimsContextKey is where the JWT middleware stores the caller's claims.
const ClaimsContextKey = "user"

// respondError converts a service error into the standard error body.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  "VALIDATION_ERROR",
	})
}

// bindAndValidate binds the body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

// currentClaims returns the authenticated caller's claims.
func currentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing or invalid token",
			Code:  "UNAUTHORIZED",
		})
	}
	return claims, nil
}
