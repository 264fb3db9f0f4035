package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"armory/internal/auth"
	"armory/internal/errors"
	"armory/internal/handler"
	"armory/internal/logger"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	log zerolog.Logger,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	inventoryHandler *handler.InventoryHandler,
	logHandler *handler.LogHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "API is working"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.GET("/register", authHandler.RegisterInfo)
	e.POST("/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/login/qr", authHandler.LoginQR)
	e.POST("/auth/refresh", authHandler.Refresh)

	// Secured routes (require JWT authentication)
	secured := e.Group("", JWTMiddleware(jwtService), RejectRevoked(tokenStore))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/users/profile", userHandler.Profile)

	secured.POST("/inventory/scan", inventoryHandler.Scan)
	secured.GET("/inventory", inventoryHandler.Mine)
	secured.POST("/inventory/items", inventoryHandler.CreateItem)
	secured.GET("/inventory/items", inventoryHandler.ListItems)
	secured.GET("/inventory/items/:id", inventoryHandler.GetItem)
	secured.PUT("/inventory/items/:id", inventoryHandler.UpdateItem)
	secured.DELETE("/inventory/items/:id", inventoryHandler.DeleteItem)

	secured.GET("/logs", logHandler.List)
	secured.GET("/logs/:id", logHandler.Get)
}

// JWTMiddleware authenticates Bearer tokens and stores *auth.Claims in the
// context under handler.ClaimsContextKey.
func JWTMiddleware(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized("missing or invalid token")
		},
	})
}

// RejectRevoked refuses access tokens that were blacklisted at logout.
func RejectRevoked(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsContextKey).(*auth.Claims)
			if !ok {
				return unauthorized("missing or invalid token")
			}
			revoked, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return err
			}
			if revoked {
				return unauthorized("token has been revoked")
			}
			return next(c)
		}
	}
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
