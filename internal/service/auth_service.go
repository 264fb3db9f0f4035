package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"armory/internal/auth"
	apperrors "armory/internal/errors"
	"armory/internal/model"
	"armory/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = &apperrors.KindError{Kind: apperrors.ErrUnauthorized, Message: "Invalid credentials"}
	// ErrInvalidIdentityCode is returned when no user carries the identity code.
	ErrInvalidIdentityCode = &apperrors.KindError{Kind: apperrors.ErrUnauthorized, Message: "Invalid ID code"}
	// ErrUserAlreadyExists is returned when username or email is taken.
	ErrUserAlreadyExists = &apperrors.KindError{Kind: apperrors.ErrConflict, Message: "A user with this username or email already exists."}
	// ErrIdentityCodeTaken is returned when a supplied identity code is in use.
	ErrIdentityCodeTaken = &apperrors.KindError{Kind: apperrors.ErrConflict, Message: "A user with this QR ID already exists."}
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = &apperrors.KindError{Kind: apperrors.ErrUnauthorized, Message: "invalid or expired refresh token"}
)

// dummyHash keeps unknown-user logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("armory-timing-equaliser"), bcryptCost)

// AuthResult is what every successful authentication hands back.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	LoginByIdentityCode(ctx context.Context, code string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	newCode    TokenFunc
	log        zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, log zerolog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		newCode:    NewOpaqueToken,
		log:        log.With().Str("component", "auth").Logger(),
	}
}

// Register validates input, creates the user with a hashed password and
// logs them in.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	reg, err := input.Validate()
	if err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, reg.Username, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if taken {
		return nil, ErrUserAlreadyExists
	}

	code := reg.IDCode
	if code != "" {
		used, err := s.userRepo.ExistsByIdentityCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check identity code: %w", err)
		}
		if used {
			return nil, ErrIdentityCodeTaken
		}
	} else {
		code, err = uniqueToken(ctx, s.newCode, s.userRepo.ExistsByIdentityCode)
		if err != nil {
			return nil, fmt.Errorf("generate identity code: %w", err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		IdentityCode: code,
		FullName:     reg.FullName,
		Rank:         reg.Rank,
		Unit:         reg.Unit,
		Role:         reg.role,
		PhoneNumber:  optional(reg.PhoneNumber),
		BirthDate:    reg.birthDate,
		IDType:       optional(reg.IDType),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent registration
			return nil, apperrors.Conflict("A user with these details already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return s.issue(ctx, user)
}

// Login authenticates by username and password.
func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// LoginByIdentityCode authenticates with the identity code alone.
func (s *authService) LoginByIdentityCode(ctx context.Context, code string) (*AuthResult, error) {
	if code == "" {
		return nil, ErrInvalidIdentityCode
	}
	user, err := s.userRepo.FindByIdentityCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidIdentityCode
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return s.issue(ctx, user)
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Username, claims.IdentityCode)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates the refresh token and, when given, the current access token.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if access != nil && access.UserID != claims.UserID {
		return ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if access != nil {
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, s.jwtService.RemainingTTL(access)); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, user.IdentityCode)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username, user.IdentityCode)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
