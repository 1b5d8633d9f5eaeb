package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/motormania/motormania-go/internal/clock"
	"github.com/motormania/motormania-go/internal/model"
	"github.com/motormania/motormania-go/internal/repository"
	"github.com/motormania/motormania-go/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailTaken         = errors.New("email already taken")
	ErrSessionNotFound    = errors.New("refresh token is not recognized")
)

// UserStore is the user persistence surface AuthService depends on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionStore is the refresh token ledger: at most one live row per user.
type SessionStore interface {
	Replace(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	Exists(ctx context.Context, userID int64, token string, now time.Time) (bool, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

// AuthService handles signup, login, and the session token lifecycle.
type AuthService struct {
	users     UserStore
	sessions  SessionStore
	issuer    *token.Issuer
	validator *token.Validator
	clock     clock.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, issuer *token.Issuer, validator *token.Validator, clk clock.Clock) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		issuer:    issuer,
		validator: validator,
		clock:     clk,
	}
}

// Signup creates a new user account. The new user holds no session until
// they log in.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return model.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login authenticates a user, issues a fresh token pair, and replaces the
// user's ledger row with the new refresh token. Unknown emails and wrong
// passwords are indistinguishable to the caller. If the ledger write fails,
// no tokens are returned.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	access, err := s.issuer.AccessToken(*user)
	if err != nil {
		return model.AuthResponse{}, err
	}
	refresh, expiresAt, err := s.issuer.RefreshToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if err := s.sessions.Replace(ctx, user.ID, refresh, expiresAt); err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		ID:     strconv.FormatInt(user.ID, 10),
		Name:   user.Name,
		Email:  user.Email,
		Tokens: model.TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Refresh validates a refresh token against its signature and the ledger,
// then issues a new access token. The refresh token itself is returned
// unchanged so the client keeps a single long-lived session credential.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.AuthResponse, error) {
	userID, err := s.validator.ValidateRefresh(refreshToken)
	if err != nil {
		return model.AuthResponse{}, err
	}

	live, err := s.sessions.Exists(ctx, userID, refreshToken, s.clock.Now())
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !live {
		return model.AuthResponse{}, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrSessionNotFound
		}
		return model.AuthResponse{}, err
	}

	access, err := s.issuer.AccessToken(*user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		ID:     strconv.FormatInt(user.ID, 10),
		Name:   user.Name,
		Email:  user.Email,
		Tokens: model.TokenPair{AccessToken: access, RefreshToken: refreshToken},
	}, nil
}

// Logout removes the user's ledger row. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.sessions.DeleteByUser(ctx, userID)
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}
	return model.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}
