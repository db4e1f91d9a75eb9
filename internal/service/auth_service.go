package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService implements AuthService.
type authService struct {
	userRepo   repository.UserRepository
	activity   ActivityRecorder
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	activity ActivityRecorder,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		activity:   activity,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates a new customer account.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		UserType:     model.UserTypeCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("username", req.Username).Msg("registration failed")
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	s.activity.Record(ctx, user, model.ActionUserRegistered, "user", user.ID.String(), nil)

	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if req == nil || req.Username == "" || req.Password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.logger.Debug().Str("username", req.Username).Msg("unknown username")
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("username", req.Username).Msg("password mismatch")
		return nil, model.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")

	return &model.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      *user,
	}, nil
}

// Authenticate resolves a session token to its user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.ErrSessionExpired
	}

	user, err := s.userRepo.GetSessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrSessionExpired
	}

	return user, nil
}

// newSessionToken generates an opaque 256-bit token.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func validateRegisterRequest(req *model.RegisterRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Request body is required")
	}
	if req.Username == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Username is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return model.NewDomainError(model.ErrCodeMissingField, "A valid email is required")
	}
	if len(req.Password) < 8 {
		return model.NewDomainError(model.ErrCodeMissingField, "Password must be at least 8 characters")
	}
	if req.Phone == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Phone is required")
	}
	if req.Pincode == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Pincode is required")
	}
	return nil
}
