package application

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/auth/domain"
)

const defaultRole = "USER"

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService handles account registration and token issuance. Tokens
// are HS256 JWTs carrying userId and role claims.
type AuthService struct {
	repo     domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
	tracer   trace.Tracer
}

func NewAuthService(repo domain.UserRepository, secret string, tokenTTL time.Duration, tracer trace.Tracer) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL, tracer: tracer}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Register")
	defer span.End()

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         defaultRole,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Same error as a wrong password, so usernames cannot be probed.
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    user.Username,
		"userId": user.ID,
		"role":   user.Role,
		"iat":    time.Now().Unix(),
		"exp":    expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}

	logger.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user logged in")
	return &LoginResponse{Token: signed, ExpiresAt: expiresAt}, nil
}
