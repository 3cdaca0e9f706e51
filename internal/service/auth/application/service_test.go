package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/auth/domain"
)

type memoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]domain.User
}

func newMemoryRepo() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]domain.User{}}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return domain.ErrUsernameTaken
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = *user
	return nil
}

func (r *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

const testSecret = "test-secret"

func newTestService() *AuthService {
	return NewAuthService(newMemoryRepo(), testSecret, time.Hour, otel.Tracer("test"))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()

	user, err := svc.Register(context.Background(), &RegisterRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "USER", user.Role)
	assert.NotEqual(t, "s3cret", user.PasswordHash, "passwords are stored hashed")

	resp, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), &RegisterRequest{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	_, err := svc.Register(context.Background(), &RegisterRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown users get the same error as a wrong password.
	_, err = svc.Login(context.Background(), "bob", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenCarriesClaims(t *testing.T) {
	svc := newTestService()
	user, err := svc.Register(context.Background(), &RegisterRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	parsed, err := jwt.Parse(resp.Token, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, float64(user.ID), claims["userId"])
	assert.Equal(t, "USER", claims["role"])
}
