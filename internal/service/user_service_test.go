package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shoply/internal/domain"
	"shoply/internal/repository"
)

const testJWTSecret = "test-secret"

type mockUserRepo struct {
	findByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	findByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)

	created *domain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.created = user
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}

func newUserServiceForTest(repo *mockUserRepo) UserService {
	return NewUserService(repo, testJWTSecret, time.Hour)
}

func parseTestClaims(t *testing.T, token string) *Claims {
	t.Helper()
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}

func TestRegister(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserServiceForTest(repo)

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "Str0ng!pass")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "Str0ng!pass", repo.created.PasswordHash, "password is never stored in the clear")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("Str0ng!pass")))
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc := newUserServiceForTest(&mockUserRepo{})

	_, err := svc.Register(context.Background(), "Alice", "not-an-email", "Str0ng!pass")

	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc := newUserServiceForTest(&mockUserRepo{})

	for _, password := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSymbols11"} {
		_, err := svc.Register(context.Background(), "Alice", "alice@example.com", password)
		assert.ErrorIs(t, err, ErrWeakPassword, "password %q must be rejected", password)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := &domain.User{ID: uuid.New(), Email: "alice@example.com"}
	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return existing, nil
		},
	}
	svc := newUserServiceForTest(repo)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "Str0ng!pass")

	require.ErrorIs(t, err, repository.ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), BcryptCost)
	require.NoError(t, err)

	stored := &domain.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return stored, nil
		},
	}
	svc := newUserServiceForTest(repo)

	token, user, err := svc.Login(context.Background(), "alice@example.com", "Str0ng!pass")

	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)

	claims := parseTestClaims(t, token)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Empty(t, claims.Purpose)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), BcryptCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: uuid.New(), PasswordHash: string(hash)}, nil
		},
	}
	svc := newUserServiceForTest(repo)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")

	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newUserServiceForTest(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")

	require.ErrorIs(t, err, ErrInvalidCredentials, "unknown email and bad password are indistinguishable")
}

func TestCheckEmail(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			if email == "alice@example.com" {
				return &domain.User{ID: uuid.New(), Email: email}, nil
			}
			return nil, repository.ErrUserNotFound
		},
	}
	svc := newUserServiceForTest(repo)

	exists, err := svc.CheckEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CheckEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestForgotPasswordIssuesResetToken(t *testing.T) {
	stored := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	repo := &mockUserRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return stored, nil
		},
	}
	svc := newUserServiceForTest(repo)

	token, err := svc.ForgotPassword(context.Background(), stored.ID)

	require.NoError(t, err)
	claims := parseTestClaims(t, token)
	assert.Equal(t, "password_reset", claims.Purpose)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(ResetTokenExpiration), claims.ExpiresAt.Time, time.Minute)
}

func TestProperty_PasswordHashingRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("hashing is one-way but verifiable", prop.ForAll(
		func(password string) bool {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				return false
			}
			if string(hash) == password {
				return false
			}
			return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
		},
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,40}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
