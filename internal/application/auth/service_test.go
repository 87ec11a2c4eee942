package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-storefront-api/internal/domain"
	jwtinfra "github.com/go-storefront-api/internal/infrastructure/jwt"
	"github.com/go-storefront-api/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockTokenProvider struct{ mock.Mock }

func (m *mockTokenProvider) Sign(data jwtinfra.ClaimsData) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}
func (m *mockTokenProvider) Verify(token string) (*jwtinfra.Claims, error) {
	args := m.Called(token)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(us *mockUserStore, tp *mockTokenProvider) Service {
	return NewService(ServiceDeps{
		UserRepo:      us,
		TokenProvider: tp,
	})
}

func enabledUser(t *testing.T, password string) *domain.User {
	t.Helper()
	digest, err := hash.New(password)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "u1",
		Email:        "a@b.com",
		Username:     "alice",
		PasswordHash: digest,
		Role:         domain.RoleCustomer,
		Enable:       true,
	}
}

// --- SignUp ---

func TestSignUp_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, domain.ErrNotFound)

	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)

	svc := newTestService(us, nil)
	u, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:    "new@b.com",
		Password: "longenough1",
		Username: "newbie",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.True(t, u.Enable)
	assert.NotEmpty(t, u.UserID)
	// Never store the plaintext.
	assert.NotEqual(t, "longenough1", created.PasswordHash)
	assert.True(t, hash.Verify("longenough1", created.PasswordHash))
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(enabledUser(t, "whatever1"), nil)

	svc := newTestService(us, nil)
	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:    "a@b.com",
		Password: "longenough1",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// A store failure during the duplicate check must surface, not read as
// "email available": continuing would risk a silent duplicate row.
func TestSignUp_AvailabilityCheckStoreFailure(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, errors.New("connection refused"))

	svc := newTestService(us, nil)
	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:    "new@b.com",
		Password: "longenough1",
		Username: "newbie",
	})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSignUp_InvalidInput(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:    "not-an-email",
		Password: "short",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- PasswordLogin ---

func TestPasswordLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tp := &mockTokenProvider{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(enabledUser(t, "s3cret-pass"), nil)
	tp.On("Sign", mock.AnythingOfType("jwtinfra.ClaimsData")).Return("bearer-token", nil)

	svc := newTestService(us, tp)
	res, err := svc.PasswordLogin(context.Background(), "a@b.com", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", res.Token)
	assert.Equal(t, "u1", res.Claims.UserID)
	assert.Equal(t, "alice", res.Claims.Username)
}

func TestPasswordLogin_EmptyFields(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.PasswordLogin(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// Unknown email, disabled account, and wrong password must be externally
// indistinguishable.
func TestPasswordLogin_FailuresAreIndistinguishable(t *testing.T) {
	unknown := &mockUserStore{}
	unknown.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	disabled := &mockUserStore{}
	du := enabledUser(t, "s3cret-pass")
	du.Enable = false
	disabled.On("GetByEmail", mock.Anything, mock.Anything).Return(du, nil)

	wrongPass := &mockUserStore{}
	wrongPass.On("GetByEmail", mock.Anything, mock.Anything).Return(enabledUser(t, "s3cret-pass"), nil)

	cases := map[string]struct {
		store    *mockUserStore
		password string
	}{
		"unknown email":    {unknown, "s3cret-pass"},
		"disabled account": {disabled, "s3cret-pass"},
		"wrong password":   {wrongPass, "not-the-pass"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(tc.store, nil)
			_, err := svc.PasswordLogin(context.Background(), "a@b.com", tc.password)
			require.Error(t, err)
			assert.Equal(t, domain.ErrInvalidCredentials, err)
		})
	}
}

// A user store outage is an internal failure, not bad credentials: it must
// never collapse into ErrInvalidCredentials.
func TestPasswordLogin_StoreFailureIsNotCredentialFailure(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("connection refused"))

	svc := newTestService(us, nil)
	_, err := svc.PasswordLogin(context.Background(), "a@b.com", "s3cret-pass")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredentials))
}

// --- ValidateSession ---

func validClaims() *jwtinfra.Claims {
	return &jwtinfra.Claims{
		Data: jwtinfra.ClaimsData{Email: "a@b.com", UserID: "u1", Role: domain.RoleCustomer, Username: "alice"},
	}
}

func TestValidateSession_NoRefresh(t *testing.T) {
	tp := &mockTokenProvider{}
	tp.On("Verify", "tok").Return(validClaims(), nil)

	svc := newTestService(nil, tp)
	claims, err := svc.ValidateSession(context.Background(), "tok", false)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, claims.Data.Role)
}

func TestValidateSession_RefreshRole(t *testing.T) {
	us := &mockUserStore{}
	tp := &mockTokenProvider{}
	tp.On("Verify", "tok").Return(validClaims(), nil)

	promoted := enabledUser(t, "x-unused-1")
	promoted.Role = domain.RoleAdmin
	us.On("Get", mock.Anything, "u1").Return(promoted, nil)

	svc := newTestService(us, tp)
	claims, err := svc.ValidateSession(context.Background(), "tok", true)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Data.Role)
}

func TestValidateSession_RefreshRole_UserGone(t *testing.T) {
	us := &mockUserStore{}
	tp := &mockTokenProvider{}
	tp.On("Verify", "tok").Return(validClaims(), nil)
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	svc := newTestService(us, tp)
	_, err := svc.ValidateSession(context.Background(), "tok", true)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestValidateSession_RefreshRole_StoreFailure(t *testing.T) {
	us := &mockUserStore{}
	tp := &mockTokenProvider{}
	tp.On("Verify", "tok").Return(validClaims(), nil)
	us.On("Get", mock.Anything, "u1").Return(nil, errors.New("connection refused"))

	svc := newTestService(us, tp)
	_, err := svc.ValidateSession(context.Background(), "tok", true)

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestValidateSession_ExpiredToken(t *testing.T) {
	tp := &mockTokenProvider{}
	tp.On("Verify", "tok").Return(nil, domain.ErrTokenExpired)

	svc := newTestService(nil, tp)
	_, err := svc.ValidateSession(context.Background(), "tok", false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
}

// Tokens signed with a real provider round-trip through ValidateSession.
func TestValidateSession_RealProvider(t *testing.T) {
	p, err := jwtinfra.NewProvider("test-secret", 10*time.Minute)
	require.NoError(t, err)

	svc := NewService(ServiceDeps{TokenProvider: p})
	token, err := p.Sign(jwtinfra.ClaimsData{Email: "a@b.com", UserID: "u1", Role: domain.RoleCustomer})
	require.NoError(t, err)

	claims, err := svc.ValidateSession(context.Background(), token, false)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Data.UserID)
}
