package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-storefront-api/internal/application/passcode"
	"github.com/go-storefront-api/internal/domain"
	jwtinfra "github.com/go-storefront-api/internal/infrastructure/jwt"
	"github.com/go-storefront-api/internal/pkg/hash"
	"github.com/go-storefront-api/internal/pkg/id"
	"github.com/go-storefront-api/internal/pkg/validate"
)

// LoginResult is the uniform outcome of both credential paths: an identity
// claims snapshot and the signed session token carrying it.
type LoginResult struct {
	Claims jwtinfra.ClaimsData
	Token  string
}

type Service interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error)
	PasswordLogin(ctx context.Context, email, password string) (*LoginResult, error)
	RequestOTPLogin(ctx context.Context, email string) error
	CompleteOTPLogin(ctx context.Context, email, code string) (*LoginResult, error)
	// ValidateSession verifies the token. Claims are trusted as issued;
	// roles can change after issuance, so callers that need the current
	// role pass refreshRole to re-resolve it from the user store. Not done
	// on every call — verification itself is pure computation.
	ValidateSession(ctx context.Context, token string, refreshRole bool) (*jwtinfra.Claims, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type tokenProvider interface {
	Sign(data jwtinfra.ClaimsData) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	users     userStore
	tokens    tokenProvider
	passcodes passcode.Service
}

type ServiceDeps struct {
	UserRepo      userStore
	TokenProvider tokenProvider
	PasscodeSvc   passcode.Service
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:     deps.UserRepo,
		tokens:    deps.TokenProvider,
		passcodes: deps.PasscodeSvc,
	}
}

func (s *service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email availability: %w", err)
	}
	digest, err := hash.New(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: digest,
		Role:         domain.RoleCustomer,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) PasswordLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password required: %w", domain.ErrBadRequest)
	}
	// Unknown email, disabled account, and wrong password all collapse into
	// the same error value and message: callers must not be able to tell
	// which emails have accounts. Store failures are not an auth outcome and
	// propagate as-is.
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if !u.Enable {
		return nil, domain.ErrInvalidCredentials
	}
	if !hash.Verify(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	claims := jwtinfra.ClaimsData{
		Email:    u.Email,
		UserID:   u.UserID,
		Role:     u.Role,
		Username: u.Username,
	}
	token, err := s.tokens.Sign(claims)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Claims: claims, Token: token}, nil
}

func (s *service) RequestOTPLogin(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	return s.passcodes.Request(ctx, email)
}

func (s *service) CompleteOTPLogin(ctx context.Context, email, code string) (*LoginResult, error) {
	if email == "" || code == "" {
		return nil, fmt.Errorf("email and code required: %w", domain.ErrBadRequest)
	}
	res, err := s.passcodes.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Claims: res.Claims, Token: res.Token}, nil
}

func (s *service) ValidateSession(ctx context.Context, token string, refreshRole bool) (*jwtinfra.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if refreshRole {
		u, err := s.users.Get(ctx, claims.Data.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
			}
			return nil, fmt.Errorf("refresh role: %w", err)
		}
		claims.Data.Role = u.Role
		claims.Data.Username = u.Username
	}
	return claims, nil
}
