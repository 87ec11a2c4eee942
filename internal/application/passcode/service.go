package passcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-storefront-api/internal/domain"
	jwtinfra "github.com/go-storefront-api/internal/infrastructure/jwt"
	"github.com/go-storefront-api/internal/pkg/hash"
	"github.com/go-storefront-api/internal/pkg/id"
)

// codeTTL bounds how long a delivered code stays usable.
const codeTTL = 5 * time.Minute

// Result is what a successful code verification yields: the identity claims
// snapshot and a signed session token carrying them.
type Result struct {
	Claims jwtinfra.ClaimsData
	Token  string
}

type Service interface {
	// Request generates a fresh single-use login code for the account behind
	// email, persists it hashed, and hands the plaintext to the mailer. A new
	// request supersedes any outstanding code for the same user.
	Request(ctx context.Context, email string) error
	// Verify consumes the outstanding code exactly once and issues a session
	// token. Consumption is atomic at the store: of two concurrent calls with
	// the same valid code, at most one succeeds.
	Verify(ctx context.Context, email, code string) (*Result, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type passcodeStore interface {
	Put(ctx context.Context, p *domain.OneTimePasscode) error
	Get(ctx context.Context, userID string) (*domain.OneTimePasscode, error)
	Consume(ctx context.Context, userID, passcodeID string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenSigner interface {
	Sign(data jwtinfra.ClaimsData) (string, error)
}

type service struct {
	users     userStore
	passcodes passcodeStore
	mailer    mailer
	signer    tokenSigner
}

type ServiceDeps struct {
	UserRepo     userStore
	PasscodeRepo passcodeStore
	Mailer       mailer
	TokenSigner  tokenSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:     deps.UserRepo,
		passcodes: deps.PasscodeRepo,
		mailer:    deps.Mailer,
		signer:    deps.TokenSigner,
	}
}

func (s *service) Request(ctx context.Context, email string) error {
	// Unknown email is reported distinctly on the OTP path. This leaks
	// account existence; accepted tradeoff, the password path does not.
	// Store failures are not a lookup outcome and propagate as-is.
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("resolve user: %w", err)
	}

	code, err := newCode()
	if err != nil {
		return err
	}
	digest, err := hash.New(code)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	p := &domain.OneTimePasscode{
		UserID:     u.UserID,
		PasscodeID: id.New(),
		CodeHash:   digest,
		ExpiresAt:  now.Add(codeTTL).Unix(),
		Consumed:   false,
		CreatedAt:  now,
	}
	if err := s.passcodes.Put(ctx, p); err != nil {
		return err
	}

	// The persisted code stays valid on delivery failure; the caller may
	// retry or request a new code, which overwrites this row.
	if err := s.mailer.SendEmail(u.Email, "Your login code", "Code: "+code); err != nil {
		return fmt.Errorf("send login code: %w", domain.ErrDeliveryFailed)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, email, code string) (*Result, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	p, err := s.passcodes.Get(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	if p.Consumed {
		return nil, fmt.Errorf("passcode already used: %w", domain.ErrCodeNotFound)
	}
	if time.Now().Unix() > p.ExpiresAt {
		return nil, fmt.Errorf("passcode expired: %w", domain.ErrCodeExpired)
	}
	if !hash.Verify(code, p.CodeHash) {
		return nil, fmt.Errorf("passcode mismatch: %w", domain.ErrCodeMismatch)
	}

	// Single conditional write: the losing side of a concurrent verification
	// gets ErrCodeNotFound here, never a second success.
	if err := s.passcodes.Consume(ctx, u.UserID, p.PasscodeID); err != nil {
		return nil, err
	}

	claims := jwtinfra.ClaimsData{
		Email:    u.Email,
		UserID:   u.UserID,
		Role:     u.Role,
		Username: u.Username,
	}
	token, err := s.signer.Sign(claims)
	if err != nil {
		return nil, err
	}
	return &Result{Claims: claims, Token: token}, nil
}

// newCode draws a 6-digit numeric code in [100000, 999999] from crypto/rand.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
