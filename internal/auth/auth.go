// Package auth issues and verifies the storefront's bearer credentials.
// Passwords are stored as bcrypt digests; sessions are stateless HS256 JWTs
// carrying the user id as subject.
package auth

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/akasa-feast/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so callers cannot probe which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for malformed, forged, or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidEmail rejects addresses without a plausible shape.
	ErrInvalidEmail = errors.New("invalid email address")
)

// PasswordPolicyError explains which password requirement failed.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return "password rejected: " + e.Reason
}

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Authenticator owns credential verification and token lifecycle.
type Authenticator struct {
	users  user.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates an Authenticator. A non-positive ttl falls back to
// DefaultTokenTTL.
func New(users user.Repository, secret []byte, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// ValidatePassword enforces the account password policy: 8 to 72 bytes
// (the bcrypt input limit), at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &PasswordPolicyError{Reason: "must be at least 8 characters"}
	}
	if len(password) > 72 {
		return &PasswordPolicyError{Reason: "must be at most 72 characters"}
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return &PasswordPolicyError{Reason: "must contain at least one letter"}
	}
	if !hasDigit {
		return &PasswordPolicyError{Reason: "must contain at least one digit"}
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// Register creates a new account after validating the email shape and
// password policy. Duplicate emails surface as user.ErrEmailTaken.
func (a *Authenticator) Register(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	password = strings.TrimSpace(password)
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u, err := a.users.Create(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies an email/password pair and returns the account.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrapf(err, "lookup user %q", email)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueToken mints a signed bearer token for the user and reports its expiry.
func (a *Authenticator) IssueToken(userID int64) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return token, expires, nil
}

// VerifyToken checks signature and expiry and returns the subject user id.
func (a *Authenticator) VerifyToken(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
