package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the session lifetime when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// ErrInvalidToken is the only failure Verify reports. Bad signature,
// malformed structure, expiry and missing subject all map to it.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. FullName is for display only.
type Claims struct {
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// Session is what a verified token asserts.
type Session struct {
	SubjectID   string
	DisplayName string
	ExpiresAt   time.Time
}

// TokenCodec signs and verifies HS256 session tokens with a secret fixed
// at construction.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec that reads time from now.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *tc
	clone.now = now
	return &clone
}

func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Issue signs a token for subjectID with the codec's default lifetime.
func (tc *TokenCodec) Issue(subjectID uint, displayName string) (string, error) {
	return tc.IssueWithTTL(subjectID, displayName, tc.ttl)
}

func (tc *TokenCodec) IssueWithTTL(subjectID uint, displayName string, ttl time.Duration) (string, error) {
	issuedAt := tc.now()
	claims := Claims{
		FullName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(issuedAt.Add(ttl))),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and that now is strictly before expiry.
// No leeway is applied.
func (tc *TokenCodec) Verify(tokenString string) (*Session, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tc.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil || !tc.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Session{
		SubjectID:   claims.Subject,
		DisplayName: claims.FullName,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// ceilSecond rounds t up to a whole second. exp is carried in whole
// seconds, and truncating it would end the session before its ttl.
func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); !truncated.Equal(t) {
		return truncated.Add(time.Second)
	}
	return t
}
