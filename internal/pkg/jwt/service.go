package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeVerify  = "verify"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"token_type"`

	jwtlib.RegisteredClaims
}

// ExpiresAtTime returns the zero time when the claim is absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Token is a signed token together with the claims callers need without
// parsing it again.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

type Service interface {
	GenerateAccessToken(userID uuid.UUID, email string) (Token, error)
	GenerateRefreshToken(userID uuid.UUID) (Token, error)
	GenerateVerifyToken(userID uuid.UUID, email string) (Token, error)
	// ValidateToken checks the signature with the secret of tokenType and
	// rejects tokens of any other type.
	ValidateToken(tokenString, tokenType string) (Claims, error)
}

type HMACService struct {
	secrets map[string][]byte
	ttl     map[string]time.Duration

	now func() time.Time
}

func NewHMACService(accessSecret, refreshSecret, verifySecret string, accessExpiresIn, refreshExpiresIn, verifyExpiresIn time.Duration) *HMACService {
	return &HMACService{
		secrets: map[string][]byte{
			TokenTypeAccess:  []byte(accessSecret),
			TokenTypeRefresh: []byte(refreshSecret),
			TokenTypeVerify:  []byte(verifySecret),
		},
		ttl: map[string]time.Duration{
			TokenTypeAccess:  accessExpiresIn,
			TokenTypeRefresh: refreshExpiresIn,
			TokenTypeVerify:  verifyExpiresIn,
		},
		now: time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, email string) (Token, error) {
	return s.generate(TokenTypeAccess, userID, email)
}

func (s *HMACService) GenerateRefreshToken(userID uuid.UUID) (Token, error) {
	return s.generate(TokenTypeRefresh, userID, "")
}

func (s *HMACService) GenerateVerifyToken(userID uuid.UUID, email string) (Token, error) {
	return s.generate(TokenTypeVerify, userID, email)
}

func (s *HMACService) ValidateToken(tokenString, tokenType string) (Claims, error) {
	secret, _, err := s.secretAndExpiry(tokenType)
	if err != nil {
		return Claims{}, err
	}

	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if c.TokenType != tokenType || c.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}

func (s *HMACService) generate(tokenType string, userID uuid.UUID, email string) (Token, error) {
	now := s.now().UTC()
	secret, expIn, err := s.secretAndExpiry(tokenType)
	if err != nil {
		return Token{}, err
	}

	exp := now.Add(expIn)
	jti := uuid.NewString()

	c := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
			Subject:   userID.String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return Token{}, err
	}
	// NumericDate drops sub-second precision; report what the token carries.
	return Token{Value: signed, ID: jti, ExpiresAt: exp.Truncate(time.Second)}, nil
}

func (s *HMACService) secretAndExpiry(tokenType string) ([]byte, time.Duration, error) {
	secret := s.secrets[tokenType]
	ttl := s.ttl[tokenType]
	if len(secret) == 0 || ttl <= 0 {
		return nil, 0, ErrTokenInvalid
	}
	return secret, ttl, nil
}
