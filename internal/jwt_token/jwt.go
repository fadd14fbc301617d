package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

// Claims represents the JWT claims for our access tokens. Subject carries the
// identity id and ID the jti used for revocation.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed access token with the claims it was built from.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	clock      func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides time.Now for issuing and validation.
func WithClock(clock func() time.Time) Option {
	return func(s *JWTService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewJWTService(signingKey, issuer string, ttl time.Duration, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL is the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration { return s.ttl }

// GenerateAccessToken signs an HS256 token for userID.
func (s *JWTService) GenerateAccessToken(userID id.UserID, email string) (*IssuedToken, error) {
	now := s.clock()
	exp := now.Add(s.ttl)
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: signedToken, JTI: jti, ExpiresAt: exp}, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
