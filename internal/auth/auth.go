// Package auth issues the tokens a player presents to reclaim a seat after
// the socket drops.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadToken = errors.New("reconnect token rejected")

const defaultTTL = 24 * time.Hour

// Claims binds a token to one seat in one match. The seat's player id is
// the subject.
type Claims struct {
	MatchID string `json:"match"`
	jwt.RegisteredClaims
}

// Issuer signs and checks HS256 reconnect tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

// NewIssuer builds an issuer. An empty secret is replaced by random bytes,
// which invalidates every token on restart.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: key, ttl: ttl, Now: time.Now}, nil
}

// Issue returns a signed token for playerID in matchID.
func (i *Issuer) Issue(matchID, playerID string) (string, error) {
	now := i.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	return token.SignedString(i.secret)
}

// Verify checks that token was issued for playerID in matchID and has not
// expired.
func (i *Issuer) Verify(token, matchID, playerID string) error {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.Now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if claims.MatchID != matchID || claims.Subject != playerID {
		return fmt.Errorf("%w: token belongs to another seat", ErrBadToken)
	}
	return nil
}
