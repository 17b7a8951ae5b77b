package authenticator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type claims struct {
	jwt.RegisteredClaims
	Data json.RawMessage `json:"data"`
}

type tokenEngine[T any] struct {
	secret string
}

func NewTokenEngine[T any](secret string) *tokenEngine[T] {
	return &tokenEngine[T]{secret: secret}
}

func (e *tokenEngine[T]) Generate(expiration time.Duration, obj T) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
		Data: data,
	})

	return token.SignedString([]byte(e.secret))
}

func (e *tokenEngine[T]) Verify(token string) (T, error) {
	var obj T
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return []byte(e.secret), nil
	})
	if err != nil {
		return obj, err
	}

	if !parsed.Valid {
		return obj, fmt.Errorf("invalid token")
	}

	if err := json.Unmarshal(c.Data, &obj); err != nil {
		return obj, err
	}

	return obj, nil
}
