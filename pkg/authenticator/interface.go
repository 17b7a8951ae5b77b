package authenticator

import "time"

type TokenEngine[T any] interface {
	Generate(expiration time.Duration, obj T) (string, error)
	Verify(token string) (T, error)
}
