package authenticator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	AccountID string `json:"account_id"`
}

func TestTokenEngine(t *testing.T) {
	engine := NewTokenEngine[fakeToken]("secret")

	token, err := engine.Generate(time.Minute, fakeToken{AccountID: "alice"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", obj.AccountID)

	_, err = NewTokenEngine[fakeToken]("another-secret").Verify(token)
	require.Error(t, err)
}

func TestTokenEngineExpiration(t *testing.T) {
	engine := NewTokenEngine[fakeToken]("secret")

	token, err := engine.Generate(-time.Minute, fakeToken{AccountID: "alice"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}
