package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("att-1", "abc_leave.pdf")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	id, ref, _, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "att-1", id)
	require.Equal(t, "abc_leave.pdf", ref)
}

func TestSignedURLTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("att-1", "abc_leave.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	require.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Nanosecond)

	token, _, err := signer.Generate("att-1", "abc_leave.pdf")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, _, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	other := NewSignedURLSigner("different", time.Minute)

	token, _, err := signer.Generate("att-1", "abc_leave.pdf")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}
