// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/hearth/internal/platform/sec"
)

const issuer = "hearth.test"

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

/*
TestTokenService_RoundTrip verifies that a signed token verifies back to its claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := sec.NewTokenService(generateKey(t), issuer)

	token, err := service.GenerateAccessToken("0190a5c4-0000-7000-8000-000000000001", "ana", time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0190a5c4-0000-7000-8000-000000000001", claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, issuer, claims.Issuer)
}

/*
TestTokenService_Rejects covers tokens that must not authenticate.
*/
func TestTokenService_Rejects(t *testing.T) {
	key := generateKey(t)
	service := sec.NewTokenService(key, issuer)

	expired, err := service.GenerateAccessToken("user-1", "ana", -time.Minute)
	require.NoError(t, err)

	foreign, err := sec.NewTokenService(key, "someone-else").GenerateAccessToken("user-1", "ana", time.Minute)
	require.NoError(t, err)

	forged, err := sec.NewTokenService(generateKey(t), issuer).GenerateAccessToken("user-1", "ana", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong_issuer", foreign},
		{"wrong_key", forged},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

/*
TestNewVerifier verifies the verify-only service built from a PEM file.
*/
func TestNewVerifier(t *testing.T) {
	key := generateKey(t)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "jwt.pub")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	verifier, err := sec.NewVerifier(path, issuer)
	require.NoError(t, err)

	token, err := sec.NewTokenService(key, issuer).GenerateAccessToken("user-1", "", time.Minute)
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = verifier.GenerateAccessToken("user-1", "", time.Minute)
	assert.ErrorIs(t, err, sec.ErrSigningDisabled)

	_, err = sec.NewVerifier(filepath.Join(t.TempDir(), "missing.pub"), issuer)
	assert.Error(t, err)
}
