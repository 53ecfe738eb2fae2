package crypto

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-Pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-Pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret-Pass"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "alice", "USER", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Sub)
	assert.Equal(t, "USER", claims.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "alice", "USER", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", "alice", "USER", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestTOTP(t *testing.T) {
	secret, err := NewTOTPSecret("alice")
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.True(t, ValidateTOTP(code, secret))
	assert.False(t, ValidateTOTP("000000", secret))
}

func TestProvisioningURI(t *testing.T) {
	uri := ProvisioningURI("alice", "SECRET123")
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "secret=SECRET123")
	assert.Contains(t, uri, "issuer=Bookshelf")
	assert.Contains(t, uri, "alice")
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("alice", "SECRET123")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
