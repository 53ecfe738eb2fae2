package crypto

import (
	"net/url"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// Issuer is the name shown in authenticator apps.
const Issuer = "Bookshelf"

// NewTOTPSecret generates a fresh base32 TOTP secret for a user.
func NewTOTPSecret(username string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: username,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// ValidateTOTP reports whether code is currently valid for the secret.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}

// ProvisioningURI builds the otpauth URL an authenticator app enrolls
// from.
func ProvisioningURI(username, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", Issuer)
	return "otpauth://totp/" + url.PathEscape(Issuer+":"+username) + "?" + v.Encode()
}

// QRCodePNG renders the provisioning URI as a PNG image.
func QRCodePNG(username, secret string) ([]byte, error) {
	return qrcode.Encode(ProvisioningURI(username, secret), qrcode.Medium, 256)
}
