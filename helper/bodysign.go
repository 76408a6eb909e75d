package helper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// GenerateBodySign signs a merchant notification body with the shared secret.
// The result is URL-safe base64 of HMAC-SHA256.
func GenerateBodySign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)

	encoded := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return strings.NewReplacer("+", "-", "/", "_").Replace(encoded)
}

// VerifyBodySign checks a bodysign header in constant time.
func VerifyBodySign(body []byte, secret, sign string) bool {
	return hmac.Equal([]byte(GenerateBodySign(body, secret)), []byte(sign))
}
