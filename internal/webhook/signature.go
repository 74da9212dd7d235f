package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// ValidSignature reports whether the X-Hub-Signature-256 header matches
// the HMAC-SHA256 of the raw body under the app secret. Comparison is
// constant time.
func ValidSignature(body []byte, header, appSecret string) bool {
	if appSecret == "" || !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

// Signature computes the X-Hub-Signature-256 header value for a body.
// Used by tests and local tooling to sign requests.
func Signature(body []byte, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
