package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/bettstax/backend/internal/domain/shared"
)

// Delivery request headers. Receivers verify authenticity by recomputing
// the HMAC-SHA256 of the raw body with the shared secret and comparing it
// to the signature header in constant time.
const (
	HeaderSignature = "X-CTIS-Signature"
	HeaderEventType = "X-CTIS-Event"
	HeaderDelivery  = "X-CTIS-Delivery"

	signaturePrefix = "sha256="
)

// Sign computes the signature header value for a payload:
// "sha256=" followed by the hex HMAC-SHA256 of the payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a signature header value against the payload.
// Comparison is constant time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseHeaders decodes the custom headers JSON stored on a registration.
func ParseHeaders(headersJSON string) (map[string]string, error) {
	if headersJSON == "" {
		return map[string]string{}, nil
	}
	var headers map[string]string
	if err := json.Unmarshal([]byte(headersJSON), &headers); err != nil {
		return nil, shared.NewDomainError("INVALID_HEADERS", "Headers must be a JSON object of string values")
	}
	return headers, nil
}
