// Package signature verifies payment confirmation signals before they may
// touch order state. The checkout and webhook channels use different message
// constructions and different secrets; they are not interchangeable.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

type Verifier struct {
	checkoutSecret string
	webhookSecret  string
}

func NewVerifier(checkoutSecret, webhookSecret string) *Verifier {
	return &Verifier{
		checkoutSecret: checkoutSecret,
		webhookSecret:  webhookSecret,
	}
}

// VerifyCheckout checks the client-callback signature: hex HMAC-SHA-256 over
// "<providerOrderID>|<providerPaymentID>" keyed by the API key secret.
func (v *Verifier) VerifyCheckout(providerOrderID, providerPaymentID, sig string) bool {
	return verify([]byte(providerOrderID+"|"+providerPaymentID), sig, v.checkoutSecret)
}

// VerifyWebhook checks the push-channel signature: hex HMAC-SHA-256 over the
// raw request body keyed by the webhook secret.
func (v *Verifier) VerifyWebhook(body []byte, sig string) bool {
	return verify(body, sig, v.webhookSecret)
}

func verify(message []byte, sig, secret string) bool {
	if sig == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) == 1
}
