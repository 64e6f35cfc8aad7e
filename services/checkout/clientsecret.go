package checkout

import "strings"

const (
	intentIDPrefix  = "pi_"
	secretDelimiter = "_secret"
)

// PaymentIntentIDFromClientSecret extracts the payment-intent id from an
// opaque client secret: the token before the secret-delimiter segment, but
// only when that token carries the provider's intent-id marker.
func PaymentIntentIDFromClientSecret(clientSecret string) string {
	if !strings.HasPrefix(clientSecret, intentIDPrefix) {
		return ""
	}
	idx := strings.Index(clientSecret, secretDelimiter)
	if idx <= 0 {
		return ""
	}
	return clientSecret[:idx]
}
