package billing

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// NotificationSignature computes the expected signature for a payment
// notification: sha512 over the concatenation of order id, status code, the
// gateway's exact gross-amount string and the merchant server key.
func NotificationSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifyNotificationSignature checks a notification's signature_key against
// the server key. Must be called before any ledger lookup or mutation so an
// unauthenticated caller cannot probe state.
func VerifyNotificationSignature(n GatewayNotification, serverKey string) bool {
	if strings.TrimSpace(serverKey) == "" {
		return false
	}
	expected := NotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	got := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
