package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CardFingerprint is a keyed digest of a card number. It lets the card store deduplicate per
// user without keeping the number itself.
func CardFingerprint(secret []byte, cardNumber string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(cardNumber))
	return hex.EncodeToString(mac.Sum(nil))
}
