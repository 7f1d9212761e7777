package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
)

// sign computes the CB-ACCESS-SIGN value: base64(HMAC-SHA256(secret,
// timestamp + method + requestPath + body)) with the base64-decoded
// API secret as key.
func sign(secret, timestamp, method, requestPath, body string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode api secret")
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp + method + requestPath + body))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
