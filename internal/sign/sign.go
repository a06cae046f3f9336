// Package sign builds the HMAC-SHA256 signatures that some venues require on
// their coin/network-info endpoints. The signature is computed over the raw
// key=value&... query string and transmitted hex-encoded alongside an
// API-key header.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// HMACSHA256Hex computes HMAC-SHA256 of payload using secret and returns the
// digest as a lowercase hex string.
func HMACSHA256Hex(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Timestamp returns the current time as a millisecond Unix epoch string, the
// format every signing venue expects in its canonical query string.
func Timestamp() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
