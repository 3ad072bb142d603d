package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RFC 6238 parameters matching the codes we email out: 6 digits on a
// 30-second step, HMAC-SHA1, one step of clock-skew tolerance either side.
const (
	totpDigits      = 6
	totpPeriod      = 30 * time.Second
	totpSkew        = 1
	totpSecretBytes = 20
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// generateSecret returns a fresh random secret in base32 form.
func generateSecret() (string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// codeAt derives the 6-digit code for the step containing now.
func codeAt(secretBase32 string, now time.Time) (string, error) {
	secret, err := b32.DecodeString(strings.ToUpper(secretBase32))
	if err != nil {
		return "", errors.New("invalid totp secret encoding")
	}
	counter := now.Unix() / int64(totpPeriod/time.Second)
	return hotpCode(secret, counter), nil
}

// verifyCode checks submitted against the codes valid within the skew
// window around now. Comparison is constant-time per candidate step.
func verifyCode(secretBase32, submitted string, now time.Time) (bool, error) {
	trimmed := strings.TrimSpace(submitted)
	if len(trimmed) != totpDigits || !isNumeric(trimmed) {
		return false, nil
	}
	secret, err := b32.DecodeString(strings.ToUpper(secretBase32))
	if err != nil {
		return false, errors.New("invalid totp secret encoding")
	}

	baseCounter := now.Unix() / int64(totpPeriod/time.Second)
	for step := -totpSkew; step <= totpSkew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotpCode(secret, counter)), []byte(trimmed)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

func hotpCode(secret []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < totpDigits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", totpDigits, bin%mod)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
