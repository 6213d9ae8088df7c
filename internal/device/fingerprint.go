package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is tuned so hashing takes on the order of 100ms, keeping stored
// hashes resistant to offline brute force if exfiltrated.
const bcryptCost = 12

const (
	minUserAgentLen = 10
	maxUserAgentLen = 2000
)

var validPlatforms = map[string]bool{
	"Windows": true,
	"macOS":   true,
	"Linux":   true,
	"Android": true,
	"iOS":     true,
	"Unknown": true,
}

// Fingerprint derives a deterministic, collision-resistant identifier from
// client-declared device attributes.
func Fingerprint(userAgent, platform, additionalEntropy string) string {
	combined := userAgent + "|" + platform + "|" + additionalEntropy
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// BindHash applies a slow salted one-way hash to a fingerprint for storage.
func BindHash(fingerprint string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(fingerprint), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks a fingerprint against a stored hash in constant time.
func Verify(fingerprint, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(fingerprint)) == nil
}

// ValidInfo reports whether client-declared device attributes are acceptable:
// userAgent inside length bounds, platform one of the closed enumeration.
func ValidInfo(userAgent, platform string) bool {
	userAgent = strings.TrimSpace(userAgent)
	if len(userAgent) < minUserAgentLen || len(userAgent) > maxUserAgentLen {
		return false
	}
	return validPlatforms[platform]
}

// ValidPlatform reports whether the platform is one of the recognized values.
func ValidPlatform(platform string) bool {
	return validPlatforms[platform]
}

// Sanitize strips control characters and caps length before an attribute is
// hashed or logged.
func Sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > maxUserAgentLen {
		out = out[:maxUserAgentLen]
	}
	return strings.TrimSpace(out)
}

// Info is the pair of attributes a request declares about its device.
type Info struct {
	UserAgent string
	Platform  string
}

// ExtractInfo derives device info from a User-Agent header, classifying the
// platform from well-known substrings.
func ExtractInfo(userAgent string) Info {
	platform := ""
	if userAgent != "" {
		switch {
		case strings.Contains(userAgent, "Windows"):
			platform = "Windows"
		case strings.Contains(userAgent, "Macintosh"):
			platform = "macOS"
		case strings.Contains(userAgent, "Android"):
			platform = "Android"
		case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
			platform = "iOS"
		case strings.Contains(userAgent, "Linux"):
			platform = "Linux"
		default:
			platform = "Unknown"
		}
	}
	return Info{
		UserAgent: Sanitize(userAgent),
		Platform:  platform,
	}
}
