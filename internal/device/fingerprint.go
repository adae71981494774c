package device

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the identifying signals into a stable hex string. It is
// a soft identifier sent alongside mutations, not a security boundary.
func Fingerprint(s Signals) string {
	tz := ""
	if s.TimezoneOffset != nil {
		tz = strconv.Itoa(*s.TimezoneOffset)
	}
	parts := []string{
		s.UserAgent,
		s.Language,
		strconv.Itoa(s.ScreenWidth) + "x" + strconv.Itoa(s.ScreenHeight) + "x" + strconv.Itoa(s.ColorDepth),
		tz,
		s.Platform,
		strconv.FormatBool(s.CookiesEnabled),
		s.DoNotTrack,
	}
	if s.CanvasData != "" {
		parts = append(parts, s.CanvasData)
	}

	sum := blake2b.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
