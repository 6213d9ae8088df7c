package device

import (
	"strings"
	"testing"
)

const sampleUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(sampleUA, "Windows", "extra")
	b := Fingerprint(sampleUA, "Windows", "extra")
	if a != b {
		t.Error("identical inputs must produce identical fingerprints")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestFingerprintInputSensitivity(t *testing.T) {
	base := Fingerprint(sampleUA, "Windows", "extra")
	cases := map[string]string{
		"userAgent": Fingerprint(sampleUA+"x", "Windows", "extra"),
		"platform":  Fingerprint(sampleUA, "Linux", "extra"),
		"entropy":   Fingerprint(sampleUA, "Windows", "other"),
		"empty":     Fingerprint(sampleUA, "Windows", ""),
	}
	for name, fp := range cases {
		if fp == base {
			t.Errorf("changing %s did not change the fingerprint", name)
		}
	}
}

func TestBindHashAndVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("bcrypt at work factor 12 is slow")
	}
	fp := Fingerprint(sampleUA, "Windows", "")
	hash, err := BindHash(fp)
	if err != nil {
		t.Fatalf("BindHash: %v", err)
	}
	if hash == fp {
		t.Error("hash must differ from fingerprint")
	}
	if !Verify(fp, hash) {
		t.Error("fingerprint should verify against its own hash")
	}
	if Verify(fp+"tampered", hash) {
		t.Error("different fingerprint must not verify")
	}
}

func TestValidInfo(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		platform  string
		want      bool
	}{
		{"ok", sampleUA, "Windows", true},
		{"unknown platform ok", sampleUA, "Unknown", true},
		{"too short", "short", "Windows", false},
		{"too long", strings.Repeat("a", 2001), "Windows", false},
		{"bad platform", sampleUA, "FreeBSD", false},
		{"empty platform", sampleUA, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidInfo(tc.userAgent, tc.platform); got != tc.want {
				t.Errorf("ValidInfo = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSanitizeStripsControlChars(t *testing.T) {
	in := "Mozilla/5.0\x00 (Windows\x1f NT)\x7f "
	out := Sanitize(in)
	if strings.ContainsAny(out, "\x00\x1f\x7f") {
		t.Errorf("control characters not stripped: %q", out)
	}
	if strings.HasSuffix(out, " ") {
		t.Errorf("trailing whitespace not trimmed: %q", out)
	}
}

func TestExtractInfoPlatforms(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)":               "Windows",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)":         "macOS",
		"Mozilla/5.0 (X11; Linux x86_64)":                         "Linux",
		"Mozilla/5.0 (Linux; Android 13; Pixel 7)":                "Android",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)":  "iOS",
		"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)":           "iOS",
		"curl/8.1.2 with no recognizable platform identification": "Unknown",
	}
	for ua, want := range cases {
		if got := ExtractInfo(ua).Platform; got != want {
			t.Errorf("ExtractInfo(%q).Platform = %q, want %q", ua, got, want)
		}
	}
	if got := ExtractInfo("").Platform; got != "" {
		t.Errorf("empty user agent should give empty platform, got %q", got)
	}
}
