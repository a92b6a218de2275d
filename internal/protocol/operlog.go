package protocol

import (
	"regexp"
	"strings"
)

// enrollmentOps maps terminal operation-type strings to enrollment methods.
// Anything not listed here is ignored.
var enrollmentOps = map[string]string{
	"EnrollFP":     "finger",
	"EnrollFinger": "finger",
	"EnrollFace":   "face",
	"EnrollCard":   "card",
}

// OperLogEntry is one parsed line from an OPERLOG push.
type OperLogEntry struct {
	PIN          string
	Operation    string
	EnrollMethod string // "finger", "face", "card", or "" for non-enrollment ops
	RawLine      string
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ParseOperLog extracts enrollment-completion events from an OPERLOG body.
// The field layout varies by firmware; the operation type is the last field
// and the PIN is the first all-digit field on the line.
func ParseOperLog(body string) []OperLogEntry {
	var entries []OperLogEntry

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		parts := strings.Split(trimmed, "\t")
		if len(parts) < 4 {
			continue
		}

		operation := strings.TrimSpace(parts[len(parts)-1])

		pin := ""
		for _, part := range parts {
			p := strings.TrimSpace(part)
			if p != "" && digitsOnly.MatchString(p) {
				pin = p
				break
			}
		}
		if pin == "" {
			continue
		}

		entries = append(entries, OperLogEntry{
			PIN:          pin,
			Operation:    operation,
			EnrollMethod: enrollmentOps[operation],
			RawLine:      trimmed,
		})
	}

	return entries
}

var bioPhotoPattern = regexp.MustCompile(`(?s)(?:BIOPHOTO\s+)?PIN=(\w+).*?Content=([A-Za-z0-9+/=]+)`)

// ExtractBioPhoto pulls an inline base64 enrollment photo out of an OPERLOG
// body. Returns ok=false when the body carries no photo block.
func ExtractBioPhoto(body string) (pin, base64Content string, ok bool) {
	m := bioPhotoPattern.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
