package protocol

import (
	"strconv"
	"strings"
	"time"
)

// AttLogEntry is one parsed punch line from an ATTLOG push.
type AttLogEntry struct {
	PIN       string
	Timestamp time.Time
	Status    int
	Verify    int
	RawLine   string
}

// ParseAttLog parses the tab-separated punch lines of an ATTLOG body.
// Malformed lines (missing PIN, unparseable timestamp) are skipped so a single
// corrupt line never drops the rest of the batch.
func ParseAttLog(body string, loc *time.Location) []AttLogEntry {
	var entries []AttLogEntry

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		parts := strings.Split(trimmed, "\t")
		if len(parts) < 2 {
			continue
		}

		pin := strings.TrimSpace(parts[0])
		if pin == "" {
			continue
		}

		ts, err := ParseDeviceTime(strings.TrimSpace(parts[1]), loc)
		if err != nil {
			continue
		}

		status := 0
		if len(parts) > 2 {
			status, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
		}
		verify := 0
		if len(parts) > 3 {
			verify, _ = strconv.Atoi(strings.TrimSpace(parts[3]))
		}

		entries = append(entries, AttLogEntry{
			PIN:       pin,
			Timestamp: ts,
			Status:    status,
			Verify:    verify,
			RawLine:   trimmed,
		})
	}

	return entries
}

// VerifyMethod maps a terminal verification code to the method tag used in
// attendance and enrollment records. Unknown codes map to "".
func VerifyMethod(code int) string {
	switch code {
	case 0:
		return "password"
	case 1:
		return "finger"
	case 2:
		return "card"
	case 15:
		return "face"
	default:
		return ""
	}
}
