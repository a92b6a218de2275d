package protocol

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Feature-slot identifiers used by ENROLL and template commands.
const (
	FIDFinger = 0
	FIDFace   = 111
)

// FormatCommand wraps a command for delivery on a poll response.
func FormatCommand(id int64, command string) string {
	return fmt.Sprintf("C:%d:%s", id, command)
}

// ParseCommand is the inverse of FormatCommand.
func ParseCommand(s string) (int64, string, error) {
	if !strings.HasPrefix(s, "C:") {
		return 0, "", fmt.Errorf("malformed command %q: missing C: prefix", s)
	}
	rest := s[2:]
	sep := strings.Index(rest, ":")
	if sep < 0 {
		return 0, "", fmt.Errorf("malformed command %q: missing id separator", s)
	}
	id, err := strconv.ParseInt(rest[:sep], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed command %q: %w", s, err)
	}
	return id, rest[sep+1:], nil
}

// SetUserCommand provisions a user record (name, PIN, optional card) on a
// terminal so the PIN has an associated identity.
func SetUserCommand(pin, name, card string) string {
	return fmt.Sprintf("DATA UPDATE USERINFO PIN=%s\tName=%s\tPri=0\tPasswd=\tCard=%s\tGrp=1", pin, name, card)
}

// EnrollFingerCommand asks the terminal to physically capture a fingerprint.
func EnrollFingerCommand(pin string) string {
	return fmt.Sprintf("ENROLL_FP PIN=%s\tFID=%d\tRETRY=3\tOVERWRITE=1", pin, FIDFinger)
}

// EnrollFaceCommand asks the terminal to physically capture a face. FID=111
// selects the face slot on SpeedFace-class hardware.
func EnrollFaceCommand(pin string) string {
	return fmt.Sprintf("ENROLL_FP PIN=%s\tFID=%d\tRETRY=3\tOVERWRITE=1", pin, FIDFace)
}

func DeleteUserCommand(pin string) string {
	return fmt.Sprintf("DATA DELETE USERINFO PIN=%s", pin)
}

// UpdateTemplateCommand replays a stored biometric template back to a
// terminal, e.g. during a device restore.
func UpdateTemplateCommand(table, kvPayload string) string {
	return fmt.Sprintf("DATA UPDATE %s %s", table, kvPayload)
}

const (
	RebootCommand        = "CONTROL DEVICE REBOOT"
	ClearLogCommand      = "CLEAR LOG"
	ClearDataCommand     = "CLEAR DATA"
	InfoCommand          = "INFO"
	ReloadOptionsCommand = "RELOAD OPTIONS"
)

// enrollPrefixes are the command families whose results drive the enrollment
// orchestration (user provisioning follows only on success).
var enrollPrefixes = []string{"ENROLL_FP", "ENROLL_BIO", "ENROLL_MF"}

// IsEnrollCommand reports whether a command string is a biometric capture
// request.
func IsEnrollCommand(cmd string) bool {
	for _, p := range enrollPrefixes {
		if strings.HasPrefix(cmd, p) {
			return true
		}
	}
	return false
}

// ParseResultID parses the ID field of a devicecmd result.
func ParseResultID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var pinField = regexp.MustCompile(`PIN=(\w+)`)

// CommandPIN extracts the PIN= field from a command string.
func CommandPIN(cmd string) (string, bool) {
	m := pinField.FindStringSubmatch(cmd)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EnrollMethodFromCommand infers the enrollment method encoded in a capture
// command: FID=111 or ENROLL_BIO means face, anything else is a fingerprint.
func EnrollMethodFromCommand(cmd string) string {
	if strings.Contains(cmd, fmt.Sprintf("FID=%d", FIDFace)) || strings.HasPrefix(cmd, "ENROLL_BIO") {
		return "face"
	}
	return "finger"
}
