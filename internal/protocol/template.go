package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

// TemplatePayload is a biometric template pushed autonomously by a terminal.
// The key-value payload is opaque to the server: stored and replayed, never
// interpreted.
type TemplatePayload struct {
	PIN        string
	FID        string
	TemplateNo string
	Data       string
}

var (
	templatePIN = regexp.MustCompile(`(?im)(?:^|\t)PIN=(\w+)`)
	templateFID = regexp.MustCompile(`(?im)(?:^|\t)FID=(\w+)`)
	templateNo  = regexp.MustCompile(`(?im)(?:^|\t)No=(\w+)`)
	loosePIN    = regexp.MustCompile(`(?i)Pin=(\w+)`)
)

// ParseTemplate extracts the owning PIN, feature slot, and template index from
// a BIODATA/FACE/FINGERTMP body. queryPIN, when non-empty, takes precedence
// over the body (some firmware sends the PIN only as a query parameter).
// Returns ok=false when no PIN can be found at all.
func ParseTemplate(table Table, queryPIN, body string) (TemplatePayload, bool) {
	p := TemplatePayload{PIN: queryPIN}

	if p.PIN == "" {
		if m := templatePIN.FindStringSubmatch(body); m != nil {
			p.PIN = m[1]
		} else if m := loosePIN.FindStringSubmatch(body); m != nil {
			p.PIN = m[1]
		}
	}
	if p.PIN == "" {
		return TemplatePayload{}, false
	}

	if m := templateFID.FindStringSubmatch(body); m != nil {
		p.FID = m[1]
	} else if table == TableFace {
		p.FID = strconv.Itoa(FIDFace)
	} else {
		p.FID = strconv.Itoa(FIDFinger)
	}

	p.TemplateNo = "0"
	if m := templateNo.FindStringSubmatch(body); m != nil {
		p.TemplateNo = m[1]
	}

	// Strip the leading table name so the stored payload round-trips into a
	// DATA UPDATE command unchanged.
	data := strings.TrimSpace(body)
	prefix := regexp.MustCompile(`(?i)^` + string(table) + `\s+`)
	p.Data = prefix.ReplaceAllString(data, "")

	return p, true
}

// Method returns the enrollment method a template confers: face for the face
// feature slot or a FACE push, finger otherwise.
func (p TemplatePayload) Method(table Table) string {
	if p.FID == strconv.Itoa(FIDFace) || table == TableFace {
		return "face"
	}
	return "finger"
}
