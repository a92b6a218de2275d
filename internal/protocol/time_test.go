package protocol

import (
	"testing"
	"time"
)

func TestParseDeviceTimeFixedOffset(t *testing.T) {
	// A device timestamp at +06:00 must map to the same UTC instant no matter
	// what timezone the host runs in.
	got, err := ParseDeviceTime("2026-02-07 15:57:00", dhaka)
	if err != nil {
		t.Fatalf("ParseDeviceTime error = %v", err)
	}

	want := time.Date(2026, 2, 7, 9, 57, 0, 0, time.UTC)
	if !got.UTC().Equal(want) {
		t.Errorf("parsed instant = %v, want %v", got.UTC(), want)
	}
}

func TestParseDeviceTimeInvalid(t *testing.T) {
	for _, s := range []string{"", "2026-02-07", "2026-02-07T15:57:00", "yesterday"} {
		if _, err := ParseDeviceTime(s, dhaka); err == nil {
			t.Errorf("ParseDeviceTime(%q) = nil error, want error", s)
		}
	}
}

func TestFormatDeviceTimeRoundTrip(t *testing.T) {
	const s = "2026-02-07 23:50:00"
	parsed, err := ParseDeviceTime(s, dhaka)
	if err != nil {
		t.Fatalf("ParseDeviceTime error = %v", err)
	}
	if got := FormatDeviceTime(parsed, dhaka); got != s {
		t.Errorf("FormatDeviceTime = %q, want %q", got, s)
	}
}

func TestDateString(t *testing.T) {
	// 23:50 facility time on Feb 7 is already Feb 7 17:50 UTC; the session
	// date must stay the facility-local calendar day.
	ts := time.Date(2026, 2, 7, 17, 50, 0, 0, time.UTC)
	if got := DateString(ts, dhaka); got != "2026-02-07" {
		t.Errorf("DateString = %q, want 2026-02-07", got)
	}

	// 22:30 UTC is already past midnight in the facility.
	ts = time.Date(2026, 2, 7, 22, 30, 0, 0, time.UTC)
	if got := DateString(ts, dhaka); got != "2026-02-08" {
		t.Errorf("DateString = %q, want 2026-02-08", got)
	}
}
