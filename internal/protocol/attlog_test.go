package protocol

import (
	"testing"
	"time"
)

var dhaka = time.FixedZone("UTC+06:00", 6*3600)

func TestParseAttLog(t *testing.T) {
	body := "101\t2026-02-07 09:00:00\t0\t1\n" +
		"102\t2026-02-07 09:01:30\t0\t15\n"

	entries := ParseAttLog(body, dhaka)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if entries[0].PIN != "101" {
		t.Errorf("entry 0 PIN = %q, want 101", entries[0].PIN)
	}
	if entries[0].Verify != 1 {
		t.Errorf("entry 0 verify = %d, want 1", entries[0].Verify)
	}
	want := time.Date(2026, 2, 7, 9, 0, 0, 0, dhaka)
	if !entries[0].Timestamp.Equal(want) {
		t.Errorf("entry 0 timestamp = %v, want %v", entries[0].Timestamp, want)
	}
	if entries[1].Verify != 15 {
		t.Errorf("entry 1 verify = %d, want 15", entries[1].Verify)
	}
}

func TestParseAttLogSkipsMalformedLines(t *testing.T) {
	// Valid and malformed lines interleaved: exactly the valid ones survive.
	body := "101\t2026-02-07 09:00:00\t0\t1\n" +
		"no-tabs-here\n" +
		"\t2026-02-07 09:00:00\t0\t1\n" +
		"103\tnot-a-timestamp\t0\t1\n" +
		"\n" +
		"104\t2026-02-07 09:05:00\t0\t2\n"

	entries := ParseAttLog(body, dhaka)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].PIN != "101" || entries[1].PIN != "104" {
		t.Errorf("got PINs %q, %q, want 101, 104", entries[0].PIN, entries[1].PIN)
	}
}

func TestParseAttLogDefaultsStatusAndVerify(t *testing.T) {
	entries := ParseAttLog("101\t2026-02-07 09:00:00", dhaka)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Status != 0 || entries[0].Verify != 0 {
		t.Errorf("status/verify = %d/%d, want 0/0", entries[0].Status, entries[0].Verify)
	}
}

func TestParseAttLogEmptyBody(t *testing.T) {
	if entries := ParseAttLog("", dhaka); len(entries) != 0 {
		t.Errorf("got %d entries from empty body, want 0", len(entries))
	}
}

func TestVerifyMethod(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "password"},
		{1, "finger"},
		{2, "card"},
		{15, "face"},
		{3, ""},
		{-1, ""},
		{99, ""},
	}

	for _, tt := range tests {
		if got := VerifyMethod(tt.code); got != tt.want {
			t.Errorf("VerifyMethod(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
