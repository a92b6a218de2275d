package protocol

import "testing"

func TestParseOperLog(t *testing.T) {
	body := "OPLOG\t2026-02-07 10:00:00\t0\t101\t0\t0\tEnrollFP\n" +
		"OPLOG\t2026-02-07 10:01:00\t0\t202\t0\t0\tEnrollFace\n" +
		"OPLOG\t2026-02-07 10:02:00\t0\t303\t0\t0\tChangePassword\n"

	entries := ParseOperLog(body)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if entries[0].EnrollMethod != "finger" {
		t.Errorf("entry 0 method = %q, want finger", entries[0].EnrollMethod)
	}
	if entries[1].EnrollMethod != "face" {
		t.Errorf("entry 1 method = %q, want face", entries[1].EnrollMethod)
	}
	// Unrecognized operations are kept but carry no enrollment method.
	if entries[2].EnrollMethod != "" {
		t.Errorf("entry 2 method = %q, want empty", entries[2].EnrollMethod)
	}
}

func TestParseOperLogSkipsLinesWithoutPIN(t *testing.T) {
	body := "OPLOG\tabc\tdef\tEnrollFP\n" + // no digit field anywhere
		"short\tline\n"
	if entries := ParseOperLog(body); len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestExtractBioPhoto(t *testing.T) {
	body := "BIOPHOTO PIN=101\tType=9\tSize=128\tContent=aGVsbG8=\n"
	pin, content, ok := ExtractBioPhoto(body)
	if !ok {
		t.Fatal("ExtractBioPhoto ok = false, want true")
	}
	if pin != "101" || content != "aGVsbG8=" {
		t.Errorf("ExtractBioPhoto = (%q, %q)", pin, content)
	}

	if _, _, ok := ExtractBioPhoto("OPLOG\t1\t2\t3\tEnrollFP"); ok {
		t.Error("ExtractBioPhoto on plain operlog = true, want false")
	}
}
