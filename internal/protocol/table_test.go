package protocol

import "testing"

func TestParseTable(t *testing.T) {
	for _, s := range []string{"ATTLOG", "ATTPHOTO", "OPERLOG", "BIODATA", "FACE", "FINGERTMP"} {
		if _, ok := ParseTable(s); !ok {
			t.Errorf("ParseTable(%q) ok = false, want true", s)
		}
	}
	for _, s := range []string{"", "attlog", "USERINFO", "SMS"} {
		if _, ok := ParseTable(s); ok {
			t.Errorf("ParseTable(%q) ok = true, want false", s)
		}
	}
}

func TestTableIsTemplate(t *testing.T) {
	for _, tbl := range []Table{TableBioData, TableFace, TableFingerTmp} {
		if !tbl.IsTemplate() {
			t.Errorf("%s.IsTemplate() = false, want true", tbl)
		}
	}
	for _, tbl := range []Table{TableAttLog, TableAttPhoto, TableOperLog} {
		if tbl.IsTemplate() {
			t.Errorf("%s.IsTemplate() = true, want false", tbl)
		}
	}
}

func TestParseTemplate(t *testing.T) {
	body := "BIODATA Pin=101\tNo=2\tIndex=0\tValid=1\tDuress=0\tType=8\tMajorVer=5\tTmp=TVRBd==\n"

	p, ok := ParseTemplate(TableBioData, "", body)
	if !ok {
		t.Fatal("ParseTemplate ok = false, want true")
	}
	if p.PIN != "101" {
		t.Errorf("PIN = %q, want 101", p.PIN)
	}
	if p.FID != "0" {
		t.Errorf("FID = %q, want 0 (fingerprint default)", p.FID)
	}
	if p.TemplateNo != "2" {
		t.Errorf("TemplateNo = %q, want 2", p.TemplateNo)
	}
	if p.Data == "" || p.Data[:4] != "Pin=" {
		t.Errorf("Data should have table prefix stripped, got %q", p.Data)
	}
}

func TestParseTemplateQueryPINWins(t *testing.T) {
	p, ok := ParseTemplate(TableFace, "777", "FACE PIN=999\tTmp=x")
	if !ok || p.PIN != "777" {
		t.Errorf("PIN = %q, want 777 from query", p.PIN)
	}
	if p.FID != "111" {
		t.Errorf("FID = %q, want 111 for FACE pushes", p.FID)
	}
	if p.Method(TableFace) != "face" {
		t.Errorf("Method = %q, want face", p.Method(TableFace))
	}
}

func TestParseTemplateNoPIN(t *testing.T) {
	if _, ok := ParseTemplate(TableBioData, "", "Tmp=abc"); ok {
		t.Error("ParseTemplate without PIN ok = true, want false")
	}
}
