package config

import (
	"testing"
	"time"
)

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		offset  string
		want    int
		wantErr bool
	}{
		{"+06:00", 6 * 3600, false},
		{"+05:30", 5*3600 + 30*60, false},
		{"-08:00", -8 * 3600, false},
		{"+00:00", 0, false},
		{"06:00", 0, true},
		{"+6:00", 0, true},
		{"+0600", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.offset, func(t *testing.T) {
			got, err := parseUTCOffset(tt.offset)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseUTCOffset(%q) error = %v, wantErr %v", tt.offset, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseUTCOffset(%q) = %d, want %d", tt.offset, got, tt.want)
			}
		})
	}
}

func TestDeviceLocation(t *testing.T) {
	d := DeviceConfig{TimezoneOffset: "+06:00"}
	loc, err := d.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}

	ts := time.Date(2026, 2, 7, 15, 57, 0, 0, loc)
	if got := ts.UTC(); !got.Equal(time.Date(2026, 2, 7, 9, 57, 0, 0, time.UTC)) {
		t.Errorf("15:57 at +06:00 = %v UTC, want 09:57 UTC", got)
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Device.TimezoneOffset != "+06:00" {
		t.Errorf("default timezone offset = %q, want +06:00", cfg.Device.TimezoneOffset)
	}
	if cfg.Device.HeartbeatThreshold != 45*time.Second {
		t.Errorf("default heartbeat threshold = %v, want 45s", cfg.Device.HeartbeatThreshold)
	}
	if cfg.Device.ErrorDelay != 30 || cfg.Device.TransInterval != 1 {
		t.Errorf("default handshake tuning = %d/%d, want 30/1", cfg.Device.ErrorDelay, cfg.Device.TransInterval)
	}
}
