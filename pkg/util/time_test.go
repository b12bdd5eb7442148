package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{time.Second, "00:00:01.000"},
		{90 * time.Second, "00:01:30.000"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000000"},
		{1.5, "1.500000"},
		{0.033367, "0.033367"},
		{3599.999999, "3599.999999"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"5", 5 * time.Second, false},
		{"5.5", 5500 * time.Millisecond, false},
		{"1:30", 90 * time.Second, false},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second, false},
		{" 10 ", 10 * time.Second, false},
		{"1:2:3:4", 0, true},
		{"abc", 0, true},
		{"1:xx", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"30", 0},
		{"a/b", 0},
	}
	for _, tt := range tests {
		if got := ParseFrameRate(tt.in); got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFrameConversions(t *testing.T) {
	if got := DurationToFrames(2*time.Second, 30); got != 60 {
		t.Errorf("DurationToFrames(2s, 30) = %d, want 60", got)
	}
	if got := DurationToFrames(time.Second, 0); got != 0 {
		t.Errorf("DurationToFrames with zero fps = %d, want 0", got)
	}
	if got := FramesToDuration(60, 30); got != 2*time.Second {
		t.Errorf("FramesToDuration(60, 30) = %v, want 2s", got)
	}
	if got := FramesToDuration(60, 0); got != 0 {
		t.Errorf("FramesToDuration with zero fps = %v, want 0", got)
	}
}
