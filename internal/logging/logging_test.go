package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerSingleWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info().Str("source", "clip.mp4").Msg("opened")

	out := buf.String()
	if !strings.Contains(out, "opened") || !strings.Contains(out, "clip.mp4") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestNewLoggerMultiWriter(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewLogger(&a, &b)

	logger.Info().Msg("fan out")

	if !strings.Contains(a.String(), "fan out") {
		t.Errorf("first writer missed the event: %q", a.String())
	}
	if !strings.Contains(b.String(), "fan out") {
		t.Errorf("second writer missed the event: %q", b.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf).With().Str("component", "engine").Logger()

	logger.Info().Msg("batch started")

	if !strings.Contains(buf.String(), `"component":"engine"`) {
		t.Errorf("component field missing: %q", buf.String())
	}
}
