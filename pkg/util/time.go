package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration converts time.Duration to ffmpeg timestamp format
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// FormatSeconds renders a pts value the way ffmpeg expects on -ss
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 6, 64)
}

// ParseTimestamp parses a timestamp string (HH:MM:SS.mmm, MM:SS or SS.mmm)
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")

	var hours, minutes, seconds float64
	var err error

	switch len(parts) {
	case 1:
		seconds, err = strconv.ParseFloat(parts[0], 64)
	case 2:
		minutes, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			seconds, err = strconv.ParseFloat(parts[1], 64)
		}
	case 3:
		hours, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			minutes, err = strconv.ParseFloat(parts[1], 64)
		}
		if err == nil {
			seconds, err = strconv.ParseFloat(parts[2], 64)
		}
	default:
		return 0, fmt.Errorf("invalid timestamp format: %s", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp format: %s", s)
	}

	totalSeconds := hours*3600 + minutes*60 + seconds
	return time.Duration(totalSeconds * float64(time.Second)), nil
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001")
func ParseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// DurationToFrames converts a wall-clock length to a frame count at the given rate
func DurationToFrames(d time.Duration, fps float64) int {
	if fps <= 0 {
		return 0
	}
	return int(d.Seconds() * fps)
}

// FramesToDuration converts a frame count to wall-clock length at the given rate
func FramesToDuration(frames int, fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / fps * float64(time.Second))
}
