package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// ScanFrames walks the container's video packets once and returns the
// presentation timestamps of every frame in ascending display order.
// Packets arrive in decode order, so the timestamps are sorted before
// being handed back; the result indexes logical frame numbers.
func (e *Executor) ScanFrames(ctx context.Context, filePath string) ([]float64, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,dts_time",
		"-of", "csv=p=0",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("packet scan failed: %w", err)
	}

	timestamps := parsePacketScan(string(output))
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no video packets in %s", filePath)
	}

	e.logger.Debug().
		Str("input", filePath).
		Int("frames", len(timestamps)).
		Msg("packet scan complete")

	return timestamps, nil
}

// parsePacketScan extracts pts values from csv packet lines, falling back
// to dts when a packet carries no pts (some codecs omit it on B-frames)
func parsePacketScan(output string) []float64 {
	var timestamps []float64

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		raw := fields[0]
		if (raw == "" || raw == "N/A") && len(fields) > 1 {
			raw = fields[1]
		}

		ts, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, ts)
	}

	sort.Float64s(timestamps)
	return timestamps
}
