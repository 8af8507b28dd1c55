package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CueStats summarises the timing lines of a caption file.
type CueStats struct {
	Cues  int     `json:"cues"`
	First float64 `json:"first_seconds"`
	Last  float64 `json:"last_seconds"`
}

// Stats counts timing lines and reports the earliest start and latest end in
// seconds. Unparseable timing lines still count as cues.
func Stats(content string) CueStats {
	var stats CueStats
	first := math.Inf(1)
	for _, line := range SplitLines(content) {
		if !isTiming(line) {
			continue
		}
		stats.Cues++
		parts := strings.SplitN(line, "-->", 2)
		if start, err := parseTimestamp(parts[0]); err == nil && start < first {
			first = start
		}
		// VTT cue settings may follow the end timestamp.
		endFields := strings.Fields(parts[1])
		if len(endFields) == 0 {
			continue
		}
		if end, err := parseTimestamp(endFields[0]); err == nil && end > stats.Last {
			stats.Last = end
		}
	}
	if !math.IsInf(first, 1) {
		stats.First = first
	}
	return stats
}

// parseTimestamp accepts SRT "HH:MM:SS,mmm" and WebVTT "[HH:]MM:SS.mmm".
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ",", ".")
	clock, fraction, _ := strings.Cut(value, ".")
	hms := strings.Split(clock, ":")
	if len(hms) == 2 {
		hms = append([]string{"0"}, hms...)
	}
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := float64(hours*3600 + minutes*60 + seconds)
	if fraction != "" {
		millis, err := strconv.Atoi(fraction)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		total += float64(millis) / math.Pow10(len(fraction))
	}
	return total, nil
}
