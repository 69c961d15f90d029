package tasks

import (
	"math"
	"regexp"
	"strconv"
)

var (
	percentPattern = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)
	countPattern   = regexp.MustCompile(`(?i)\bdownloaded\b\D*?(\d+)\s*/\s*(\d+)`)
)

// ParseProgress extracts a percentage from one line of tool output.
//
// Recognized forms are yt-dlp's "[download]  42.3% of ..." and a
// "Downloaded 3/10" song counter as printed by spotdl.
func ParseProgress(line string) (int, bool) {
	if m := percentPattern.FindStringSubmatch(line); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int(math.Floor(f)), true
	}

	if m := countPattern.FindStringSubmatch(line); m != nil {
		done, err1 := strconv.Atoi(m[1])
		total, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || total <= 0 {
			return 0, false
		}
		return done * 100 / total, true
	}
	return 0, false
}
