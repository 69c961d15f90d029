package tasks

import "testing"

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line string
		want int
		ok   bool
	}{
		{"[download]  42.3% of 3.21MiB at 1.2MiB/s ETA 00:02", 42, true},
		{"[download] 100% of 3.21MiB in 00:03", 100, true},
		{"[download]   0.0% of ~5MiB", 0, true},
		{"Downloaded 3/10 songs", 30, true},
		{`Downloaded "Song": 1/4`, 25, true},
		{"Downloaded 1/0", 0, false},
		{"[download] Destination: /youtube/song.webm", 0, false},
		{"Processing query", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseProgress(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseProgress(%q) = (%d, %v), want (%d, %v)", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}
