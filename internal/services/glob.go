package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/audiovault/internal/shared"
)

// ExpandTrackGlob turns one directory-wide eyeD3 invocation into one argv per track.
//
// The last argument is the track pattern, e.g. "/audio/*.mp3". Every other
// argument containing "*" is a per-track companion, e.g.
// "--add-lyrics=/audio/*.lrc", and gets the track's stem in place of "*".
// Tracks whose companion file is missing are skipped. argv without a pattern
// is returned unchanged.
func ExpandTrackGlob(argv []string) ([][]string, error) {
	if len(argv) < 2 {
		return [][]string{argv}, nil
	}

	pattern := argv[len(argv)-1]
	if !strings.ContainsAny(pattern, "*?[") {
		return [][]string{argv}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", shared.ErrInvalidInput, pattern, err)
	}
	sort.Strings(matches)

	var out [][]string
	for _, track := range matches {
		stem := strings.TrimSuffix(filepath.Base(track), filepath.Ext(track))

		expanded := make([]string, 0, len(argv))
		skip := false
		for _, arg := range argv[:len(argv)-1] {
			if !strings.Contains(arg, "*") {
				expanded = append(expanded, arg)
				continue
			}

			arg = strings.ReplaceAll(arg, "*", stem)
			companion := arg
			if _, v, ok := strings.Cut(arg, "="); ok {
				companion = v
			}
			if _, err := os.Stat(companion); err != nil {
				skip = true
				break
			}
			expanded = append(expanded, arg)
		}

		if !skip {
			out = append(out, append(expanded, track))
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no tracks match %s", shared.ErrNotFound, pattern)
	}
	return out, nil
}
