// Package ladder defines the fixed HLS rendition ladder.
package ladder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenditionSpec is one quality level of the ladder.
type RenditionSpec struct {
	Position        int // ascending order, 0 = lowest
	Label           string
	Width           int
	Height          int
	VideoBitrate    string // ffmpeg rate notation, e.g. "730k"
	MaxRate         string
	BufSize         string
	AudioBitrate    string
	Profile         string // H.264 profile
	FrameRate       int
	SegmentDuration time.Duration
	GOP             int
}

// Resolution returns "WxH" as used by EXT-X-STREAM-INF.
func (r RenditionSpec) Resolution() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

const (
	segmentDuration = 4 * time.Second
	gopFrames       = 150
)

func spec(pos, w, h int, vb, maxRate, buf, ab, profile string, fps int) RenditionSpec {
	return RenditionSpec{
		Position:        pos,
		Label:           fmt.Sprintf("%dx%d@%s", w, h, vb),
		Width:           w,
		Height:          h,
		VideoBitrate:    vb,
		MaxRate:         maxRate,
		BufSize:         buf,
		AudioBitrate:    ab,
		Profile:         profile,
		FrameRate:       fps,
		SegmentDuration: segmentDuration,
		GOP:             gopFrames,
	}
}

var standard = []RenditionSpec{
	spec(0, 480, 270, "365k", "465k", "1200k", "64k", "baseline", 15),
	spec(1, 640, 360, "730k", "930k", "1600k", "64k", "baseline", 30),
	spec(2, 960, 540, "2000k", "2200k", "7400k", "64k", "main", 30),
	spec(3, 1280, 720, "3000k", "3200k", "10400k", "128k", "main", 30),
	spec(4, 1920, 1080, "4500k", "4700k", "17400k", "128k", "high", 30),
	spec(5, 1920, 1080, "8500k", "8700k", "17400k", "128k", "high", 30),
}

// Standard returns a copy of the six-level ladder in ascending order.
func Standard() []RenditionSpec {
	out := make([]RenditionSpec, len(standard))
	copy(out, standard)
	return out
}

// ByLabel finds a rendition of the standard ladder by its folder label.
func ByLabel(label string) (RenditionSpec, bool) {
	for _, r := range standard {
		if r.Label == label {
			return r, true
		}
	}
	return RenditionSpec{}, false
}

// IsRenditionFolder reports whether name has the "<W>x<H>@<rate>k" shape.
func IsRenditionFolder(name string) bool {
	res, rate, ok := strings.Cut(name, "@")
	if !ok || !strings.HasSuffix(rate, "k") {
		return false
	}
	w, h, ok := strings.Cut(res, "x")
	if !ok {
		return false
	}
	for _, s := range []string{w, h, strings.TrimSuffix(rate, "k")} {
		if _, err := strconv.Atoi(s); err != nil {
			return false
		}
	}
	return true
}
