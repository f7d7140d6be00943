// SPDX-License-Identifier: MIT

package manifest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// Captions renders a WebVTT track whose i-th cue spans [i*width, (i+1)*width)
// and carries urls[i] as its text.
func Captions(urls []string, width time.Duration) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, u := range urls {
		start := time.Duration(i) * width
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", timestamp(start), timestamp(start+width), u)
	}
	return b.String()
}

// WriteCaptions writes the caption track to path atomically.
func WriteCaptions(path string, urls []string, width time.Duration) error {
	return renameio.WriteFile(path, []byte(Captions(urls, width)), 0o644)
}

func timestamp(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	ms := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
