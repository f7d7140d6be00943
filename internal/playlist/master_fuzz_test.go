// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"bytes"
	"testing"
)

// FuzzWriteMaster checks that arbitrary streams never panic and always
// produce one STREAM-INF per stream.
func FuzzWriteMaster(f *testing.F) {
	f.Add("https://gw/c", int64(1200), "640x360", "https://gw/m", 3)
	f.Add("", int64(0), "", "", 1)
	f.Add("Unicode Тест", int64(-1), "1920x1080", "rtsp://x", 6)

	f.Fuzz(func(t *testing.T, chapters string, bandwidth int64, resolution, url string, n int) {
		if n < 1 {
			n = 1
		}
		if n > 16 {
			n = 16
		}
		m := Master{ChaptersURL: chapters}
		for i := range n {
			m.Streams = append(m.Streams, Stream{Position: n - i, Bandwidth: bandwidth, Resolution: resolution, URL: url})
		}

		var buf bytes.Buffer
		if err := WriteMaster(&buf, m); err != nil {
			t.Fatalf("WriteMaster failed: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("#EXTM3U\n")) {
			t.Errorf("output doesn't start with #EXTM3U")
		}
		if got := bytes.Count(buf.Bytes(), []byte("#EXT-X-STREAM-INF:")); got < n {
			t.Errorf("expected at least %d STREAM-INF lines, got %d", n, got)
		}
	})
}
