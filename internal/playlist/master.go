// SPDX-License-Identifier: MIT

// Package playlist composes the HLS master playlist of a content item.
package playlist

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/google/renameio/v2"
)

// ChaptersDataID is the session data identifier players use for chapter metadata.
const ChaptersDataID = "com.apple.hls.chapters"

// Stream is one variant of the master playlist.
type Stream struct {
	Position   int
	Bandwidth  int64
	Resolution string
	URL        string
}

// Master describes a master playlist.
type Master struct {
	ChaptersURL string
	Streams     []Stream
}

// WriteMaster renders m. Streams are written in ascending Position.
func WriteMaster(w io.Writer, m Master) error {
	if len(m.Streams) == 0 {
		return fmt.Errorf("master playlist has no streams")
	}
	streams := append([]Stream(nil), m.Streams...)
	sort.SliceStable(streams, func(i, j int) bool { return streams[i].Position < streams[j].Position })

	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	if m.ChaptersURL != "" {
		fmt.Fprintf(buf, "#EXT-X-SESSION-DATA:DATA-ID=%q,URI=%q\n", ChaptersDataID, m.ChaptersURL)
	}
	for _, s := range streams {
		fmt.Fprintf(buf, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s\n", s.Bandwidth, s.Resolution)
		buf.WriteString(s.URL + "\n")
	}
	_, err := io.Copy(w, buf)
	return err
}

// WriteMasterFile writes the playlist to path atomically.
func WriteMasterFile(path string, m Master) error {
	var buf bytes.Buffer
	if err := WriteMaster(&buf, m); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}
