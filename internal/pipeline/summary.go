// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"github.com/ManuGH/hlsbundle/internal/catalog"
)

// Status is the final state of a run.
type Status string

const (
	// StatusPublished means every planned artifact was published.
	StatusPublished Status = "published"
	// StatusPartial means the run published playlists with missing renditions.
	StatusPartial Status = "partial"
	// StatusAborted means the run stopped before publishing.
	StatusAborted Status = "aborted"
)

// ItemSummary describes one published content item.
type ItemSummary struct {
	Name          string
	Playlist      string // gateway URL of the master playlist
	ChaptersURL   string
	SubtitlesURL  string
	ThumbnailsURL string
	Streams       int
	Missing       []string // rendition labels or auxiliary kinds that were not published
}

// Summary is the outcome of a run.
type Summary struct {
	RunID  string
	Title  string
	Status Status
	Items  []ItemSummary
	Record *catalog.MediaRecord
}

// Missing lists "<item>/<label>" for everything that was not published.
func (s *Summary) Missing() []string {
	var out []string
	for _, it := range s.Items {
		for _, m := range it.Missing {
			out = append(out, it.Name+"/"+m)
		}
	}
	return out
}

func (s *Summary) finalize() {
	if s.Status == StatusAborted {
		return
	}
	s.Status = StatusPublished
	if len(s.Missing()) > 0 {
		s.Status = StatusPartial
	}
}
