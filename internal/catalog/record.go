// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog holds the media record published for a title and the
// client of the catalog service that stores it.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/hlsbundle/internal/validate"
	"gopkg.in/yaml.v3"
)

// PreviousLatest in a metadata file links the record to the most recent upload.
const PreviousLatest = "latest"

// Triggers are player cue points in mm:ss notation.
type Triggers struct {
	IntroStart string `json:"intro_start" yaml:"intro_start"`
	IntroStop  string `json:"intro_stop" yaml:"intro_stop"`
	OutroStart string `json:"outro_start" yaml:"outro_start"`
	OutroStop  string `json:"outro_stop" yaml:"outro_stop"`
}

// URLs are the published entry points of a title.
type URLs struct {
	Chapters   string   `json:"chapters"`
	Subtitles  string   `json:"subtitles"`
	Thumbnails string   `json:"thumbnails"`
	Video      string   `json:"video"`
	Bonus      []string `json:"bonus,omitempty"`
}

// MediaRecord is the catalog entry of a title.
type MediaRecord struct {
	ID          string   `json:"id,omitempty" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Director    string   `json:"director" yaml:"director"`
	Starring    []string `json:"starring" yaml:"starring"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Triggers    Triggers `json:"triggers" yaml:"triggers"`
	PreviousID  string   `json:"previous_id,omitempty" yaml:"previous_id"`
	URLs        *URLs    `json:"urls,omitempty" yaml:"-"`
}

// LoadRecord reads operator metadata from a YAML file.
func LoadRecord(path string) (*MediaRecord, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied metadata file
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rec MediaRecord
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Validate checks the operator supplied fields.
func (r *MediaRecord) Validate() error {
	v := validate.New()
	v.NotEmpty("title", strings.TrimSpace(r.Title))
	for _, t := range []struct{ field, value string }{
		{"triggers.intro_start", r.Triggers.IntroStart},
		{"triggers.intro_stop", r.Triggers.IntroStop},
		{"triggers.outro_start", r.Triggers.OutroStart},
		{"triggers.outro_stop", r.Triggers.OutroStop},
	} {
		if t.value != "" && !validTimestamp(t.value) {
			v.AddError(t.field, "must be mm:ss", t.value)
		}
	}
	return v.Err()
}

func validTimestamp(s string) bool {
	mm, ss, ok := strings.Cut(s, ":")
	if !ok || len(ss) != 2 {
		return false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return false
	}
	sec, err := strconv.Atoi(ss)
	return err == nil && sec >= 0 && sec < 60
}

// ErrNoPrevious is returned when the catalog has no upload to link to.
var ErrNoPrevious = errors.New("catalog has no previous upload")
