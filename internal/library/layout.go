// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ManuGH/hlsbundle/internal/ladder"
	"golang.org/x/text/unicode/norm"
)

// Well-known file and folder names inside an item directory.
const (
	ManifestFile  = "manifest.m3u8"
	MasterFile    = "playlist.m3u8"
	PreviewDir    = "preview_images"
	CaptionsFile  = "previewdata.vtt"
	ChaptersFile  = "chapterdata.json"
	SubtitlesFile = "subtitles.vtt"
)

// FolderName normalizes a title into a folder name (NFC, single spaces,
// no path separators).
func FolderName(title string) (string, error) {
	s := norm.NFC.String(title)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || s == "." || s == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidTitle, title)
	}
	return s, nil
}

// Layout maps a title onto the local library folder and its remote mirror.
type Layout struct {
	LocalRoot  string
	RemoteRoot string
	Title      string // normalized folder name
}

// NewLayout builds a Layout for title. The remote root is a slash-separated store path.
func NewLayout(localRoot, remoteRoot, title string) (Layout, error) {
	name, err := FolderName(title)
	if err != nil {
		return Layout{}, err
	}
	return Layout{LocalRoot: localRoot, RemoteRoot: path.Clean("/" + remoteRoot), Title: name}, nil
}

// TitleDir is the local title directory.
func (l Layout) TitleDir() string { return filepath.Join(l.LocalRoot, l.Title) }

// RemoteTitleDir is the store path of the title directory.
func (l Layout) RemoteTitleDir() string { return path.Join(l.RemoteRoot, l.Title) }

// Item returns the ContentItem for index.
func (l Layout) Item(index int, src Source) ContentItem {
	name := ItemName(index)
	return ContentItem{
		Index:        index,
		Name:         name,
		SourcePath:   src.Path,
		SubtitlePath: src.SubtitlePath,
		Dir:          filepath.Join(l.TitleDir(), name),
		RemoteDir:    path.Join(l.RemoteTitleDir(), name),
	}
}

// CheckNew fails with ErrTitleExists when the title directory already exists.
func (l Layout) CheckNew() error {
	_, err := os.Stat(l.TitleDir())
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrTitleExists, l.TitleDir())
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat title dir: %w", err)
	}
}

// Prepare creates the item, rendition and preview directories.
func (l Layout) Prepare(items []ContentItem, renditions []ladder.RenditionSpec) error {
	for _, it := range items {
		dirs := []string{filepath.Join(it.Dir, PreviewDir)}
		for _, r := range renditions {
			dirs = append(dirs, filepath.Join(it.Dir, r.Label))
		}
		for _, d := range dirs {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", d, err)
			}
		}
	}
	return nil
}

// ExistingItems lists the item directories already present under the title,
// main first and bonus items in numeric order.
func (l Layout) ExistingItems() ([]ContentItem, error) {
	entries, err := os.ReadDir(l.TitleDir())
	if err != nil {
		return nil, fmt.Errorf("read title dir: %w", err)
	}
	var items []ContentItem
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		idx, ok := itemIndex(e.Name())
		if !ok {
			continue
		}
		items = append(items, l.Item(idx, Source{}))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no item folders under %s", ErrNoSources, l.TitleDir())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })
	return items, nil
}

func itemIndex(name string) (int, bool) {
	if name == MainItem {
		return 0, true
	}
	n, ok := strings.CutPrefix(name, "bonus")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n)
	if err != nil || i < 1 {
		return 0, false
	}
	return i, true
}

// RenditionLabels lists the rendition folders present in an item directory.
func RenditionLabels(itemDir string) ([]string, error) {
	entries, err := os.ReadDir(itemDir)
	if err != nil {
		return nil, fmt.Errorf("read item dir: %w", err)
	}
	var labels []string
	for _, e := range entries {
		if e.IsDir() && ladder.IsRenditionFolder(e.Name()) {
			labels = append(labels, e.Name())
		}
	}
	return labels, nil
}
