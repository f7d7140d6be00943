// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ManuGH/hlsbundle/internal/ladder"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, p string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("x", size)), 0o644))
}

func TestDiscoverOrdersLargestFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a-extras.mkv"), 10)
	writeFile(t, filepath.Join(dir, "feature.mkv"), 100)
	writeFile(t, filepath.Join(dir, "feature.srt"), 5)
	writeFile(t, filepath.Join(dir, "z-trailer.mkv"), 20)
	writeFile(t, filepath.Join(dir, "notes.txt"), 500)

	got, err := Discover(dir)
	require.NoError(t, err)

	names := make([]string, len(got))
	for i, s := range got {
		names[i] = filepath.Base(s.Path)
	}
	if diff := cmp.Diff([]string{"feature.mkv", "a-extras.mkv", "z-trailer.mkv"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, filepath.Join(dir, "feature.srt"), got[0].SubtitlePath)
	assert.Empty(t, got[1].SubtitlePath)
}

func TestDiscoverNoSources(t *testing.T) {
	_, err := Discover(t.TempDir())
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestFolderName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  The   Movie ", "The Movie", false},
		{"AC/DC: Live", "AC-DC- Live", false},
		{"Café", "Café", false},
		{"..", "", true},
		{"   ", "", true},
	}
	for _, tt := range tests {
		got, err := FolderName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTitle, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLayoutPaths(t *testing.T) {
	root := t.TempDir()
	l, err := NewLayout(root, "library1/", "My Title")
	require.NoError(t, err)

	it := l.Item(2, Source{Path: "/src/b.mkv"})
	assert.Equal(t, "bonus2", it.Name)
	assert.Equal(t, filepath.Join(root, "My Title", "bonus2"), it.Dir)
	assert.Equal(t, "/library1/My Title/bonus2", it.RemoteDir)
	assert.Equal(t, "/library1/My Title", l.RemoteTitleDir())
}

func TestLayoutCheckNewAndPrepare(t *testing.T) {
	l, err := NewLayout(t.TempDir(), "/lib", "Title")
	require.NoError(t, err)
	require.NoError(t, l.CheckNew())

	items := []ContentItem{l.Item(0, Source{}), l.Item(1, Source{})}
	require.NoError(t, l.Prepare(items, ladder.Standard()[:2]))

	assert.ErrorIs(t, l.CheckNew(), ErrTitleExists)
	assert.DirExists(t, filepath.Join(l.TitleDir(), "main", "480x270@365k"))
	assert.DirExists(t, filepath.Join(l.TitleDir(), "bonus1", PreviewDir))

	labels, err := RenditionLabels(items[0].Dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"480x270@365k", "640x360@730k"}, labels)
}

func TestExistingItems(t *testing.T) {
	l, err := NewLayout(t.TempDir(), "/lib", "Title")
	require.NoError(t, err)
	for _, d := range []string{"bonus10", "main", "bonus2", "scratch", "bonus0"} {
		require.NoError(t, os.MkdirAll(filepath.Join(l.TitleDir(), d), 0o755))
	}

	items, err := l.ExistingItems()
	require.NoError(t, err)
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"main", "bonus2", "bonus10"}, names)
}

func TestScanRenditionOrdersByKey(t *testing.T) {
	l, err := NewLayout(t.TempDir(), "/lib", "Title")
	require.NoError(t, err)
	it := l.Item(0, Source{})
	label := "640x360@730k"
	dir := filepath.Join(it.Dir, label)

	writeFile(t, filepath.Join(dir, label+"_010.ts"), 30)
	writeFile(t, filepath.Join(dir, label+"_002.ts"), 50)
	writeFile(t, filepath.Join(dir, label+"_000.ts"), 10)
	writeFile(t, filepath.Join(dir, ManifestFile), 5)
	writeFile(t, filepath.Join(dir, "other_001.ts"), 5)

	arts, err := ScanRendition(it, label)
	require.NoError(t, err)
	require.Len(t, arts, 3)

	keys := []int{arts[0].Key, arts[1].Key, arts[2].Key}
	assert.Equal(t, []int{0, 2, 10}, keys)
	assert.Equal(t, "/lib/Title/main/640x360@730k/640x360@730k_002.ts", arts[1].RemotePath)
	assert.Equal(t, int64(50), MaxSize(arts))
}

func TestScanThumbnailsNumericOrder(t *testing.T) {
	l, err := NewLayout(t.TempDir(), "/lib", "Title")
	require.NoError(t, err)
	it := l.Item(0, Source{})
	dir := filepath.Join(it.Dir, PreviewDir)
	for _, n := range []string{"prev10.jpg", "prev2.jpg", "prev1.jpg", CaptionsFile} {
		writeFile(t, filepath.Join(dir, n), 1)
	}

	arts, err := ScanThumbnails(it)
	require.NoError(t, err)
	var names []string
	for _, a := range arts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"prev1.jpg", "prev2.jpg", "prev10.jpg"}, names)
}

func TestScanRejectsDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prev1.jpg"), 1)
	writeFile(t, filepath.Join(dir, "prev01.jpg"), 1)

	_, err := Scan(dir, "/r", ThumbnailKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate ordering key 1")
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), "/r", ThumbnailKey)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
