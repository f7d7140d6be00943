// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// KeyFunc parses the ordering key from a file name; ok is false for files
// that are not artifacts of the scanned kind.
type KeyFunc func(name string) (key int, ok bool)

// SegmentKey parses "<label>_<NNN>.ts".
func SegmentKey(label string) KeyFunc {
	prefix := label + "_"
	return func(name string) (int, bool) {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			return 0, false
		}
		num, ok := strings.CutSuffix(rest, ".ts")
		if !ok {
			return 0, false
		}
		return atoiStrict(num)
	}
}

// ThumbnailKey parses "prev<N>.jpg".
func ThumbnailKey(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "prev")
	if !ok {
		return 0, false
	}
	num, ok := strings.CutSuffix(rest, ".jpg")
	if !ok {
		return 0, false
	}
	return atoiStrict(num)
}

func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Scan enumerates the artifacts in dir accepted by key, sorted by key.
// remoteDir is the store path mirroring dir.
func Scan(dir, remoteDir string, key KeyFunc) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	seen := make(map[int]string)
	var out []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		k, ok := key(e.Name())
		if !ok {
			continue
		}
		if prev, dup := seen[k]; dup {
			return nil, fmt.Errorf("duplicate ordering key %d: %s and %s", k, prev, e.Name())
		}
		seen[k] = e.Name()

		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, Artifact{
			Name:       e.Name(),
			LocalPath:  filepath.Join(dir, e.Name()),
			RemotePath: path.Join(remoteDir, e.Name()),
			Key:        k,
			Size:       info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ScanRendition enumerates the segments of one rendition folder.
func ScanRendition(it ContentItem, label string) ([]Artifact, error) {
	return Scan(filepath.Join(it.Dir, label), path.Join(it.RemoteDir, label), SegmentKey(label))
}

// ScanThumbnails enumerates the preview images of an item.
func ScanThumbnails(it ContentItem) ([]Artifact, error) {
	return Scan(filepath.Join(it.Dir, PreviewDir), path.Join(it.RemoteDir, PreviewDir), ThumbnailKey)
}

// MaxSize returns the largest artifact size, used as the bandwidth proxy.
func MaxSize(arts []Artifact) int64 {
	var m int64
	for _, a := range arts {
		m = max(m, a.Size)
	}
	return m
}
