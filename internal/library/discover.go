// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover lists the .mkv sources in dir. The largest file is the main
// feature and comes first; the remaining files follow in lexical order.
func Discover(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mkv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		p := filepath.Join(dir, e.Name())
		src := Source{Path: p, Size: info.Size()}
		if srt := strings.TrimSuffix(p, filepath.Ext(p)) + ".srt"; fileExists(srt) {
			src.SubtitlePath = srt
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, dir)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	largest := 0
	for i, s := range sources {
		if s.Size > sources[largest].Size {
			largest = i
		}
	}
	out := append([]Source{sources[largest]}, sources[:largest]...)
	return append(out, sources[largest+1:]...), nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
