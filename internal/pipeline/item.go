// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/ManuGH/hlsbundle/internal/encode"
	"github.com/ManuGH/hlsbundle/internal/library"
	"github.com/ManuGH/hlsbundle/internal/link"
	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/manifest"
	"github.com/ManuGH/hlsbundle/internal/metrics"
	"github.com/ManuGH/hlsbundle/internal/playlist"
	"github.com/ManuGH/hlsbundle/internal/syncwait"
	"github.com/ManuGH/hlsbundle/internal/telemetry"
)

const defaultCaptionWidth = encode.CaptionInterval * time.Second

// Ordering keys of the per-item documents. Manifests use the ladder position.
const (
	keyChapters = 1000 + iota
	keySubtitles
	keyCaptions
)

func (p *Publisher) publishItem(ctx context.Context, plan itemPlan) (is ItemSummary, err error) {
	it := plan.item
	ctx = log.ContextWithItem(ctx, it.Name)
	logger := log.WithComponentFromContext(ctx, "pipeline")
	ctx, span := telemetry.StartSpan(ctx, "hlsbundle.item", telemetry.ItemAttributes("", it.Name)...)
	defer func() { telemetry.EndSpan(span, err) }()

	is = ItemSummary{Name: it.Name, Missing: plan.missing}
	if len(plan.renditions) == 0 {
		logger.Warn().Str(log.FieldEvent, "item.skipped").Msg("no rendition available, item not published")
		return is, nil
	}

	// item folder: rendition folders plus the documents resolved at the end
	expect := []string{library.PreviewDir}
	for _, r := range plan.renditions {
		expect = append(expect, r.Label)
	}
	for _, doc := range []string{library.ChaptersFile, library.SubtitlesFile} {
		if fileExists(filepath.Join(it.Dir, doc)) {
			expect = append(expect, doc)
		}
	}
	if err := p.await(ctx, it.RemoteDir, expect); err != nil {
		return is, err
	}

	// segments, manifest rewrite
	var (
		streams []playlist.Stream
		labels  []string
	)
	for _, r := range plan.renditions {
		arts, err := library.ScanRendition(it, r.Label)
		if err != nil {
			return is, err
		}
		if len(arts) == 0 {
			logger.Warn().Str(log.FieldRendition, r.Label).Msg("rendition has no segments")
			is.Missing = append(is.Missing, r.Label)
			continue
		}
		if err := p.await(ctx, path.Join(it.RemoteDir, r.Label), append(artifactNames(arts), library.ManifestFile)); err != nil {
			return is, err
		}
		urls, err := p.resolve(ctx, r.Label, link.Tasks(arts))
		if err != nil {
			return is, err
		}
		if err := manifest.RewriteFile(filepath.Join(it.Dir, r.Label, library.ManifestFile), link.URLs(urls)); err != nil {
			return is, err
		}
		metrics.RecordArtifacts("segment", len(arts))
		streams = append(streams, playlist.Stream{
			Position:   r.Position,
			Bandwidth:  library.MaxSize(arts),
			Resolution: r.Resolution(),
		})
		labels = append(labels, r.Label)
		logger.Info().Str(log.FieldPhase, "rewrite").Str(log.FieldRendition, r.Label).
			Int("segments", len(arts)).Int64(log.FieldBandwidth, library.MaxSize(arts)).Msg("manifest rewritten")
	}
	if len(streams) == 0 {
		return is, nil
	}

	// thumbnails, captions
	captions := false
	thumbs, err := library.ScanThumbnails(it)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return is, err
	}
	if len(thumbs) > 0 {
		if err := p.await(ctx, path.Join(it.RemoteDir, library.PreviewDir), artifactNames(thumbs)); err != nil {
			return is, err
		}
		urls, err := p.resolve(ctx, library.PreviewDir, link.Tasks(thumbs))
		if err != nil {
			return is, err
		}
		width := p.CaptionWidth
		if width <= 0 {
			width = defaultCaptionWidth
		}
		if err := manifest.WriteCaptions(filepath.Join(it.Dir, library.PreviewDir, library.CaptionsFile), link.URLs(urls), width); err != nil {
			return is, err
		}
		metrics.RecordArtifacts("thumbnail", len(thumbs))
		captions = true
	} else if !slices.Contains(is.Missing, string(encode.KindThumbnails)) {
		is.Missing = append(is.Missing, string(encode.KindThumbnails))
	}
	if captions {
		if err := p.await(ctx, path.Join(it.RemoteDir, library.PreviewDir), []string{library.CaptionsFile}); err != nil {
			return is, err
		}
	}

	// manifests and auxiliary documents
	tasks := make([]link.Task, 0, len(streams)+3)
	for i, s := range streams {
		tasks = append(tasks, link.Task{Key: s.Position, Path: path.Join(it.RemoteDir, labels[i], library.ManifestFile)})
	}
	if fileExists(filepath.Join(it.Dir, library.ChaptersFile)) {
		tasks = append(tasks, link.Task{Key: keyChapters, Path: path.Join(it.RemoteDir, library.ChaptersFile)})
	}
	if fileExists(filepath.Join(it.Dir, library.SubtitlesFile)) {
		tasks = append(tasks, link.Task{Key: keySubtitles, Path: path.Join(it.RemoteDir, library.SubtitlesFile)})
	}
	if captions {
		tasks = append(tasks, link.Task{Key: keyCaptions, Path: path.Join(it.RemoteDir, library.PreviewDir, library.CaptionsFile)})
	}
	docs, err := p.resolve(ctx, "documents", tasks)
	if err != nil {
		return is, err
	}
	byKey := make(map[int]string, len(docs))
	for _, d := range docs {
		byKey[d.Key] = d.URL
	}
	for i := range streams {
		streams[i].URL = byKey[streams[i].Position]
	}
	is.ChaptersURL = byKey[keyChapters]
	is.SubtitlesURL = byKey[keySubtitles]
	is.ThumbnailsURL = byKey[keyCaptions]
	is.Streams = len(streams)

	// master playlist
	master := playlist.Master{ChaptersURL: is.ChaptersURL, Streams: streams}
	if err := playlist.WriteMasterFile(filepath.Join(it.Dir, library.MasterFile), master); err != nil {
		return is, err
	}
	metrics.RecordArtifacts("playlist", 1)
	if err := p.await(ctx, it.RemoteDir, []string{library.MasterFile}); err != nil {
		return is, err
	}
	res, err := p.resolve(ctx, library.MasterFile, []link.Task{{Path: path.Join(it.RemoteDir, library.MasterFile)}})
	if err != nil {
		return is, err
	}
	is.Playlist = res[0].URL
	logger.Info().Str(log.FieldEvent, "item.published").Str(log.FieldURL, is.Playlist).
		Int("streams", len(streams)).Msg("master playlist published")
	return is, nil
}

// await blocks until every name is listed in the remote folder dir.
func (p *Publisher) await(ctx context.Context, dir string, names []string) error {
	logger := log.WithComponentFromContext(ctx, "pipeline")
	logger.Debug().Str(log.FieldPhase, "barrier").
		Str(log.FieldRemotePath, dir).Int("expect", len(names)).Msg("waiting for store")
	return p.Barrier.Wait(ctx, syncwait.Target{Path: dir, Expect: names})
}

func artifactNames(arts []library.Artifact) []string {
	names := make([]string, len(arts))
	for i, a := range arts {
		names[i] = a.Name
	}
	return names
}

func (p *Publisher) resolve(ctx context.Context, folder string, tasks []link.Task) ([]link.Resolved, error) {
	ctx, span := telemetry.StartSpan(ctx, "hlsbundle.resolve",
		telemetry.BatchAttributes(log.ItemFromContext(ctx), folder, len(tasks))...)
	out, err := p.Resolver.Resolve(ctx, tasks)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", folder, err)
	}
	return out, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
