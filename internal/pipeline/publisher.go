// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pipeline runs a title from source files to published playlists:
// encode, wait for the store, resolve links, rewrite manifests, compose
// master playlists and finalize the catalog record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/ManuGH/hlsbundle/internal/catalog"
	"github.com/ManuGH/hlsbundle/internal/encode"
	"github.com/ManuGH/hlsbundle/internal/ladder"
	"github.com/ManuGH/hlsbundle/internal/library"
	"github.com/ManuGH/hlsbundle/internal/link"
	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/metrics"
	"github.com/ManuGH/hlsbundle/internal/probe"
	"github.com/ManuGH/hlsbundle/internal/syncwait"
	"github.com/ManuGH/hlsbundle/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ErrNothingPublished is returned when the main item has no usable rendition.
var ErrNothingPublished = errors.New("no rendition of the main item could be published")

// Encoder runs encode jobs to completion.
type Encoder interface {
	Run(ctx context.Context, jobs []encode.Job) encode.Report
}

// ChapterProber extracts chapters from a source file.
type ChapterProber interface {
	Chapters(ctx context.Context, path string) (*probe.Chapters, error)
}

// Barrier blocks until a remote folder is visible.
type Barrier interface {
	Wait(ctx context.Context, t syncwait.Target) error
}

// BatchResolver resolves store paths to public URLs.
type BatchResolver interface {
	Resolve(ctx context.Context, tasks []link.Task) ([]link.Resolved, error)
}

// CatalogPublisher stores the finished media record.
type CatalogPublisher interface {
	Publish(ctx context.Context, rec *catalog.MediaRecord) (string, error)
}

// Publisher wires the pipeline stages. Catalog may be nil.
type Publisher struct {
	Encoder    Encoder
	Prober     ChapterProber
	Barrier    Barrier
	Resolver   BatchResolver
	Catalog    CatalogPublisher
	Renditions []ladder.RenditionSpec

	// CaptionWidth is the time span covered by one preview image.
	CaptionWidth time.Duration
}

// Request describes one run.
type Request struct {
	Layout library.Layout
	// Source is the directory holding the .mkv files. Ignored with SkipEncode.
	Source     string
	SkipEncode bool
	Record     *catalog.MediaRecord
}

// Run publishes the title described by req. The returned summary is never
// nil; on error its status is StatusAborted.
func (p *Publisher) Run(ctx context.Context, req Request) (*Summary, error) {
	runID := uuid.NewString()
	ctx = log.ContextWithRunID(ctx, runID)
	logger := log.WithComponentFromContext(ctx, "pipeline")
	ctx = logger.WithContext(ctx)

	ctx, span := telemetry.StartSpan(ctx, "hlsbundle.run",
		attribute.String(telemetry.RunIDKey, runID),
		attribute.String(telemetry.TitleKey, req.Layout.Title),
	)

	sum := &Summary{RunID: runID, Title: req.Layout.Title, Record: req.Record}
	err := p.run(ctx, req, sum)
	if err != nil {
		sum.Status = StatusAborted
	}
	sum.finalize()
	span.SetAttributes(attribute.String(telemetry.StatusKey, string(sum.Status)))
	telemetry.EndSpan(span, err)
	metrics.RecordRun(string(sum.Status))

	ev := logger.Info()
	if err != nil {
		ev = logger.Error().Err(err)
	}
	ev.Str(log.FieldEvent, "run.finished").Str(log.FieldStatus, string(sum.Status)).
		Strs("missing", sum.Missing()).Msg("run finished")
	return sum, err
}

func (p *Publisher) run(ctx context.Context, req Request, sum *Summary) error {
	logger := log.FromContext(ctx)

	var (
		plans []itemPlan
		err   error
	)
	if req.SkipEncode {
		logger.Info().Str(log.FieldPhase, "discover").Msg("skipping encode, linking existing tree")
		plans, err = p.existing(ctx, req.Layout)
	} else {
		plans, err = p.encode(ctx, req)
	}
	if err != nil {
		return err
	}

	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return err
		}
		is, err := p.publishItem(ctx, plan)
		if err != nil {
			return fmt.Errorf("publish %s: %w", plan.item.Name, err)
		}
		sum.Items = append(sum.Items, is)
	}

	if sum.Items[0].Name != library.MainItem || sum.Items[0].Streams == 0 {
		return ErrNothingPublished
	}
	return p.finalizeRecord(ctx, sum)
}

// itemPlan is what the link phase needs to know about an item.
type itemPlan struct {
	item       library.ContentItem
	renditions []ladder.RenditionSpec // ladder order, successfully encoded
	missing    []string
}

func (p *Publisher) encode(ctx context.Context, req Request) ([]itemPlan, error) {
	logger := log.FromContext(ctx)
	sources, err := library.Discover(req.Source)
	if err != nil {
		return nil, err
	}
	if err := req.Layout.CheckNew(); err != nil {
		return nil, err
	}

	items := make([]library.ContentItem, len(sources))
	for i, src := range sources {
		items[i] = req.Layout.Item(i, src)
	}
	if err := req.Layout.Prepare(items, p.Renditions); err != nil {
		return nil, err
	}

	for _, it := range items {
		p.writeChapters(ctx, it)
	}

	var jobs []encode.Job
	for _, it := range items {
		jobs = append(jobs, encode.Plan(it, p.Renditions)...)
	}
	logger.Info().Str(log.FieldPhase, "encode").Int("items", len(items)).Int("jobs", len(jobs)).Msg("encode phase starting")

	ectx, span := telemetry.StartSpan(ctx, "hlsbundle.encode", attribute.Int(telemetry.JobsKey, len(jobs)))
	report := p.Encoder.Run(ectx, jobs)
	failed := report.Failed()
	span.SetAttributes(attribute.Int(telemetry.FailedJobsKey, len(failed)))
	telemetry.EndSpan(span, report.Err())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, res := range failed {
		logger.Error().Err(res.Err).Str(log.FieldItem, res.Job.Item).Str(log.FieldRendition, res.Job.Label).
			Strs("stderr", res.Diagnostics).Msg("encode job failed")
	}

	plans := make([]itemPlan, len(items))
	for i, it := range items {
		plan := itemPlan{item: it}
		for _, r := range p.Renditions {
			if report.FailedRendition(it.Name, r.Label) {
				plan.missing = append(plan.missing, r.Label)
				continue
			}
			plan.renditions = append(plan.renditions, r)
		}
		for _, kind := range []encode.Kind{encode.KindSubtitles, encode.KindThumbnails} {
			if report.FailedRendition(it.Name, string(kind)) {
				plan.missing = append(plan.missing, string(kind))
			}
		}
		plans[i] = plan
	}
	return plans, nil
}

// existing plans the link phase for an already encoded title. Rendition
// folders outside the configured ladder are ignored.
func (p *Publisher) existing(ctx context.Context, l library.Layout) ([]itemPlan, error) {
	logger := log.FromContext(ctx)
	items, err := l.ExistingItems()
	if err != nil {
		return nil, err
	}
	plans := make([]itemPlan, len(items))
	for i, it := range items {
		labels, err := library.RenditionLabels(it.Dir)
		if err != nil {
			return nil, err
		}
		plan := itemPlan{item: it}
		for _, r := range p.Renditions {
			if slices.Contains(labels, r.Label) && fileExists(filepath.Join(it.Dir, r.Label, library.ManifestFile)) {
				plan.renditions = append(plan.renditions, r)
			} else {
				plan.missing = append(plan.missing, r.Label)
			}
		}
		for _, label := range labels {
			if !slices.ContainsFunc(p.Renditions, func(r ladder.RenditionSpec) bool { return r.Label == label }) {
				logger.Warn().Str(log.FieldItem, it.Name).Str(log.FieldRendition, label).
					Msg("rendition folder not in ladder, skipped")
			}
		}
		plans[i] = plan
	}
	return plans, nil
}

func (p *Publisher) writeChapters(ctx context.Context, it library.ContentItem) {
	logger := log.FromContext(ctx).With().Str(log.FieldItem, it.Name).Logger()
	chapters, err := p.Prober.Chapters(ctx, it.SourcePath)
	if err != nil {
		logger.Warn().Err(err).Msg("chapter extraction failed, publishing empty chapter list")
		chapters = &probe.Chapters{Chapters: []probe.Chapter{}}
	}
	if err := probe.WriteFile(filepath.Join(it.Dir, library.ChaptersFile), chapters); err != nil {
		logger.Warn().Err(err).Msg("failed to write chapter data")
		return
	}
	metrics.RecordArtifacts("chapters", 1)
}

func (p *Publisher) finalizeRecord(ctx context.Context, sum *Summary) error {
	if sum.Record == nil {
		return nil
	}
	primary := sum.Items[0]
	urls := &catalog.URLs{
		Chapters:   primary.ChaptersURL,
		Subtitles:  primary.SubtitlesURL,
		Thumbnails: primary.ThumbnailsURL,
		Video:      primary.Playlist,
	}
	for _, it := range sum.Items[1:] {
		if it.Playlist != "" {
			urls.Bonus = append(urls.Bonus, it.Playlist)
		}
	}
	sum.Record.URLs = urls

	if p.Catalog == nil {
		return nil
	}
	id, err := p.Catalog.Publish(ctx, sum.Record)
	if err != nil {
		return fmt.Errorf("publish media record: %w", err)
	}
	sum.Record.ID = id
	return nil
}
