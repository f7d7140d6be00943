package encode

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/ManuGH/hlsbundle/internal/ladder"
	"github.com/ManuGH/hlsbundle/internal/library"
)

// Thumbnail sampling. One image every CaptionInterval seconds keeps the
// preview images aligned with the caption ranges.
const (
	CaptionInterval = 10
	thumbnailFilter = "fps=1/10,scale=150:84"
	crf             = "20"
)

func baseArgs(input string) []string {
	return []string{"-y", "-nostdin", "-hide_banner", "-i", input}
}

// RenditionArgs builds the HLS encode for one ladder level.
func RenditionArgs(input, itemDir string, r ladder.RenditionSpec) []string {
	dir := filepath.Join(itemDir, r.Label)
	args := baseArgs(input)
	args = append(args,
		"-vf", fmt.Sprintf("scale=trunc(oh*a/2)*2:%d", r.Height),
		"-c:a", "aac", "-ac", "2",
		"-c:v", "libx264", "-pixel_format", "yuv420p",
		"-profile:v", r.Profile,
		"-crf", crf,
		"-flags", "+cgop", "-sc_threshold", "0",
		"-g", strconv.Itoa(r.GOP), "-keyint_min", strconv.Itoa(r.GOP),
		"-r", strconv.Itoa(r.FrameRate),
		"-hls_time", strconv.Itoa(int(r.SegmentDuration.Seconds())),
		"-hls_playlist_type", "vod",
		"-b:v", r.VideoBitrate, "-maxrate", r.MaxRate, "-bufsize", r.BufSize,
		"-b:a", r.AudioBitrate,
		"-pix_fmt", "yuv420p",
		"-hls_segment_filename", filepath.Join(dir, r.Label+"_%03d.ts"),
		filepath.Join(dir, library.ManifestFile),
	)
	return args
}

// SubtitleArgs converts an .srt sidecar to WebVTT.
func SubtitleArgs(srt, itemDir string) []string {
	return append(baseArgs(srt), filepath.Join(itemDir, library.SubtitlesFile))
}

// ThumbnailArgs extracts preview images.
func ThumbnailArgs(input, itemDir string) []string {
	args := baseArgs(input)
	return append(args,
		"-vf", thumbnailFilter,
		filepath.Join(itemDir, library.PreviewDir, "prev%d.jpg"),
	)
}

// Plan returns the jobs for one item: one per rendition, then subtitles and thumbnails.
// The subtitle job is marked skipped when the item has no .srt sidecar.
func Plan(it library.ContentItem, renditions []ladder.RenditionSpec) []Job {
	jobs := make([]Job, 0, len(renditions)+2)
	for _, r := range renditions {
		jobs = append(jobs, Job{
			ID:        it.Name + "/" + r.Label,
			Item:      it.Name,
			Kind:      KindRendition,
			Label:     r.Label,
			Args:      RenditionArgs(it.SourcePath, it.Dir, r),
			OutputDir: filepath.Join(it.Dir, r.Label),
		})
	}

	sub := Job{
		ID:        it.Name + "/" + string(KindSubtitles),
		Item:      it.Name,
		Kind:      KindSubtitles,
		Label:     string(KindSubtitles),
		OutputDir: it.Dir,
	}
	if it.SubtitlePath == "" {
		sub.SkipReason = "no subtitle sidecar"
	} else {
		sub.Args = SubtitleArgs(it.SubtitlePath, it.Dir)
	}
	jobs = append(jobs, sub)

	jobs = append(jobs, Job{
		ID:        it.Name + "/" + string(KindThumbnails),
		Item:      it.Name,
		Kind:      KindThumbnails,
		Label:     string(KindThumbnails),
		Args:      ThumbnailArgs(it.SourcePath, it.Dir),
		OutputDir: filepath.Join(it.Dir, library.PreviewDir),
	})
	return jobs
}
