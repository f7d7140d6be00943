package encode

import (
	"path/filepath"
	"testing"

	"github.com/ManuGH/hlsbundle/internal/ladder"
	"github.com/ManuGH/hlsbundle/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenditionArgs(t *testing.T) {
	r := ladder.Standard()[1]
	args := RenditionArgs("/src/movie.mkv", "/lib/T/main", r)

	assert.Equal(t, []string{"-y", "-nostdin", "-hide_banner", "-i", "/src/movie.mkv"}, args[:5])
	assert.Contains(t, args, "scale=trunc(oh*a/2)*2:360")
	assert.Contains(t, args, "baseline")
	assert.Equal(t, filepath.Join("/lib/T/main", r.Label, library.ManifestFile), args[len(args)-1])
	assert.Equal(t, filepath.Join("/lib/T/main", r.Label, r.Label+"_%03d.ts"), args[len(args)-2])
	assert.Equal(t, "-hls_segment_filename", args[len(args)-3])

	idx := indexOf(args, "-hls_time")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "4", args[idx+1])
	idx = indexOf(args, "-b:v")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "730k", args[idx+1])
}

func TestThumbnailArgs(t *testing.T) {
	args := ThumbnailArgs("/src/movie.mkv", "/lib/T/main")
	assert.Equal(t, thumbnailFilter, args[indexOf(args, "-vf")+1])
	assert.Equal(t, "/lib/T/main/preview_images/prev%d.jpg", args[len(args)-1])
}

func TestPlan(t *testing.T) {
	ladderSpecs := ladder.Standard()
	it := library.ContentItem{Name: "main", SourcePath: "/src/a.mkv", SubtitlePath: "/src/a.srt", Dir: "/lib/T/main"}

	jobs := Plan(it, ladderSpecs)
	require.Len(t, jobs, len(ladderSpecs)+2)
	for i, r := range ladderSpecs {
		assert.Equal(t, KindRendition, jobs[i].Kind)
		assert.Equal(t, "main/"+r.Label, jobs[i].ID)
		assert.Equal(t, filepath.Join(it.Dir, r.Label), jobs[i].OutputDir)
	}
	sub := jobs[len(ladderSpecs)]
	assert.Equal(t, KindSubtitles, sub.Kind)
	assert.Empty(t, sub.SkipReason)
	assert.Equal(t, "/lib/T/main/subtitles.vtt", sub.Args[len(sub.Args)-1])
	assert.Equal(t, KindThumbnails, jobs[len(jobs)-1].Kind)
}

func TestPlanWithoutSubtitles(t *testing.T) {
	it := library.ContentItem{Name: "bonus1", SourcePath: "/src/b.mkv", Dir: "/lib/T/bonus1"}
	jobs := Plan(it, ladder.Standard()[:1])
	require.Len(t, jobs, 3)
	assert.NotEmpty(t, jobs[1].SkipReason)
	assert.Nil(t, jobs[1].Args)
}

func TestRingBuffer(t *testing.T) {
	r := NewRingBuffer(3)
	assert.Empty(t, r.Lines())
	r.Add("a")
	r.Add("b")
	assert.Equal(t, []string{"a", "b"}, r.Lines())
	r.Add("c")
	r.Add("d")
	assert.Equal(t, []string{"b", "c", "d"}, r.Lines())
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
