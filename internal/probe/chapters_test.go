package probe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
    "chapters": [
        {"id": 0, "time_base": "1/1000", "start": 0, "start_time": "0.000000", "end": 60000, "end_time": "60.000000", "tags": {"title": "Opening"}},
        {"id": 1, "time_base": "1/1000", "start": 60000, "start_time": "60.000000", "end": 120000, "end_time": "120.000000", "tags": {"title": "Credits"}}
    ]
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, c.Chapters, 2)
	assert.Equal(t, "Credits", c.Chapters[1].Tags["title"])
	assert.Equal(t, "60.000000", c.Chapters[1].StartTime)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, c.Chapters)
	assert.Empty(t, c.Chapters)

	_, err = Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "chapterdata.json")
	require.NoError(t, WriteFile(path, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Chapters
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c.Chapters, back.Chapters)
}

func TestChaptersMissingBinary(t *testing.T) {
	p := NewProber(filepath.Join(t.TempDir(), "no-such-ffprobe"))
	_, err := p.Chapters(t.Context(), "movie.mkv")
	assert.Error(t, err)
}
