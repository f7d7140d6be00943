// Package probe extracts chapter metadata with ffprobe.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/google/renameio/v2"
)

const maxStderr = 4096

// Chapter is one entry of ffprobe's -show_chapters output.
type Chapter struct {
	ID        int64             `json:"id"`
	TimeBase  string            `json:"time_base"`
	Start     int64             `json:"start"`
	StartTime string            `json:"start_time"`
	End       int64             `json:"end"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Chapters is the document written to chapterdata.json.
type Chapters struct {
	Chapters []Chapter `json:"chapters"`
}

// Prober runs ffprobe.
type Prober struct {
	Binary string
}

func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary}
}

// Chapters returns the chapter list of path. A file without chapters yields
// an empty, non-nil list.
func (p *Prober) Chapters(ctx context.Context, path string) (*Chapters, error) {
	args := []string{"-i", path, "-print_format", "json", "-show_chapters", "-loglevel", "error"}

	// #nosec G204 -- binary comes from operator config; path is opaque
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "...(truncated)"
		}
		log.L().Warn().Err(err).Str(log.FieldPath, path).Str("stderr", msg).Msg("ffprobe chapters failed")
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse(out)
}

// Parse decodes ffprobe JSON output.
func Parse(data []byte) (*Chapters, error) {
	var c Chapters
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if c.Chapters == nil {
		c.Chapters = []Chapter{}
	}
	return &c, nil
}

// WriteFile stores c as indented JSON, replacing path atomically.
func WriteFile(path string, c *Chapters) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, append(data, '\n'), 0o644)
}
