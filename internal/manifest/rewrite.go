// SPDX-License-Identifier: MIT

// Package manifest rewrites segment manifests to point at published URLs and
// renders thumbnail caption tracks.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio/v2"
)

// ErrShapeMismatch is returned when the number of URLs does not match the
// number of content lines.
var ErrShapeMismatch = errors.New("manifest shape mismatch")

// IsDirective reports whether line is an HLS tag or comment.
func IsDirective(line string) bool {
	return strings.HasPrefix(line, "#")
}

// IsContent reports whether line is a URI line.
func IsContent(line string) bool {
	return strings.TrimSpace(line) != "" && !IsDirective(line)
}

// ContentLines counts the URI lines.
func ContentLines(lines []string) int {
	n := 0
	for _, l := range lines {
		if IsContent(l) {
			n++
		}
	}
	return n
}

// Rewrite replaces the i-th content line with urls[i], keeping its line
// ending. Directives and empty lines are kept verbatim.
func Rewrite(lines, urls []string) ([]string, error) {
	n := ContentLines(lines)
	if n == 0 || n != len(urls) {
		return nil, fmt.Errorf("%w: %d content lines, %d urls", ErrShapeMismatch, n, len(urls))
	}
	out := make([]string, len(lines))
	next := 0
	for i, l := range lines {
		if IsContent(l) {
			out[i] = urls[next]
			if strings.HasSuffix(l, "\r") {
				out[i] += "\r"
			}
			next++
			continue
		}
		out[i] = l
	}
	return out, nil
}

// ReadLines splits a manifest file on LF. A CRLF line keeps its trailing
// carriage return so RewriteFile writes it back unchanged.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

// RewriteFile rewrites the manifest at path in place. The file is replaced atomically.
func RewriteFile(path string, urls []string) error {
	lines, err := ReadLines(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	out, err := Rewrite(lines, urls)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return renameio.WriteFile(path, []byte(strings.Join(out, "\n")), 0o644)
}
