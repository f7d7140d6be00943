// SPDX-License-Identifier: MIT

// Package remotetest provides an in-process fake of the object store API.
package remotetest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Store is a fake object store backed by an in-memory file table.
type Store struct {
	*httptest.Server

	mu        sync.Mutex
	token     string
	files     map[string]int64
	links     map[string]string
	hidden    map[string]int // folder -> remaining not_found responses
	lag       int
	pending   map[string]int // file -> remaining listings of its folder before it is visible
	failures  map[string][]int
	calls     map[string]int
	nextLink  int
	pageSize  int
	cursors   map[string][]entry
	nextToken int
}

type entry struct {
	Tag  string `json:".tag"`
	Name string `json:"name"`
	Path string `json:"path_display"`
	Size int64  `json:"size,omitempty"`
}

// NewStore starts a fake store. Requests must carry token when it is non-empty.
func NewStore(token string) *Store {
	s := &Store{
		token:    token,
		files:    make(map[string]int64),
		links:    make(map[string]string),
		hidden:   make(map[string]int),
		pending:  make(map[string]int),
		failures: make(map[string][]int),
		calls:    make(map[string]int),
		cursors:  make(map[string][]entry),
		pageSize: 1000,
	}

	r := chi.NewRouter()
	r.Use(s.auth)
	r.Post("/sharing/create_shared_link_with_settings", s.handleCreateLink)
	r.Post("/sharing/list_shared_links", s.handleListLinks)
	r.Post("/files/list_folder", s.handleListFolder)
	r.Post("/files/list_folder/continue", s.handleListFolderContinue)

	s.Server = httptest.NewServer(r)
	return s
}

// AddFile registers a file at remote path p. With a lag set, a new file
// stays invisible until its folder has been listed that many times; its
// parent folders show up immediately.
func (s *Store) AddFile(p string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = path.Clean(p)
	if _, ok := s.files[p]; !ok && s.lag > 0 {
		s.pending[p] = s.lag
	}
	s.files[p] = size
}

// SetLag delays the visibility of files added afterwards by n folder listings.
func (s *Store) SetLag(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lag = n
}

// Mirror registers every regular file under localRoot at remoteRoot, the
// way the sync client would upload it.
func (s *Store) Mirror(localRoot, remoteRoot string) error {
	return filepath.WalkDir(localRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localRoot, p)
		if err != nil {
			return err
		}
		s.AddFile(path.Join(remoteRoot, filepath.ToSlash(rel)), info.Size())
		return nil
	})
}

// Hide makes the next n listings of folder report path/not_found.
func (s *Store) Hide(folder string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[path.Clean(folder)] = n
}

// FailNext makes the next calls to endpoint fail with the given statuses, in order.
func (s *Store) FailNext(endpoint string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = append(s.failures[endpoint], statuses...)
}

// SetPageSize limits the number of entries per listing page.
func (s *Store) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// LinkFor pre-creates a link, so the next create call reports it as existing.
func (s *Store) LinkFor(p string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linkLocked(path.Clean(p))
}

// Calls returns how many requests reached endpoint.
func (s *Store) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func (s *Store) linkLocked(p string) string {
	if u, ok := s.links[p]; ok {
		return u
	}
	s.nextLink++
	u := fmt.Sprintf("https://store.test/s/%04d/%s?dl=0", s.nextLink, path.Base(p))
	s.links[p] = u
	return u
}

func (s *Store) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "invalid_access_token", http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		s.calls[r.URL.Path]++
		var status int
		if q := s.failures[r.URL.Path]; len(q) > 0 {
			status, s.failures[r.URL.Path] = q[0], q[1:]
		}
		s.mu.Unlock()
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Store) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	p := path.Clean(req.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, isFile := s.files[p]
	if (!isFile || s.pending[p] > 0) && !s.isFolderLocked(p) {
		conflict(w, "path/not_found/", "path")
		return
	}
	if _, ok := s.links[p]; ok {
		conflict(w, "shared_link_already_exists/..", "shared_link_already_exists")
		return
	}
	writeJSON(w, map[string]string{"url": s.linkLocked(p), "name": path.Base(p), "path_lower": strings.ToLower(p)})
}

func (s *Store) handleListLinks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	links := []map[string]string{}
	if u, ok := s.links[path.Clean(req.Path)]; ok {
		links = append(links, map[string]string{"url": u})
	}
	writeJSON(w, map[string]any{"links": links, "has_more": false})
}

func (s *Store) handleListFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	folder := path.Clean(req.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.hidden[folder]; n > 0 {
		s.hidden[folder] = n - 1
		conflict(w, "path/not_found/..", "path")
		return
	}
	if !s.isFolderLocked(folder) {
		conflict(w, "path/not_found/..", "path")
		return
	}
	s.writePageLocked(w, s.childrenLocked(folder))
	s.settleLocked(folder)
}

// settleLocked counts one listing of folder against its pending files.
func (s *Store) settleLocked(folder string) {
	for f, n := range s.pending {
		if path.Dir(f) != folder {
			continue
		}
		if n <= 1 {
			delete(s.pending, f)
		} else {
			s.pending[f] = n - 1
		}
	}
}

func (s *Store) handleListFolderContinue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cursor string `json:"cursor"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rest, ok := s.cursors[req.Cursor]
	if !ok {
		conflict(w, "reset/..", "reset")
		return
	}
	delete(s.cursors, req.Cursor)
	s.writePageLocked(w, rest)
}

func (s *Store) writePageLocked(w http.ResponseWriter, entries []entry) {
	page := entries
	cursor := ""
	hasMore := false
	if len(entries) > s.pageSize {
		page = entries[:s.pageSize]
		s.nextToken++
		cursor = "c" + strconv.Itoa(s.nextToken)
		s.cursors[cursor] = entries[s.pageSize:]
		hasMore = true
	}
	writeJSON(w, map[string]any{"entries": page, "cursor": cursor, "has_more": hasMore})
}

func (s *Store) isFolderLocked(p string) bool {
	prefix := strings.TrimSuffix(p, "/") + "/"
	for f := range s.files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func (s *Store) childrenLocked(folder string) []entry {
	prefix := strings.TrimSuffix(folder, "/") + "/"
	seen := make(map[string]bool)
	var out []entry
	for f, size := range s.files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		rest := strings.TrimPrefix(f, prefix)
		name, _, nested := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		if !nested && s.pending[f] > 0 {
			continue
		}
		e := entry{Tag: "file", Name: name, Path: prefix + name, Size: size}
		if nested {
			e.Tag, e.Size = "folder", 0
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Error in call: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func conflict(w http.ResponseWriter, summary, tag string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error_summary": summary,
		"error":         map[string]string{".tag": tag},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
