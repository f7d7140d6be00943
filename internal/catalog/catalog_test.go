package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	*httptest.Server
	uploads []MediaRecord
}

func newFakeCatalog(t *testing.T, token string) *fakeCatalog {
	t.Helper()
	f := &fakeCatalog{}
	r := chi.NewRouter()
	r.Head("/", func(w http.ResponseWriter, r *http.Request) {})
	r.Post("/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != token {
			w.WriteHeader(http.StatusForbidden)
		}
	})
	r.Get("/mostrecentupload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(MediaRecord{ID: "m-41", Title: "Prequel"})
	})
	r.Get("/getcontent", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "m-41" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(MediaRecord{ID: "m-41", Title: "Prequel"})
	})
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != token {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var rec MediaRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.uploads = append(f.uploads, rec)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "m-42"})
	})
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

func TestClientCheck(t *testing.T) {
	f := newFakeCatalog(t, "admin")
	ctx := context.Background()

	require.NoError(t, New(f.URL, "admin", time.Second).Check(ctx))
	assert.ErrorIs(t, New(f.URL, "wrong", time.Second).Check(ctx), ErrTokenRejected)

	f.Close()
	assert.ErrorIs(t, New(f.URL, "admin", time.Second).Check(ctx), ErrUnreachable)
}

func TestLinkPrevious(t *testing.T) {
	f := newFakeCatalog(t, "admin")
	c := New(f.URL, "admin", time.Second)
	ctx := context.Background()

	rec := &MediaRecord{Title: "Sequel", PreviousID: PreviousLatest}
	require.NoError(t, c.LinkPrevious(ctx, rec))
	assert.Equal(t, "m-41", rec.PreviousID)

	require.NoError(t, c.LinkPrevious(ctx, &MediaRecord{PreviousID: "m-41"}))
	assert.ErrorIs(t, c.LinkPrevious(ctx, &MediaRecord{PreviousID: "nope"}), ErrNotFound)
	require.NoError(t, c.LinkPrevious(ctx, &MediaRecord{}))
}

func TestPublish(t *testing.T) {
	f := newFakeCatalog(t, "admin")
	c := New(f.URL, "admin", time.Second)

	rec := &MediaRecord{
		Title:    "Movie",
		Starring: []string{"A", "B"},
		URLs:     &URLs{Video: "https://gw/v", Bonus: []string{"https://gw/b1"}},
	}
	id, err := c.Publish(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "m-42", id)
	require.Len(t, f.uploads, 1)
	assert.Equal(t, "https://gw/v", f.uploads[0].URLs.Video)
	assert.Equal(t, []string{"https://gw/b1"}, f.uploads[0].URLs.Bonus)
}

func TestPublishMalformedResponseIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.Configure(log.Config{Output: &buf})
	t.Cleanup(func() { log.Configure(log.Config{}) })

	r := chi.NewRouter()
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	id, err := New(srv.URL, "admin", time.Second).Publish(context.Background(), &MediaRecord{Title: "Movie"})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "catalog.decode")
}

func TestMediaRecordJSONFieldNames(t *testing.T) {
	rec := MediaRecord{Title: "T", Triggers: Triggers{IntroStart: "00:10"}, URLs: &URLs{Chapters: "c"}}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "starring")
	assert.Equal(t, "00:10", m["triggers"].(map[string]any)["intro_start"])
	assert.Equal(t, "c", m["urls"].(map[string]any)["chapters"])
	assert.NotContains(t, m, "id")
}

func TestLoadRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: The Movie
director: Someone
starring: [A, B]
description: A film.
tags: [drama]
triggers:
  intro_start: "00:05"
  intro_stop: "01:30"
previous_id: latest
`), 0o600))

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, "The Movie", rec.Title)
	assert.Equal(t, []string{"A", "B"}, rec.Starring)
	assert.Equal(t, "01:30", rec.Triggers.IntroStop)
	assert.Equal(t, PreviousLatest, rec.PreviousID)
}

func TestLoadRecordRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown field": "title: X\nrating: 5\n",
		"missing title": "director: X\n",
		"bad trigger":   "title: X\ntriggers:\n  intro_start: \"1:75\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadRecord(path)
			assert.Error(t, err)
		})
	}
}
