// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/platform/httpx"
)

var (
	// ErrUnreachable is returned when the catalog does not answer.
	ErrUnreachable = errors.New("catalog: unreachable")
	// ErrTokenRejected is returned when the admin token is not accepted.
	ErrTokenRejected = errors.New("catalog: admin token rejected")
	// ErrNotFound is returned for unknown record ids.
	ErrNotFound = errors.New("catalog: record not found")
	// ErrUnexpectedStatus is returned for any other non-2xx answer.
	ErrUnexpectedStatus = errors.New("catalog: unexpected status")
)

// Client talks to the catalog service.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New returns a traced catalog client.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  httpx.NewClient(timeout, httpx.WithTracing()),
	}
}

// Check verifies that the catalog is reachable and accepts the admin token.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodHead, "/", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	_ = resp.Body.Close()

	resp, err = c.do(ctx, http.MethodPost, "/verify", url.Values{"token": {c.token}}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w (HTTP %d)", ErrTokenRejected, resp.StatusCode)
	}
	logger := log.WithComponentFromContext(ctx, "catalog")
	logger.Info().Str(log.FieldEvent, "catalog.check.ok").Msg("catalog reachable, admin token accepted")
	return nil
}

// MostRecent returns the latest uploaded record.
func (c *Client) MostRecent(ctx context.Context) (*MediaRecord, error) {
	var rec MediaRecord
	if err := c.getJSON(ctx, "/mostrecentupload", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns the record with the given id.
func (c *Client) Get(ctx context.Context, id string) (*MediaRecord, error) {
	var rec MediaRecord
	if err := c.getJSON(ctx, "/getcontent", url.Values{"id": {id}}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Publish uploads rec and returns the id assigned by the catalog, if any.
func (c *Client) Publish(ctx context.Context, rec *MediaRecord) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/upload", url.Values{"token": {c.token}}, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := statusErr(resp); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	logger := log.WithComponentFromContext(ctx, "catalog")
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "catalog.decode").Str(log.FieldTitle, rec.Title).
				Msg("failed to decode upload response, record id unknown")
		}
	}
	logger.Info().Str(log.FieldEvent, "catalog.published").
		Str(log.FieldTitle, rec.Title).Str("record_id", out.ID).Msg("media record published")
	return out.ID, nil
}

// LinkPrevious resolves rec.PreviousID: "latest" becomes the id of the most
// recent upload, any other non-empty id must exist.
func (c *Client) LinkPrevious(ctx context.Context, rec *MediaRecord) error {
	switch rec.PreviousID {
	case "":
		return nil
	case PreviousLatest:
		recent, err := c.MostRecent(ctx)
		if err != nil {
			return err
		}
		if recent.ID == "" {
			return ErrNoPrevious
		}
		logger := log.WithComponentFromContext(ctx, "catalog")
		logger.Info().Str("previous_id", recent.ID).
			Str("previous_title", recent.Title).Msg("linked to most recent upload")
		rec.PreviousID = recent.ID
		return nil
	default:
		_, err := c.Get(ctx, rec.PreviousID)
		return err
	}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := statusErr(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func statusErr(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", ErrTokenRejected, resp.StatusCode)
	default:
		return fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}
