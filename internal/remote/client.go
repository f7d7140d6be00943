// SPDX-License-Identifier: MIT

// Package remote is the HTTP client for the object store that backs the
// synced library folder.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/platform/httpx"
	"github.com/ManuGH/hlsbundle/internal/ratelimit"
	"github.com/rs/zerolog"
)

const (
	pathCreateLink         = "/sharing/create_shared_link_with_settings"
	pathListLinks          = "/sharing/list_shared_links"
	pathListFolder         = "/files/list_folder"
	pathListFolderContinue = "/files/list_folder/continue"

	maxErrorBody = 64 * 1024
	maxBody      = 16 * 1024 * 1024
)

// Options configures a Client.
type Options struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	RateLimit   ratelimit.Config
	MaxIdleConn int
}

// Client talks to the store's JSON RPC endpoints.
type Client struct {
	base string
	http *http.Client
}

// New builds a Client with bearer auth, tracing and client-side rate limiting.
func New(opts Options) *Client {
	hc := httpx.NewClient(opts.Timeout,
		httpx.WithBearerToken(opts.Token),
		httpx.WithTracing(),
		httpx.WithMaxIdleConnsPerHost(opts.MaxIdleConn),
	)
	hc.Transport = ratelimit.New(opts.RateLimit).Transport(hc.Transport)
	return NewWithHTTPClient(opts.BaseURL, hc)
}

// NewWithHTTPClient uses hc as is.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// CreateSharedLink creates a link for path. An existing link surfaces as an
// *Error tagged TagSharedLinkAlreadyExists.
func (c *Client) CreateSharedLink(ctx context.Context, path string, settings LinkSettings) (string, error) {
	var link SharedLink
	if err := c.call(ctx, "create_shared_link", pathCreateLink, createLinkRequest{Path: path, Settings: settings}, &link); err != nil {
		return "", err
	}
	if link.URL == "" {
		return "", &Error{Sentinel: ErrBadResponse, Operation: "create_shared_link", Summary: "empty url"}
	}
	return link.URL, nil
}

// ListSharedLinks returns the links that point directly at path.
func (c *Client) ListSharedLinks(ctx context.Context, path string) ([]SharedLink, error) {
	var resp listLinksResponse
	if err := c.call(ctx, "list_shared_links", pathListLinks, listLinksRequest{Path: path, DirectOnly: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Links, nil
}

// ListFolder returns the first page of the folder listing of path.
func (c *Client) ListFolder(ctx context.Context, path string) (*FolderPage, error) {
	var page FolderPage
	if err := c.call(ctx, "list_folder", pathListFolder, listFolderRequest{Path: path}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListFolderContinue fetches the page after cursor.
func (c *Client) ListFolderContinue(ctx context.Context, cursor string) (*FolderPage, error) {
	var page FolderPage
	if err := c.call(ctx, "list_folder_continue", pathListFolderContinue, listFolderContinueRequest{Cursor: cursor}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) loggerFor(ctx context.Context) zerolog.Logger {
	return log.WithComponentFromContext(ctx, "remote")
}

func (c *Client) call(ctx context.Context, op, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Sentinel: ErrTransport, Operation: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Sentinel: ErrTransport, Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	logger := c.loggerFor(ctx)
	logger.Debug().Str(log.FieldEndpoint, endpoint).Int(log.FieldStatus, resp.StatusCode).
		Dur("duration", time.Since(start)).Msg("store request")

	if resp.StatusCode != http.StatusOK {
		return c.classify(op, resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Sentinel: ErrTransport, Operation: op, Status: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn().Err(err).Str(log.FieldEvent, "remote.decode").Str("operation", op).Msg("failed to decode store response")
		return &Error{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) classify(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &Error{Sentinel: ErrRejected, Operation: op, Status: resp.StatusCode}

	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Summary != "" {
		e.Summary = eb.Summary
		e.Tag = eb.Error.Tag
	} else if s := strings.TrimSpace(string(data)); s != "" {
		e.Summary = truncate(s, 256)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		e.Sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		e.Sentinel = ErrTransport
	}
	return e
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
