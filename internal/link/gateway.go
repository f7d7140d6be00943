// Package link turns store paths into public gateway URLs.
package link

import (
	"fmt"
	"net/url"
	"strings"
)

// Gateway rewrites raw shared links into gateway tunnel URLs.
type Gateway struct {
	BaseURL string
}

// Wrap returns <base>/tunnel?url=<escaped raw link with raw=1>.
func (g Gateway) Wrap(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse shared link %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("shared link %q is not absolute", raw)
	}
	q := u.Query()
	q.Set("raw", "1")
	u.RawQuery = q.Encode()
	return strings.TrimRight(g.BaseURL, "/") + "/tunnel?url=" + url.QueryEscape(u.String()), nil
}
