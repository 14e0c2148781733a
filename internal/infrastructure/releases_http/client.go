package releases_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tfgate/tfgate/internal/domain"
)

// Client resolves the "latest" tool version against the release API.
type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: trimSlash(baseURL),
		hc:      &http.Client{Transport: tr, Timeout: timeout},
	}
}

type releaseDTO struct {
	TagName string `json:"tag_name"`
}

func repoFor(tool domain.ToolKind) string {
	if tool == domain.ToolTofu {
		return "opentofu/opentofu"
	}
	return "hashicorp/terraform"
}

func (c *Client) Latest(ctx context.Context, tool domain.ToolKind) (string, error) {
	var out string

	op := func() error {
		url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, repoFor(tool))

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if sec, _ := strconv.Atoi(ra); sec > 0 {
					select {
					case <-time.After(time.Duration(sec) * time.Second):
					case <-ctx.Done():
						return ctx.Err()
					}
					return fmt.Errorf("retry after due to 429")
				}
			}
			return fmt.Errorf("release api 429")
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("release api %s", resp.Status)
		}

		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("release api %s", resp.Status))
		}

		var rel releaseDTO
		if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
			return err
		}
		if rel.TagName == "" {
			return backoff.Permanent(fmt.Errorf("release api: empty tag name"))
		}

		out = strings.TrimPrefix(rel.TagName, "v")
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 300 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return out, nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
