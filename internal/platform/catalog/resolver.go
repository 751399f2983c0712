package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// StreamResolver maps a recording's canonical media URL to a streamable URL.
// Many podcast catalogs publish redirect/tracking URLs that ffmpeg cannot seek
// into; the resolver asks an upstream catalog service for the real stream.
// Resolution failures are independent of pipeline success; callers may fall
// back to the canonical URL or skip clip rendering entirely.
type StreamResolver interface {
	ResolveStreamURL(ctx context.Context, mediaURL string) (string, error)
}

type Options struct {
	// BaseURL of the catalog resolution endpoint. Empty means identity
	// resolution: the canonical media URL is returned unchanged.
	BaseURL string
	// CacheTTL bounds how long resolved URLs are cached in redis. Defaults to 6h.
	CacheTTL time.Duration
	// Timeout bounds a single upstream lookup. Defaults to 10s.
	Timeout time.Duration
}

type resolver struct {
	log   *logger.Logger
	opts  Options
	http  *http.Client
	cache *redis.Client
}

// NewResolver builds a StreamResolver. cache may be nil; lookups then always
// hit the upstream service.
func NewResolver(log *logger.Logger, cache *redis.Client, opts Options) StreamResolver {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 6 * time.Hour
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &resolver{
		log:   log.With("service", "StreamResolver"),
		opts:  opts,
		http:  &http.Client{Timeout: opts.Timeout},
		cache: cache,
	}
}

func (r *resolver) ResolveStreamURL(ctx context.Context, mediaURL string) (string, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return "", fmt.Errorf("mediaURL required")
	}
	if strings.TrimSpace(r.opts.BaseURL) == "" {
		return mediaURL, nil
	}

	key := cacheKey(mediaURL)
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, key).Result(); err == nil && strings.TrimSpace(cached) != "" {
			return cached, nil
		}
	}

	resolved, err := r.lookup(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, resolved, r.opts.CacheTTL).Err(); err != nil {
			r.log.Warn("stream url cache write failed", "error", err.Error())
		}
	}
	return resolved, nil
}

type resolveResponse struct {
	StreamURL string `json:"stream_url"`
}

func (r *resolver) lookup(ctx context.Context, mediaURL string) (string, error) {
	endpoint := strings.TrimRight(r.opts.BaseURL, "/") + "/resolve?url=" + url.QueryEscape(mediaURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("catalog resolve request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("catalog resolve http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out resolveResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("catalog resolve decode: %w", err)
	}
	if strings.TrimSpace(out.StreamURL) == "" {
		return "", fmt.Errorf("catalog resolve returned empty stream_url")
	}
	return out.StreamURL, nil
}

func cacheKey(mediaURL string) string {
	h := sha256.Sum256([]byte(mediaURL))
	return "podquote:stream_url:" + hex.EncodeToString(h[:])[:24]
}
