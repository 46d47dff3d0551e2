// Package breeds checks cat breed names against TheCatAPI breed list.
//
// The registry is advisory: callers treat any error from Check as "unknown"
// and proceed. The list is cached, concurrent misses share one fetch, and a
// circuit breaker keeps a failing registry from adding its timeout to every
// request.
package breeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stake-plus/spycat-agency/src/cache"
	"github.com/stake-plus/spycat-agency/src/webclient"
)

const (
	DefaultURL      = "https://api.thecatapi.com/v1/breeds"
	defaultTimeout  = 3 * time.Second
	defaultCacheTTL = time.Hour
	cacheKey        = "breeds:names"
)

// Breed is the subset of TheCatAPI's breed object we use.
type Breed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Options struct {
	URL         string
	Timeout     time.Duration
	Cache       cache.Cache
	CacheTTL    time.Duration
	MaxFailures int
	Cooldown    time.Duration
}

type Client struct {
	url      string
	timeout  time.Duration
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	breaker  *Breaker
	group    singleflight.Group
}

func NewClient(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	return &Client{
		url:      opts.URL,
		timeout:  opts.Timeout,
		http:     webclient.NewDefault(opts.Timeout),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		breaker:  NewBreaker(opts.MaxFailures, opts.Cooldown),
	}
}

// Check reports whether breed names a registry breed, ignoring case and
// surrounding whitespace.
func (c *Client) Check(ctx context.Context, breed string) (bool, error) {
	names, err := c.Names(ctx)
	if err != nil {
		return false, err
	}
	want := strings.TrimSpace(breed)
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return true, nil
		}
	}
	return false, nil
}

// Names returns the registry's breed names.
func (c *Client) Names(ctx context.Context) ([]string, error) {
	if names, ok := c.cached(ctx); ok {
		return names, nil
	}

	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		names, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(context.WithoutCancel(ctx), names)
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *Client) fetch(ctx context.Context) ([]string, error) {
	// The fetch is shared by every waiter, so it must not die with the
	// request that happened to start it.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	var list []Breed
	err := c.breaker.Execute(func() error {
		return webclient.GetJSON(fetchCtx, c.http, c.url, 1, 0, &list)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch breeds: %w", err)
	}

	names := make([]string, 0, len(list))
	for _, b := range list {
		if n := strings.TrimSpace(b.Name); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, errors.New("fetch breeds: registry returned no breeds")
	}
	return names, nil
}

func (c *Client) cached(ctx context.Context) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	b, ok, err := c.cache.Get(ctx, cacheKey)
	if err != nil || !ok {
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil || len(names) == 0 {
		return nil, false
	}
	return names, true
}

func (c *Client) store(ctx context.Context, names []string) {
	if c.cache == nil {
		return
	}
	b, err := json.Marshal(names)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, cacheKey, b, c.cacheTTL)
}
