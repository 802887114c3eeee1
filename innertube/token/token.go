package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/xeptore/innertune/httputil"
	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/must"
	"github.com/xeptore/innertune/ratelimit"
	"github.com/xeptore/innertune/redact"
)

// Patterns are tried in order against the public page; the first capture
// wins.
var patterns = must.Regexps(
	`"VISITOR_DATA":"([^"]+)"`,
	`"visitorData":"([^"]+)"`,
	`visitorData%22%3A%22(.+?)%22`,
)

var ErrTokenNotFound = errors.New("visitor token not found in page")

type Source string

const (
	SourceConfig    Source = "config"
	SourceStorage   Source = "storage"
	SourceDefault   Source = "default"
	SourceRefreshed Source = "refreshed"
)

const (
	scrapeAttempts        = 3
	scrapeInitialInterval = 500 * time.Millisecond
)

type Refresher struct {
	client      *http.Client
	provider    *persona.Provider
	storage     *Storage
	pageURL     string
	interval    time.Duration
	cooldown    *ratelimit.Cooldown
	refreshedAt atomic.Pointer[time.Time]
}

// NewRefresher returns a refresher that scrapes pageURL at most once per
// cooldown. storage may be nil, in which case nothing is persisted.
func NewRefresher(
	client *http.Client,
	provider *persona.Provider,
	storage *Storage,
	pageURL string,
	cooldown time.Duration,
) *Refresher {
	r := &Refresher{ //nolint:exhaustruct
		client:   client,
		provider: provider,
		storage:  storage,
		pageURL:  pageURL,
		interval: cooldown,
		cooldown: ratelimit.NewCooldown(cooldown),
	}
	r.refreshedAt.Store(&time.Time{})

	return r
}

func (r *Refresher) RefreshedAt() time.Time {
	return *r.refreshedAt.Load()
}

// Load seeds the shared token: override first, then the persisted token,
// then the built in default.
func (r *Refresher) Load(ctx context.Context, logger zerolog.Logger, override string) Source {
	if len(override) > 0 {
		r.provider.SetVisitorData(override)
		return SourceConfig
	}

	if nil != r.storage {
		stored, err := r.storage.Load(ctx)
		if nil != err {
			logger.Warn().Err(err).Msg("Failed to load persisted visitor token")
		} else if nil != stored {
			r.provider.SetVisitorData(stored.Token)
			r.refreshedAt.Store(&stored.RefreshedAt)
			return SourceStorage
		}
	}

	r.provider.SetVisitorData(persona.DefaultVisitorData)

	return SourceDefault
}

// Refresh scrapes a fresh visitor token unless one was attempted within the
// cooldown. Failures are logged and the previous token stays in use. It
// reports whether a scrape was attempted. A done ctx leaves the cooldown
// untouched.
func (r *Refresher) Refresh(ctx context.Context, logger zerolog.Logger) bool {
	if nil != ctx.Err() {
		return false
	}

	if last := r.RefreshedAt(); !last.IsZero() && time.Since(last) < r.interval {
		return false
	}

	return r.cooldown.Do(func() {
		now := time.Now()
		r.refreshedAt.Store(&now)

		tok, err := r.scrape(ctx, logger)
		if nil != err {
			logger.Warn().Err(err).Msg("Failed to refresh visitor token, keeping previous one")
			return
		}

		r.provider.SetVisitorData(tok)
		logger.Debug().Str("visitor_data", redact.String(tok)).Msg("Visitor token refreshed")

		if nil != r.storage {
			if err := r.storage.Store(ctx, Stored{Token: tok, RefreshedAt: now}); nil != err {
				logger.Warn().Err(err).Msg("Failed to persist visitor token")
			}
		}
	})
}

func (r *Refresher) scrape(ctx context.Context, logger zerolog.Logger) (string, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(scrapeInitialInterval),
				backoff.WithMaxInterval(5*time.Second),
			),
			scrapeAttempts-1,
		),
		ctx,
	)

	tok, err := backoff.RetryWithData(func() (string, error) {
		page, err := r.fetchPage(ctx, logger)
		if nil != err {
			if apierr.IsRetryable(err) {
				logger.Debug().Err(err).Msg("Retrying visitor token page fetch")
				return "", err
			}

			return "", backoff.Permanent(err)
		}

		tok, ok := Extract(page)
		if !ok {
			return "", backoff.Permanent(ErrTokenNotFound)
		}

		return tok, nil
	}, b)
	if nil != err {
		return "", fmt.Errorf("scrape visitor token: %w", err)
	}

	return tok, nil
}

func (r *Refresher) fetchPage(ctx context.Context, logger zerolog.Logger) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.pageURL, nil)
	if nil != err {
		return nil, fmt.Errorf("create page request: %v", err)
	}

	web := r.provider.WebRemix()
	req.Header.Set("User-Agent", web.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if nil != err {
		return nil, apierr.FromTransport(err)
	}
	defer httputil.DrainAndClose(logger, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierr.HTTPStatusError{Code: resp.StatusCode}
	}

	body, err := httputil.ReadResponseBody(resp)
	if nil != err {
		if errors.Is(err, httputil.ErrResponseTooLarge) {
			return nil, &apierr.InvalidResponseError{Reason: err.Error()}
		}

		return nil, apierr.FromTransport(err)
	}

	return body, nil
}

// Extract returns the first visitor token any pattern captures from page.
func Extract(page []byte) (string, bool) {
	for _, p := range patterns {
		if m := p.FindSubmatch(page); len(m) == 2 && len(m[1]) > 0 {
			return string(m[1]), true
		}
	}

	return "", false
}
