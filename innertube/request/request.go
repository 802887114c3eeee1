package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/xeptore/innertune/cache"
	"github.com/xeptore/innertune/httputil"
	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/redact"
)

// Call is one upstream HTTP exchange. Calls sharing a non empty DedupKey
// are logically identical; uniqueness of keys across distinct requests is
// up to the caller.
type Call struct {
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
	DedupKey  string
	Cacheable bool
}

// Manager is the single point of upstream HTTP execution. For any key at
// most one network call is outstanding, and every caller joined to it gets
// the same bytes or the same error.
type Manager struct {
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache.Responses
	timeout time.Duration
	logger  zerolog.Logger

	mux    sync.Mutex
	flight singleflight.Group
}

// NewManager returns a manager issuing calls through client. timeout bounds
// a shared call independently of any single caller's context.
func NewManager(
	logger zerolog.Logger,
	client *http.Client,
	limiter *rate.Limiter,
	responses *cache.Responses,
	timeout time.Duration,
) *Manager {
	return &Manager{ //nolint:exhaustruct
		client:  client,
		limiter: limiter,
		cache:   responses,
		timeout: timeout,
		logger:  logger,
	}
}

func (m *Manager) Execute(ctx context.Context, call Call) ([]byte, error) {
	logger := m.logger.With().Str("dedup_key", call.DedupKey).Str("url", call.URL).Logger()

	if call.DedupKey == "" {
		return m.do(ctx, logger, call)
	}

	m.mux.Lock()
	if call.Cacheable {
		if b, ok := m.cache.Get(call.DedupKey); ok {
			m.mux.Unlock()
			logger.Trace().Msg("Serving cached response")
			return b, nil
		}
	}
	ch := m.flight.DoChan(call.DedupKey, func() (any, error) {
		// Detached so a joiner giving up does not fail the others.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()

		b, err := m.do(shared, logger, call)
		if nil != err {
			return nil, err
		}

		if call.Cacheable {
			m.mux.Lock()
			m.cache.Set(call.DedupKey, b)
			m.mux.Unlock()
		}

		return b, nil
	})
	m.mux.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if nil != res.Err {
			return nil, res.Err
		}
		if res.Shared {
			logger.Trace().Msg("Joined in-flight request")
		}

		b, ok := res.Val.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected in-flight result type %T", res.Val)
		}

		return b, nil
	}
}

func (m *Manager) do(ctx context.Context, logger zerolog.Logger, call Call) ([]byte, error) {
	if err := m.limiter.Wait(ctx); nil != err {
		return nil, apierr.FromTransport(fmt.Errorf("wait for rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, bytes.NewReader(call.Body))
	if nil != err {
		return nil, fmt.Errorf("create request: %v", err)
	}
	for k, vs := range call.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	logger.Trace().Interface("headers", redact.Headers(req.Header)).Msg("Issuing upstream request")

	resp, err := m.client.Do(req)
	if nil != err {
		logger.Debug().Err(err).Msg("Upstream request failed")
		return nil, apierr.FromTransport(err)
	}
	defer httputil.DrainAndClose(logger, resp.Body)

	if code := resp.StatusCode; code < 200 || code > 299 {
		logger.Debug().Int("status_code", code).Msg("Unexpected upstream status code")
		return nil, &apierr.HTTPStatusError{Code: code}
	}

	b, err := httputil.ReadResponseBody(resp)
	if nil != err {
		if errors.Is(err, httputil.ErrResponseTooLarge) {
			return nil, &apierr.InvalidResponseError{Reason: err.Error()}
		}

		return nil, apierr.FromTransport(err)
	}

	if httputil.LooksLikeHTML(b) {
		logger.Warn().Msg("Upstream served an HTML page instead of JSON")
		return nil, &apierr.InvalidResponseError{Reason: "consent or interstitial page"}
	}

	return b, nil
}

func (m *Manager) ClearCache() {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.cache.Clear()
}

func (m *Manager) Invalidate(key string) bool {
	m.mux.Lock()
	defer m.mux.Unlock()

	return m.cache.Delete(key)
}

func (m *Manager) InvalidatePrefix(prefix string) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	return m.cache.DeletePrefix(prefix)
}

func (m *Manager) SweepExpired() int {
	m.mux.Lock()
	defer m.mux.Unlock()

	return m.cache.SweepExpired()
}
