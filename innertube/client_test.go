package innertube_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/innertune/config"
	"github.com/xeptore/innertune/innertube"
	"github.com/xeptore/innertune/innertube/apierr"
)

const (
	refreshedToken = "CgtSZWZyZXNoZWQ%3D"
	searchBody     = `{"contents":{"sectionListRenderer":{"contents":[{"musicShelfRenderer":{"contents":[{"musicResponsiveListItemRenderer":{"flexColumns":[{"musicResponsiveListItemFlexColumnRenderer":{"text":{"runs":[{"text":"Get Lucky"}]}}}],"playlistItemData":{"videoId":"5NV6Rdv1a3I"}}}]}}]}}}`
)

type upstream struct {
	srv        *httptest.Server
	pageHits   atomic.Int32
	searchHits atomic.Int32

	mux           sync.Mutex
	visitorHeader []string
	searchStatus  []int
}

// newUpstream serves the public page and the search endpoint. Search
// answers with statuses in order, then 200 once they run out.
func newUpstream(t *testing.T, searchStatus ...int) *upstream {
	t.Helper()

	u := &upstream{searchStatus: searchStatus} //nolint:exhaustruct
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		u.pageHits.Add(1)
		_, _ = io.WriteString(w, `<html><script>ytcfg.set({"VISITOR_DATA":"`+refreshedToken+`"});</script></html>`)
	})
	mux.HandleFunc("/youtubei/v1/search", func(w http.ResponseWriter, r *http.Request) {
		u.searchHits.Add(1)

		u.mux.Lock()
		u.visitorHeader = append(u.visitorHeader, r.Header.Get("X-Goog-Visitor-Id"))
		code := http.StatusOK
		if len(u.searchStatus) > 0 {
			code, u.searchStatus = u.searchStatus[0], u.searchStatus[1:]
		}
		u.mux.Unlock()

		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		_, _ = io.WriteString(w, searchBody)
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)

	return u
}

func newConfig(t *testing.T, u *upstream) *config.Config {
	t.Helper()

	conf := config.Default()
	conf.Upstream.MusicBaseURL = u.srv.URL + "/youtubei/v1"
	conf.Upstream.PlayerBaseURL = u.srv.URL + "/youtubei/v1"
	conf.Upstream.PublicPageURL = u.srv.URL + "/"
	conf.Upstream.RateLimit.Every.Duration = time.Millisecond
	conf.Token.StoragePath = filepath.Join(t.TempDir(), "innertune.db")
	conf.Retry.InitialDelay.Duration = 10 * time.Millisecond

	return conf
}

func newClient(t *testing.T, conf *config.Config) *innertube.Client {
	t.Helper()

	c, err := innertube.NewClient(context.Background(), zerolog.Nop(), conf)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	return c
}

func TestClientRefreshesTokenOnceBeforeCalls(t *testing.T) {
	t.Parallel()

	u := newUpstream(t)
	c := newClient(t, newConfig(t, u))

	res, err := c.Search(context.Background(), "get lucky", "")
	require.NoError(t, err)
	require.Equal(t, "5NV6Rdv1a3I", res.Results[0].ID)

	_, err = c.SearchSongs(context.Background(), "get lucky")
	require.NoError(t, err)

	require.Equal(t, int32(1), u.pageHits.Load())
	require.Equal(t, refreshedToken, c.VisitorData())
	require.False(t, c.VisitorDataRefreshedAt().IsZero())
	require.Equal(t, []string{refreshedToken, refreshedToken}, u.visitorHeader)
	require.False(t, c.RefreshVisitorToken(context.Background()), "refresh within the cooldown is a no-op")
}

func TestClientPersistsRefreshedToken(t *testing.T) {
	t.Parallel()

	u := newUpstream(t)
	conf := newConfig(t, u)

	first, err := innertube.NewClient(context.Background(), zerolog.Nop(), conf)
	require.NoError(t, err)
	require.True(t, first.RefreshVisitorToken(context.Background()))
	require.NoError(t, first.Close())

	second := newClient(t, conf)
	require.Equal(t, refreshedToken, second.VisitorData())

	_, err = second.Search(context.Background(), "get lucky", "")
	require.NoError(t, err)
	require.Equal(t, int32(1), u.pageHits.Load(), "persisted fresh token must not be refreshed again")
}

func TestClientConfiguredTokenIsPinned(t *testing.T) {
	t.Parallel()

	u := newUpstream(t)
	conf := newConfig(t, u)
	conf.Token.VisitorData = "CgtDb25maWd1cmVk"
	c := newClient(t, conf)

	_, err := c.Search(context.Background(), "get lucky", "")
	require.NoError(t, err)
	require.Zero(t, u.pageHits.Load())
	require.Equal(t, []string{"CgtDb25maWd1cmVk"}, u.visitorHeader)
}

func TestClientRetriesRetryableFailures(t *testing.T) {
	t.Parallel()

	u := newUpstream(t, http.StatusServiceUnavailable, http.StatusTooManyRequests)
	c := newClient(t, newConfig(t, u))

	start := time.Now()
	_, err := c.Search(context.Background(), "get lucky", "")
	require.NoError(t, err)
	require.Equal(t, int32(3), u.searchHits.Load())
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	u := newUpstream(t, http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway)
	c := newClient(t, newConfig(t, u))

	_, err := c.Search(context.Background(), "get lucky", "")
	require.Error(t, err)
	require.Equal(t, int32(3), u.searchHits.Load())
	require.Equal(t, apierr.MsgServer, apierr.UserMessage(err))
}

func TestClientDoesNotRetryTerminalFailures(t *testing.T) {
	t.Parallel()

	u := newUpstream(t, http.StatusNotFound)
	c := newClient(t, newConfig(t, u))

	_, err := c.Search(context.Background(), "get lucky", "")
	require.Error(t, err)
	require.Equal(t, int32(1), u.searchHits.Load())
	require.Equal(t, apierr.MsgNotFound, apierr.UserMessage(err))
}

func TestClientClearCache(t *testing.T) {
	t.Parallel()

	u := newUpstream(t)
	c := newClient(t, newConfig(t, u))
	ctx := context.Background()

	_, err := c.Search(ctx, "get lucky", "")
	require.NoError(t, err)
	_, err = c.Search(ctx, "get lucky", "")
	require.NoError(t, err)
	require.Equal(t, int32(1), u.searchHits.Load())

	require.Zero(t, c.SweepCache())
	c.ClearCache()

	_, err = c.Search(ctx, "get lucky", "")
	require.NoError(t, err)
	require.Equal(t, int32(2), u.searchHits.Load())
}
