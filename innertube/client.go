// Package innertube wires the protocol client together: one request
// manager shared by every service, personas carrying a shared visitor
// token, and a retry policy applied at this boundary only.
package innertube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/innertune/cache"
	"github.com/xeptore/innertune/config"
	"github.com/xeptore/innertune/httputil"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/request"
	"github.com/xeptore/innertune/innertube/service"
	"github.com/xeptore/innertune/innertube/stream"
	"github.com/xeptore/innertune/innertube/token"
	"github.com/xeptore/innertune/innertube/types"
	"github.com/xeptore/innertune/ratelimit"
	"github.com/xeptore/innertune/redact"
	"github.com/xeptore/innertune/retrypolicy"
)

type Client struct {
	logger    zerolog.Logger
	personas  *persona.Provider
	storage   *token.Storage
	refresher *token.Refresher
	responses *cache.Responses
	manager   *request.Manager
	retry     retrypolicy.Policy
	// pinned is set when the visitor token comes from configuration and
	// must not be replaced by background refreshes.
	pinned bool

	search *service.Search
	browse *service.Browse
	artist *service.Artist
	player *service.Player
}

func NewClient(ctx context.Context, logger zerolog.Logger, conf *config.Config) (*Client, error) {
	httpClient, err := httputil.NewClient(conf.Upstream)
	if nil != err {
		return nil, fmt.Errorf("create http client: %v", err)
	}

	storage, err := token.NewStorage(conf.Token.StoragePath)
	if nil != err {
		return nil, fmt.Errorf("open token storage: %v", err)
	}

	personas := persona.NewProvider(conf.Upstream)
	refresher := token.NewRefresher(httpClient, personas, storage, conf.Upstream.PublicPageURL, conf.Token.Cooldown.Duration)
	source := refresher.Load(ctx, logger, conf.Token.VisitorData)
	logger.Debug().
		Str("source", string(source)).
		Str("visitor_data", redact.String(personas.VisitorData())).
		Msg("Visitor token loaded")

	responses := cache.NewResponses(conf.Cache)
	manager := request.NewManager(
		logger,
		httpClient,
		ratelimit.NewUpstream(conf.Upstream.RateLimit),
		responses,
		conf.Upstream.Timeouts.Resource.Duration,
	)

	search := service.NewSearch(logger, manager, personas)
	player, err := service.NewPlayer(logger, manager, personas, search, conf.Stream, stream.NoPoToken{})
	if nil != err {
		responses.Stop()
		return nil, errors.Join(fmt.Errorf("create player service: %v", err), storage.Close())
	}

	return &Client{
		logger:    logger,
		personas:  personas,
		storage:   storage,
		refresher: refresher,
		responses: responses,
		manager:   manager,
		retry:     retrypolicy.FromConfig(conf.Retry),
		pinned:    source == token.SourceConfig,
		search:    search,
		browse:    service.NewBrowse(logger, manager, personas),
		artist:    service.NewArtist(logger, manager, personas),
		player:    player,
	}, nil
}

func (c *Client) Close() error {
	c.responses.Stop()

	if err := c.storage.Close(); nil != err {
		return fmt.Errorf("close token storage: %v", err)
	}

	return nil
}

func run[T any](ctx context.Context, c *Client, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	logger := c.logger.With().Str("op", op).Logger()

	if !c.pinned {
		c.refresher.Refresh(ctx, logger)
	}

	return retrypolicy.Do(ctx, logger, c.retry, fn)
}

func (c *Client) Search(ctx context.Context, query, params string) (types.SearchResults, error) {
	return run(ctx, c, "search", func(ctx context.Context) (types.SearchResults, error) {
		return c.search.Search(ctx, query, params)
	})
}

func (c *Client) SearchSongs(ctx context.Context, query string) (types.SearchResults, error) {
	return run(ctx, c, "search_songs", func(ctx context.Context) (types.SearchResults, error) {
		return c.search.Songs(ctx, query)
	})
}

func (c *Client) Home(ctx context.Context) (types.HomePage, error) {
	return run(ctx, c, "home", c.browse.Home)
}

func (c *Client) HomeWithChip(ctx context.Context, params string) (types.HomePage, error) {
	return run(ctx, c, "home_with_chip", func(ctx context.Context) (types.HomePage, error) {
		return c.browse.HomeWithChip(ctx, params)
	})
}

func (c *Client) HomeContinuation(ctx context.Context, continuation string) (types.HomePage, error) {
	return run(ctx, c, "home_continuation", func(ctx context.Context) (types.HomePage, error) {
		return c.browse.HomeContinuation(ctx, continuation)
	})
}

// InvalidateHome forces the next home and continuation calls to refetch.
func (c *Client) InvalidateHome() int {
	return c.browse.InvalidateHome()
}

func (c *Client) Trending(ctx context.Context) ([]types.SearchResult, error) {
	return run(ctx, c, "trending", c.browse.Trending)
}

func (c *Client) Artist(ctx context.Context, id string) (types.ArtistDetail, error) {
	return run(ctx, c, "artist", func(ctx context.Context) (types.ArtistDetail, error) {
		return c.artist.Artist(ctx, id)
	})
}

func (c *Client) ArtistItems(ctx context.Context, id, params string) ([]types.ArtistItem, error) {
	return run(ctx, c, "artist_items", func(ctx context.Context) ([]types.ArtistItem, error) {
		return c.artist.SectionItems(ctx, id, params)
	})
}

func (c *Client) Queue(ctx context.Context, videoID, playlistID string) ([]types.QueueSong, error) {
	return run(ctx, c, "queue", func(ctx context.Context) ([]types.QueueSong, error) {
		return c.player.Queue(ctx, videoID, playlistID)
	})
}

func (c *Client) AlbumFor(ctx context.Context, videoID, title, artist string) (types.AlbumRef, error) {
	return run(ctx, c, "album_for", func(ctx context.Context) (types.AlbumRef, error) {
		return c.player.AlbumFor(ctx, videoID, title, artist)
	})
}

// Playback resolves a stream URL for videoID. Exhausting every persona is
// terminal and not retried.
func (c *Client) Playback(ctx context.Context, videoID string) (types.PlaybackInfo, error) {
	return run(ctx, c, "playback", func(ctx context.Context) (types.PlaybackInfo, error) {
		return c.player.Playback(ctx, videoID)
	})
}

// RefreshVisitorToken scrapes a new visitor token unless one was attempted
// within the cooldown, and reports whether it tried.
func (c *Client) RefreshVisitorToken(ctx context.Context) bool {
	return c.refresher.Refresh(ctx, c.logger)
}

func (c *Client) VisitorData() string {
	return c.personas.VisitorData()
}

func (c *Client) VisitorDataRefreshedAt() time.Time {
	return c.refresher.RefreshedAt()
}

func (c *Client) ClearCache() {
	c.manager.ClearCache()
}

// SweepCache drops expired responses and returns how many were dropped.
func (c *Client) SweepCache() int {
	return c.manager.SweepExpired()
}
