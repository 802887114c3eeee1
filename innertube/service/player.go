package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/xeptore/innertune/config"
	"github.com/xeptore/innertune/innertube/parse"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/stream"
	"github.com/xeptore/innertune/innertube/types"
)

var ErrAlbumNotFound = errors.New("album not found")

type Player struct {
	caller
	search *Search
	engine *stream.Engine
}

// NewPlayer returns a player resolving streams through the personas named
// in conf, in order.
func NewPlayer(
	logger zerolog.Logger,
	requests Requester,
	personas *persona.Provider,
	search *Search,
	conf config.Stream,
	poTokens stream.PoTokenProvider,
) (*Player, error) {
	chain := make([]persona.Persona, 0, len(conf.Personas))
	for _, name := range conf.Personas {
		p, ok := personas.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown stream persona: %s", name)
		}
		chain = append(chain, p)
	}

	p := &Player{ //nolint:exhaustruct
		caller: caller{requests: requests, personas: personas, logger: logger},
		search: search,
	}
	p.engine = stream.NewEngine(p, chain, conf.Containers, poTokens)

	return p, nil
}

// Queue returns the play queue the upstream builds around videoID.
func (p *Player) Queue(ctx context.Context, videoID, playlistID string) ([]types.QueueSong, error) {
	fields := map[string]any{
		"videoId":                       videoID,
		"isAudioOnly":                   true,
		"enablePersistentPlaylistPanel": true,
		"tunerSettingValue":             "AUTOMIX_SETTING_NORMAL",
	}
	if len(playlistID) > 0 {
		fields["playlistId"] = playlistID
	}

	b, err := p.post(ctx, post{ //nolint:exhaustruct
		persona:   p.personas.WebRemix(),
		endpoint:  "next",
		fields:    fields,
		key:       key("next", videoID, playlistID),
		cacheable: true,
	})
	if nil != err {
		return nil, fmt.Errorf("get queue of %s: %w", videoID, err)
	}

	songs, err := parse.Queue(b)
	if nil != err {
		return nil, fmt.Errorf("get queue of %s: %w", videoID, err)
	}

	return songs, nil
}

// AlbumFor finds the album a song belongs to. The queue is tried first; it
// only knows the album when the song is part of an album's track list.
// Otherwise the song is searched by title and artist. Album ids only come
// from runs tagged as album pages or carrying the album id prefix.
func (p *Player) AlbumFor(ctx context.Context, videoID, title, artist string) (types.AlbumRef, error) {
	logger := p.logger.With().Str("video_id", videoID).Logger()

	songs, err := p.Queue(ctx, videoID, "")
	switch {
	case nil == err:
		if s, ok := lo.Find(songs, func(s types.QueueSong) bool {
			return s.VideoID == videoID && len(s.AlbumID) > 0
		}); ok {
			return types.AlbumRef{ID: s.AlbumID, Title: s.Album, Source: types.AlbumSourceQueue}, nil
		}
	case errors.Is(err, context.Canceled):
		return types.AlbumRef{}, err //nolint:exhaustruct
	default:
		logger.Debug().Err(err).Msg("Queue lookup failed, falling back to search")
	}

	query := strings.TrimSpace(StripTitle(title) + " " + artist)
	res, err := p.search.Songs(ctx, query)
	if nil != err {
		return types.AlbumRef{}, fmt.Errorf("find album of %s: %w", videoID, err) //nolint:exhaustruct
	}

	want := NormalizeTitle(title)
	candidates := append(append([]types.SearchResult{}, res.TopResults...), res.Results...)
	match, ok := lo.Find(candidates, func(r types.SearchResult) bool {
		return r.Type == types.ContentTypeSong && len(r.AlbumID) > 0 && NormalizeTitle(r.Name) == want
	})
	if !ok {
		return types.AlbumRef{}, fmt.Errorf("find album of %s: %w", videoID, ErrAlbumNotFound) //nolint:exhaustruct
	}

	return types.AlbumRef{ID: match.AlbumID, Title: match.Album, Source: types.AlbumSourceSearch}, nil
}

// Playback resolves a playable audio stream of videoID.
func (p *Player) Playback(ctx context.Context, videoID string) (types.PlaybackInfo, error) {
	return p.engine.Resolve(ctx, p.logger, videoID)
}

// FetchPlayer issues a player request as persona. Responses are never
// cached: stream URLs are bound to the persona and expire.
func (p *Player) FetchPlayer(ctx context.Context, pp persona.Persona, videoID, poToken string) ([]byte, error) {
	fields := map[string]any{
		"videoId":        videoID,
		"contentCheckOk": true,
		"racyCheckOk":    true,
		"playbackContext": map[string]any{
			"contentPlaybackContext": map[string]any{"html5Preference": "HTML5_PREF_WANTS"},
		},
	}
	if len(poToken) > 0 {
		fields["serviceIntegrityDimensions"] = map[string]any{"poToken": poToken}
	}

	b, err := p.post(ctx, post{ //nolint:exhaustruct
		persona:   pp,
		endpoint:  "player",
		fields:    fields,
		key:       key("playback", videoID, string(pp.Name)),
		cacheable: false,
	})
	if nil != err {
		return nil, fmt.Errorf("fetch player of %s as %s: %w", videoID, pp.Name, err)
	}

	return b, nil
}
