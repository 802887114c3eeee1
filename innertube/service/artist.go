package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/parse"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/types"
)

type Artist struct {
	caller
}

func NewArtist(logger zerolog.Logger, requests Requester, personas *persona.Provider) *Artist {
	return &Artist{caller{requests: requests, personas: personas, logger: logger}}
}

func (a *Artist) Artist(ctx context.Context, id string) (types.ArtistDetail, error) {
	b, err := a.post(ctx, post{ //nolint:exhaustruct
		persona:   a.personas.WebRemix(),
		endpoint:  "browse",
		fields:    map[string]any{"browseId": id},
		key:       key("artist", id),
		cacheable: true,
	})
	if nil != err {
		return types.ArtistDetail{}, fmt.Errorf("get artist %s: %w", id, err) //nolint:exhaustruct
	}

	artist, err := parse.ArtistDetail(b, id)
	if nil != err {
		return types.ArtistDetail{}, fmt.Errorf("get artist %s: %w", id, err) //nolint:exhaustruct
	}

	if len(artist.Sections) == 0 {
		// Lenient: may also mean the page layout changed.
		a.logger.Warn().Str("artist_id", id).Msg("Artist page has no recognizable sections")
	}

	return artist, nil
}

// SectionItems returns the full item list behind an artist shelf. Some
// shelves link to playlists, so a response without browse results is
// reinterpreted as a playlist before giving up.
func (a *Artist) SectionItems(ctx context.Context, id, params string) ([]types.ArtistItem, error) {
	fields := map[string]any{"browseId": id}
	if len(params) > 0 {
		fields["params"] = params
	}

	b, err := a.post(ctx, post{ //nolint:exhaustruct
		persona:   a.personas.WebRemix(),
		endpoint:  "browse",
		fields:    fields,
		key:       key("artist_items", id, params),
		cacheable: true,
	})
	if nil != err {
		return nil, fmt.Errorf("get artist section items %s: %w", id, err)
	}

	items, err := parse.ArtistSectionItems(b)
	if nil == err {
		return items, nil
	}

	var parseErr *apierr.ParseError
	if !errors.As(err, &parseErr) {
		return nil, fmt.Errorf("get artist section items %s: %w", id, err)
	}

	items, playlistErr := parse.PlaylistItems(b)
	if nil != playlistErr {
		return nil, fmt.Errorf("get artist section items %s: %w", id, errors.Join(err, playlistErr))
	}

	a.logger.Debug().Str("artist_id", id).Msg("Section items parsed as a playlist")

	return items, nil
}
