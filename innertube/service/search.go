package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xeptore/innertune/innertube/parse"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/types"
)

// SongsParams restricts search results to songs.
const SongsParams = "EgWKAQIIAWoKEAkQBRAKEAMQBA%3D%3D"

type Search struct {
	caller
}

func NewSearch(logger zerolog.Logger, requests Requester, personas *persona.Provider) *Search {
	return &Search{caller{requests: requests, personas: personas, logger: logger}}
}

func (s *Search) Search(ctx context.Context, query, params string) (types.SearchResults, error) {
	fields := map[string]any{"query": query}
	if len(params) > 0 {
		fields["params"] = params
	}

	b, err := s.post(ctx, post{ //nolint:exhaustruct
		persona:   s.personas.WebRemix(),
		endpoint:  "search",
		fields:    fields,
		key:       key("search", query, params),
		cacheable: true,
	})
	if nil != err {
		return types.SearchResults{}, fmt.Errorf("search %q: %w", query, err) //nolint:exhaustruct
	}

	res, err := parse.SearchResults(b)
	if nil != err {
		return types.SearchResults{}, fmt.Errorf("search %q: %w", query, err) //nolint:exhaustruct
	}

	return res, nil
}

func (s *Search) Songs(ctx context.Context, query string) (types.SearchResults, error) {
	return s.Search(ctx, query, SongsParams)
}
