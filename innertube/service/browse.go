package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/innertune/innertube/parse"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/types"
	"github.com/xeptore/innertune/result"
)

const (
	BrowseIDHome    = "FEmusic_home"
	BrowseIDExplore = "FEmusic_explore"
	BrowseIDCharts  = "FEmusic_charts"

	homeKeyPrefix         = "browse_" + BrowseIDHome
	continuationKeyPrefix = "browse_continuation"
)

// trendingKeywords are matched in order against lower cased section titles.
var trendingKeywords = []string{"new", "trend", "top", "popular"}

type Browse struct {
	caller
}

func NewBrowse(logger zerolog.Logger, requests Requester, personas *persona.Provider) *Browse {
	return &Browse{caller{requests: requests, personas: personas, logger: logger}}
}

func (b *Browse) browse(ctx context.Context, browseID, params string) (types.HomePage, error) {
	fields := map[string]any{"browseId": browseID}
	if len(params) > 0 {
		fields["params"] = params
	}

	body, err := b.post(ctx, post{ //nolint:exhaustruct
		persona:   b.personas.WebRemix(),
		endpoint:  "browse",
		fields:    fields,
		key:       key("browse", browseID, params),
		cacheable: true,
	})
	if nil != err {
		return types.HomePage{}, fmt.Errorf("browse %s: %w", browseID, err) //nolint:exhaustruct
	}

	page, err := parse.HomePage(body)
	if nil != err {
		return types.HomePage{}, fmt.Errorf("browse %s: %w", browseID, err) //nolint:exhaustruct
	}

	return page, nil
}

func (b *Browse) Home(ctx context.Context) (types.HomePage, error) {
	return b.browse(ctx, BrowseIDHome, "")
}

// HomeWithChip returns the home page filtered by the chip carrying params.
func (b *Browse) HomeWithChip(ctx context.Context, params string) (types.HomePage, error) {
	return b.browse(ctx, BrowseIDHome, params)
}

// HomeContinuation fetches the next page of home sections.
func (b *Browse) HomeContinuation(ctx context.Context, token string) (types.HomePage, error) {
	escaped := url.QueryEscape(token)
	body, err := b.post(ctx, post{ //nolint:exhaustruct
		persona:   b.personas.WebRemix(),
		endpoint:  "browse",
		query:     "ctoken=" + escaped + "&continuation=" + escaped + "&type=next",
		fields:    map[string]any{},
		key:       key(continuationKeyPrefix, token),
		cacheable: true,
	})
	if nil != err {
		return types.HomePage{}, fmt.Errorf("browse home continuation: %w", err) //nolint:exhaustruct
	}

	page, err := parse.HomeContinuation(body)
	if nil != err {
		return types.HomePage{}, fmt.Errorf("browse home continuation: %w", err) //nolint:exhaustruct
	}

	return page, nil
}

// InvalidateHome drops every cached home page and continuation, so the
// next call fetches fresh paged data.
func (b *Browse) InvalidateHome() int {
	return b.requests.InvalidatePrefix(homeKeyPrefix) + b.requests.InvalidatePrefix(continuationKeyPrefix)
}

// Trending fetches the explore and charts pages concurrently and picks the
// best trending section out of both. A failing page is tolerated as long
// as the other one loads.
func (b *Browse) Trending(ctx context.Context) ([]types.SearchResult, error) {
	var (
		g       errgroup.Group
		explore result.Of[types.HomePage]
		charts  result.Of[types.HomePage]
	)
	g.Go(func() error {
		explore = result.From[types.HomePage](b.browse(ctx, BrowseIDExplore, ""))
		return nil
	})
	g.Go(func() error {
		charts = result.From[types.HomePage](b.browse(ctx, BrowseIDCharts, ""))
		return nil
	})
	if err := g.Wait(); nil != err {
		return nil, err
	}

	if !explore.IsOk() && !charts.IsOk() {
		return nil, fmt.Errorf("load trending: %w", errors.Join(explore.Err(), charts.Err()))
	}

	var sections []types.HomeSection
	for _, page := range []result.Of[types.HomePage]{explore, charts} {
		if !page.IsOk() {
			b.logger.Warn().Err(page.Err()).Msg("Trending source failed, using the other one")
			continue
		}
		sections = append(sections, page.Unwrap().Sections...)
	}

	return SelectTrending(sections), nil
}

// SelectTrending picks the first section whose title mentions a trending
// keyword, else the first section holding songs, else the first section.
func SelectTrending(sections []types.HomeSection) []types.SearchResult {
	if s, ok := lo.Find(sections, func(s types.HomeSection) bool {
		title := strings.ToLower(s.Title)
		return len(s.Items) > 0 && lo.ContainsBy(trendingKeywords, func(k string) bool {
			return strings.Contains(title, k)
		})
	}); ok {
		return s.Items
	}

	if s, ok := lo.Find(sections, func(s types.HomeSection) bool {
		return lo.ContainsBy(s.Items, func(r types.SearchResult) bool { return r.Type == types.ContentTypeSong })
	}); ok {
		return s.Items
	}

	if len(sections) > 0 {
		return sections[0].Items
	}

	return []types.SearchResult{}
}
