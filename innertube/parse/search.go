package parse

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/types"
)

type searchEnvelope struct {
	Contents *struct {
		// Shape A: tabbed desktop results.
		Tabbed *struct {
			Tabs []tab `json:"tabs"`
		} `json:"tabbedSearchResultsRenderer"`
		// Shape B: bare section list.
		SectionList *sectionList `json:"sectionListRenderer"`
	} `json:"contents"`
}

// SearchResults parses a search response into top results and results.
// Items without an id or a name are dropped.
func SearchResults(b []byte) (types.SearchResults, error) {
	var env searchEnvelope
	if err := json.Unmarshal(b, &env); nil != err {
		return types.SearchResults{}, &apierr.ParseError{Shape: "search", Missing: "valid json document"} //nolint:exhaustruct
	}

	// A shape only matches when it yields items; shelves wrapped in an
	// unknown renderer fall through to the generic scan.
	var noResults bool
	if nil != env.Contents {
		var lists []*sectionList
		if nil != env.Contents.Tabbed {
			lists = append(lists, firstTabSectionList(env.Contents.Tabbed.Tabs))
		}
		lists = append(lists, env.Contents.SectionList)

		for _, sl := range lists {
			if nil == sl {
				continue
			}

			res := searchFromSectionList(sl)
			if len(res.TopResults)+len(res.Results) > 0 {
				return res, nil
			}
			noResults = noResults || hasMessage(sl)
		}
	}

	if sections := genericSections(b); len(sections) > 0 {
		return types.SearchResults{
			TopResults: []types.SearchResult{},
			Results:    lo.FlatMap(sections, func(s types.HomeSection, _ int) []types.SearchResult { return s.Items }),
		}, nil
	}

	if noResults {
		return types.SearchResults{TopResults: []types.SearchResult{}, Results: []types.SearchResult{}}, nil
	}

	return types.SearchResults{}, &apierr.ParseError{ //nolint:exhaustruct
		Shape:   "search",
		Missing: "contents.tabbedSearchResultsRenderer or contents.sectionListRenderer",
	}
}

func searchFromSectionList(sl *sectionList) types.SearchResults {
	out := types.SearchResults{
		TopResults: []types.SearchResult{},
		Results:    []types.SearchResult{},
	}

	for _, s := range flattenSections(sl.Contents) {
		switch {
		case nil != s.CardShelf:
			if top, ok := fromCardShelf(s.CardShelf); ok {
				out.TopResults = append(out.TopResults, top)
			}
			out.TopResults = append(out.TopResults, listItemResults(s.CardShelf.Contents)...)
		case nil != s.MusicShelf:
			items := listItemResults(s.MusicShelf.Contents)
			if strings.EqualFold(s.MusicShelf.Title.String(), "Top result") {
				out.TopResults = append(out.TopResults, items...)
			} else {
				out.Results = append(out.Results, items...)
			}
		}
	}

	return out
}

func fromCardShelf(c *cardShelf) (types.SearchResult, bool) {
	var browseID, pageType, videoID string
	if len(c.Title.Runs) > 0 {
		nav := c.Title.Runs[0].NavigationEndpoint
		if b := nav.browse(); nil != b {
			browseID, pageType = b.BrowseID, b.PageType()
		}
		if w := nav.watch(); nil != w {
			videoID = w.VideoID
		}
	}
	if videoID == "" && browseID == "" {
		if w := c.OnTap.watch(); nil != w {
			videoID = w.VideoID
		}
	}

	out := types.SearchResult{ //nolint:exhaustruct
		Name:      c.Title.String(),
		Thumbnail: LastThumbnail(c.Thumbnail.list()),
		Explicit:  isExplicit(c.SubtitleBadges),
		Duration:  durationFromRuns(c.Subtitle.Runs),
	}
	finish(&out, browseID, pageType, videoID, c.Subtitle.Runs)

	return out, len(out.ID) > 0 && len(out.Name) > 0
}

// hasMessage reports whether sl carries an upstream notice such as "No
// results found" in place of shelves.
func hasMessage(sl *sectionList) bool {
	return lo.ContainsBy(flattenSections(sl.Contents), func(s section) bool { return nil != s.Message })
}

// flattenSections inlines item sections so callers only see shelves.
func flattenSections(in []section) []section {
	out := make([]section, 0, len(in))
	for _, s := range in {
		if nil != s.ItemSection {
			out = append(out, flattenSections(s.ItemSection.Contents)...)
			continue
		}
		out = append(out, s)
	}

	return out
}
