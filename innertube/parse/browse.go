package parse

import (
	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/types"
)

type artistHeader struct {
	// Shape A.
	Immersive *struct {
		Title              text               `json:"title"`
		Description        text               `json:"description"`
		Thumbnail          *thumbnailRenderer `json:"thumbnail"`
		SubscriptionButton *subscription      `json:"subscriptionButton"`
	} `json:"musicImmersiveHeaderRenderer"`
	// Shape B.
	Visual *struct {
		Title               text               `json:"title"`
		Thumbnail           *thumbnailRenderer `json:"thumbnail"`
		ForegroundThumbnail *thumbnailRenderer `json:"foregroundThumbnail"`
		SubscriptionButton  *subscription      `json:"subscriptionButton"`
	} `json:"musicVisualHeaderRenderer"`
}

type subscription struct {
	Renderer struct {
		SubscriberCountText text `json:"subscriberCountText"`
	} `json:"subscribeButtonRenderer"`
}

func (s *subscription) count() string {
	if nil == s {
		return ""
	}

	return s.Renderer.SubscriberCountText.String()
}

type browseEnvelope struct {
	Contents *struct {
		TwoColumn    *twoColumn    `json:"twoColumnBrowseResultsRenderer"`
		SingleColumn *singleColumn `json:"singleColumnBrowseResultsRenderer"`
	} `json:"contents"`
	Header               *artistHeader `json:"header"`
	ContinuationContents *struct {
		SectionListContinuation *sectionList `json:"sectionListContinuation"`
	} `json:"continuationContents"`
}

// primary returns the first tab's section list of either column layout,
// two-column first.
func (e *browseEnvelope) primary() *sectionList {
	if nil == e.Contents {
		return nil
	}

	if nil != e.Contents.TwoColumn {
		if sl := firstTabSectionList(e.Contents.TwoColumn.Tabs); nil != sl {
			return sl
		}
	}

	if nil != e.Contents.SingleColumn {
		return firstTabSectionList(e.Contents.SingleColumn.Tabs)
	}

	return nil
}

func decodeBrowse(b []byte, shape string) (*browseEnvelope, error) {
	var env browseEnvelope
	if err := json.Unmarshal(b, &env); nil != err {
		return nil, &apierr.ParseError{Shape: shape, Missing: "valid json document"}
	}

	return &env, nil
}

// HomePage parses a home or browse landing page: two-column layout first,
// then single-column, then any recognizable shelves. A layout only matches
// when it yields at least one section; chips found on the way are kept.
func HomePage(b []byte) (types.HomePage, error) {
	env, err := decodeBrowse(b, "home")
	if nil != err {
		return types.HomePage{}, err //nolint:exhaustruct
	}

	chips := []types.Chip{}

	if nil != env.Contents && nil != env.Contents.TwoColumn {
		tc := env.Contents.TwoColumn
		page := homeFromSectionList(firstTabSectionList(tc.Tabs))
		if nil != tc.SecondaryContents && nil != tc.SecondaryContents.SectionList {
			secondary := tc.SecondaryContents.SectionList
			page.Sections = append(page.Sections, sectionsOf(secondary.Contents)...)
			page.Continuation = lo.Ternary(page.Continuation != "", page.Continuation, secondary.continuation())
		}

		if len(page.Sections) > 0 {
			return page, nil
		}
		chips = page.Chips
	}

	if nil != env.Contents && nil != env.Contents.SingleColumn {
		page := homeFromSectionList(firstTabSectionList(env.Contents.SingleColumn.Tabs))
		if len(page.Sections) > 0 {
			return page, nil
		}
		if len(chips) == 0 {
			chips = page.Chips
		}
	}

	if sections := genericSections(b); len(sections) > 0 {
		return types.HomePage{Chips: chips, Sections: sections, Continuation: ""}, nil
	}

	return types.HomePage{}, &apierr.ParseError{ //nolint:exhaustruct
		Shape:   "home",
		Missing: "contents.twoColumnBrowseResultsRenderer or contents.singleColumnBrowseResultsRenderer",
	}
}

// HomeContinuation parses a page fetched with a continuation token.
func HomeContinuation(b []byte) (types.HomePage, error) {
	env, err := decodeBrowse(b, "home continuation")
	if nil != err {
		return types.HomePage{}, err //nolint:exhaustruct
	}

	var continuation string
	if nil != env.ContinuationContents && nil != env.ContinuationContents.SectionListContinuation {
		sl := env.ContinuationContents.SectionListContinuation
		continuation = sl.continuation()
		if sections := sectionsOf(sl.Contents); len(sections) > 0 {
			return types.HomePage{Chips: []types.Chip{}, Sections: sections, Continuation: continuation}, nil
		}
	}

	if sections := genericSections(b); len(sections) > 0 {
		return types.HomePage{Chips: []types.Chip{}, Sections: sections, Continuation: continuation}, nil
	}

	return types.HomePage{}, &apierr.ParseError{ //nolint:exhaustruct
		Shape:   "home continuation",
		Missing: "continuationContents.sectionListContinuation",
	}
}

func homeFromSectionList(sl *sectionList) types.HomePage {
	page := types.HomePage{
		Chips:        []types.Chip{},
		Sections:     []types.HomeSection{},
		Continuation: "",
	}
	if nil == sl {
		return page
	}

	page.Sections = sectionsOf(sl.Contents)
	page.Continuation = sl.continuation()

	if nil != sl.Header && nil != sl.Header.ChipCloud {
		page.Chips = lo.FilterMap(sl.Header.ChipCloud.Chips, func(c chip, _ int) (types.Chip, bool) {
			if nil == c.Renderer {
				return types.Chip{}, false //nolint:exhaustruct
			}

			var params string
			if b := c.Renderer.NavigationEndpoint.browse(); nil != b {
				params = b.Params
			}

			return types.Chip{
				Title:    c.Renderer.Text.String(),
				Params:   params,
				Selected: c.Renderer.IsSelected,
			}, len(c.Renderer.Text.String()) > 0
		})
	}

	return page
}

// sectionsOf keeps every shelf holding at least one identifiable item.
func sectionsOf(in []section) []types.HomeSection {
	out := make([]types.HomeSection, 0, len(in))
	for _, s := range flattenSections(in) {
		var (
			title string
			items []types.SearchResult
		)
		switch {
		case nil != s.CarouselShelf:
			title, items = carouselTitle(s.CarouselShelf), listItemResults(s.CarouselShelf.Contents)
		case nil != s.ImmersiveShelf:
			title, items = carouselTitle(s.ImmersiveShelf), listItemResults(s.ImmersiveShelf.Contents)
		case nil != s.MusicShelf:
			title, items = s.MusicShelf.Title.String(), listItemResults(s.MusicShelf.Contents)
		case nil != s.Grid:
			title, items = gridTitle(s.Grid), listItemResults(s.Grid.Items)
		default:
			continue
		}

		if len(items) > 0 {
			out = append(out, types.HomeSection{Title: title, Items: items})
		}
	}

	return out
}

func carouselTitle(c *carouselShelf) string {
	if nil == c.Header.BasicHeader {
		return ""
	}

	return c.Header.BasicHeader.Title.String()
}

func gridTitle(g *grid) string {
	if nil == g.Header {
		return ""
	}

	return g.Header.GridHeader.Title.String()
}
