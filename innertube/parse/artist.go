package parse

import (
	"github.com/samber/lo"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/types"
)

// ArtistDetail parses an artist page. A page whose header resolves but
// holds no recognizable shelves yields an empty section list, not an error.
func ArtistDetail(b []byte, id string) (types.ArtistDetail, error) {
	env, err := decodeBrowse(b, "artist")
	if nil != err {
		return types.ArtistDetail{}, err //nolint:exhaustruct
	}

	out := types.ArtistDetail{ //nolint:exhaustruct
		ID:       id,
		Sections: []types.ArtistSection{},
	}

	switch h := env.Header; {
	case nil != h && nil != h.Immersive:
		out.Name = h.Immersive.Title.String()
		out.Description = h.Immersive.Description.String()
		out.Thumbnail = LastThumbnail(h.Immersive.Thumbnail.list())
		out.Subscribers = h.Immersive.SubscriptionButton.count()
	case nil != h && nil != h.Visual:
		out.Name = h.Visual.Title.String()
		out.Thumbnail = LastThumbnail(h.Visual.Thumbnail.list())
		if out.Thumbnail == "" {
			out.Thumbnail = LastThumbnail(h.Visual.ForegroundThumbnail.list())
		}
		out.Subscribers = h.Visual.SubscriptionButton.count()
	default:
		return types.ArtistDetail{}, &apierr.ParseError{ //nolint:exhaustruct
			Shape:   "artist",
			Missing: "header.musicImmersiveHeaderRenderer or header.musicVisualHeaderRenderer",
		}
	}

	if out.Name == "" {
		return types.ArtistDetail{}, &apierr.ParseError{Shape: "artist", Missing: "header title"} //nolint:exhaustruct
	}

	sl := env.primary()
	if nil == sl {
		return out, nil
	}

	for _, s := range flattenSections(sl.Contents) {
		switch {
		case nil != s.MusicShelf:
			sec := types.ArtistSection{ //nolint:exhaustruct
				Title: s.MusicShelf.Title.String(),
				Items: artistItems(s.MusicShelf.Contents),
			}
			if be := sectionTarget(s.MusicShelf.Title.Runs, s.MusicShelf.BottomEndpoint); nil != be {
				sec.BrowseID, sec.Params = be.BrowseID, be.Params
			}
			out.Sections = append(out.Sections, sec)
		case nil != s.CarouselShelf:
			sec := types.ArtistSection{ //nolint:exhaustruct
				Title: carouselTitle(s.CarouselShelf),
				Items: artistItems(s.CarouselShelf.Contents),
			}
			if nil != s.CarouselShelf.Header.BasicHeader {
				if be := sectionTarget(s.CarouselShelf.Header.BasicHeader.Title.Runs, nil); nil != be {
					sec.BrowseID, sec.Params = be.BrowseID, be.Params
				}
			}
			out.Sections = append(out.Sections, sec)
		case nil != s.DescriptionShelf && out.Description == "":
			out.Description = s.DescriptionShelf.Description.String()
		}
	}

	out.Sections = lo.Filter(out.Sections, func(s types.ArtistSection, _ int) bool {
		return len(s.Items) > 0
	})

	return out, nil
}

func sectionTarget(titleRuns []Run, bottom *NavigationEndpoint) *browseEndpoint {
	if len(titleRuns) > 0 {
		if be := titleRuns[0].NavigationEndpoint.browse(); nil != be {
			return be
		}
	}

	return bottom.browse()
}

// ArtistSectionItems parses the full item list of one artist shelf: a grid
// (shape A) or a list shelf (shape B).
func ArtistSectionItems(b []byte) ([]types.ArtistItem, error) {
	env, err := decodeBrowse(b, "artist section items")
	if nil != err {
		return nil, err
	}

	if sl := env.primary(); nil != sl {
		sections := flattenSections(sl.Contents)

		if s, ok := lo.Find(sections, func(s section) bool { return nil != s.Grid }); ok {
			return artistItems(s.Grid.Items), nil
		}

		if s, ok := lo.Find(sections, func(s section) bool { return nil != s.MusicShelf }); ok {
			return artistItems(s.MusicShelf.Contents), nil
		}
	}

	return nil, &apierr.ParseError{Shape: "artist section items", Missing: "gridRenderer or musicShelfRenderer"}
}

// PlaylistItems parses a playlist page, in either column layout.
func PlaylistItems(b []byte) ([]types.ArtistItem, error) {
	env, err := decodeBrowse(b, "playlist")
	if nil != err {
		return nil, err
	}

	var lists []*sectionList
	if nil != env.Contents && nil != env.Contents.TwoColumn && nil != env.Contents.TwoColumn.SecondaryContents {
		lists = append(lists, env.Contents.TwoColumn.SecondaryContents.SectionList)
	}
	lists = append(lists, env.primary())

	for _, sl := range lists {
		if nil == sl {
			continue
		}

		if s, ok := lo.Find(flattenSections(sl.Contents), func(s section) bool { return nil != s.PlaylistShelf }); ok {
			return artistItems(s.PlaylistShelf.Contents), nil
		}
	}

	return nil, &apierr.ParseError{Shape: "playlist", Missing: "musicPlaylistShelfRenderer"}
}

func artistItems(items []listItem) []types.ArtistItem {
	return lo.FilterMap(items, func(it listItem, _ int) (types.ArtistItem, bool) {
		r, ok := listItemResult(it)
		if !ok {
			return types.ArtistItem{}, false //nolint:exhaustruct
		}

		return types.ArtistItem{
			ID:         r.ID,
			Title:      r.Name,
			Subtitle:   subtitleOf(it),
			Type:       r.Type,
			Thumbnail:  r.Thumbnail,
			Explicit:   r.Explicit,
			PlaylistID: r.PlaylistID,
		}, true
	})
}

func subtitleOf(it listItem) string {
	switch {
	case nil != it.TwoRowItem:
		return it.TwoRowItem.Subtitle.String()
	case nil != it.ResponsiveListItem:
		return it.ResponsiveListItem.column(1).String()
	case nil != it.PanelVideo:
		return it.PanelVideo.LongBylineText.String()
	default:
		return ""
	}
}
