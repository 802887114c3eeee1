package parse

// Typed views of the upstream renderer objects. Every field is optional;
// absence is resolved by the shape functions, not by decoding.

type text struct {
	Runs       []Run  `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (t *text) String() string {
	if nil == t {
		return ""
	}

	if len(t.SimpleText) > 0 {
		return t.SimpleText
	}

	var s string
	for _, r := range t.Runs {
		s += r.Text
	}

	return s
}

func (t *text) First() string {
	if nil == t || len(t.Runs) == 0 {
		return t.String()
	}

	return t.Runs[0].Text
}

type Run struct {
	Text               string              `json:"text"`
	NavigationEndpoint *NavigationEndpoint `json:"navigationEndpoint"`
}

func (r Run) BrowseID() string {
	if nil == r.NavigationEndpoint || nil == r.NavigationEndpoint.BrowseEndpoint {
		return ""
	}

	return r.NavigationEndpoint.BrowseEndpoint.BrowseID
}

func (r Run) PageType() string {
	if nil == r.NavigationEndpoint || nil == r.NavigationEndpoint.BrowseEndpoint {
		return ""
	}

	return r.NavigationEndpoint.BrowseEndpoint.PageType()
}

type NavigationEndpoint struct {
	BrowseEndpoint        *browseEndpoint        `json:"browseEndpoint"`
	WatchEndpoint         *watchEndpoint         `json:"watchEndpoint"`
	WatchPlaylistEndpoint *watchPlaylistEndpoint `json:"watchPlaylistEndpoint"`
}

func (n *NavigationEndpoint) browse() *browseEndpoint {
	if nil == n {
		return nil
	}

	return n.BrowseEndpoint
}

func (n *NavigationEndpoint) watch() *watchEndpoint {
	if nil == n {
		return nil
	}

	return n.WatchEndpoint
}

type browseEndpoint struct {
	BrowseID string `json:"browseId"`
	Params   string `json:"params"`
	Configs  *struct {
		Music struct {
			PageType string `json:"pageType"`
		} `json:"browseEndpointContextMusicConfig"`
	} `json:"browseEndpointContextSupportedConfigs"`
}

func (b *browseEndpoint) PageType() string {
	if nil == b || nil == b.Configs {
		return ""
	}

	return b.Configs.Music.PageType
}

type watchEndpoint struct {
	VideoID    string `json:"videoId"`
	PlaylistID string `json:"playlistId"`
	Params     string `json:"params"`
}

type watchPlaylistEndpoint struct {
	PlaylistID string `json:"playlistId"`
	Params     string `json:"params"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type thumbnailList struct {
	Thumbnails []thumbnail `json:"thumbnails"`
}

type thumbnailRenderer struct {
	MusicThumbnailRenderer *struct {
		Thumbnail thumbnailList `json:"thumbnail"`
	} `json:"musicThumbnailRenderer"`
	CroppedSquareThumbnailRenderer *struct {
		Thumbnail thumbnailList `json:"thumbnail"`
	} `json:"croppedSquareThumbnailRenderer"`
}

func (t *thumbnailRenderer) list() []thumbnail {
	switch {
	case nil == t:
		return nil
	case nil != t.MusicThumbnailRenderer:
		return t.MusicThumbnailRenderer.Thumbnail.Thumbnails
	case nil != t.CroppedSquareThumbnailRenderer:
		return t.CroppedSquareThumbnailRenderer.Thumbnail.Thumbnails
	default:
		return nil
	}
}

type badge struct {
	MusicInlineBadgeRenderer *struct {
		Icon struct {
			IconType string `json:"iconType"`
		} `json:"icon"`
	} `json:"musicInlineBadgeRenderer"`
}

type responsiveListItem struct {
	FlexColumns []struct {
		Renderer *struct {
			Text text `json:"text"`
		} `json:"musicResponsiveListItemFlexColumnRenderer"`
	} `json:"flexColumns"`
	FixedColumns []struct {
		Renderer *struct {
			Text text `json:"text"`
		} `json:"musicResponsiveListItemFixedColumnRenderer"`
	} `json:"fixedColumns"`
	Thumbnail          *thumbnailRenderer  `json:"thumbnail"`
	Badges             []badge             `json:"badges"`
	NavigationEndpoint *NavigationEndpoint `json:"navigationEndpoint"`
	PlaylistItemData   *struct {
		VideoID string `json:"videoId"`
	} `json:"playlistItemData"`
	Overlay *struct {
		Renderer struct {
			Content struct {
				PlayButton struct {
					PlayNavigationEndpoint *NavigationEndpoint `json:"playNavigationEndpoint"`
				} `json:"musicPlayButtonRenderer"`
			} `json:"content"`
		} `json:"musicItemThumbnailOverlayRenderer"`
	} `json:"overlay"`
}

func (r *responsiveListItem) column(i int) *text {
	if i >= len(r.FlexColumns) || nil == r.FlexColumns[i].Renderer {
		return nil
	}

	return &r.FlexColumns[i].Renderer.Text
}

func (r *responsiveListItem) fixed(i int) *text {
	if i >= len(r.FixedColumns) || nil == r.FixedColumns[i].Renderer {
		return nil
	}

	return &r.FixedColumns[i].Renderer.Text
}

type twoRowItem struct {
	ThumbnailRenderer  *thumbnailRenderer  `json:"thumbnailRenderer"`
	Title              text                `json:"title"`
	Subtitle           text                `json:"subtitle"`
	NavigationEndpoint *NavigationEndpoint `json:"navigationEndpoint"`
	SubtitleBadges     []badge             `json:"subtitleBadges"`
}

type panelVideo struct {
	Title              text                `json:"title"`
	LongBylineText     text                `json:"longBylineText"`
	ShortBylineText    text                `json:"shortBylineText"`
	Thumbnail          thumbnailList       `json:"thumbnail"`
	LengthText         text                `json:"lengthText"`
	VideoID            string              `json:"videoId"`
	Selected           bool                `json:"selected"`
	Badges             []badge             `json:"badges"`
	NavigationEndpoint *NavigationEndpoint `json:"navigationEndpoint"`
}

// listItem is any element of a shelf, grid or carousel contents array.
type listItem struct {
	ResponsiveListItem *responsiveListItem `json:"musicResponsiveListItemRenderer"`
	TwoRowItem         *twoRowItem         `json:"musicTwoRowItemRenderer"`
	PanelVideo         *panelVideo         `json:"playlistPanelVideoRenderer"`
}

type carouselHeader struct {
	BasicHeader *struct {
		Title text `json:"title"`
	} `json:"musicCarouselShelfBasicHeaderRenderer"`
}

type musicShelf struct {
	Title          text                `json:"title"`
	Contents       []listItem          `json:"contents"`
	BottomEndpoint *NavigationEndpoint `json:"bottomEndpoint"`
}

type carouselShelf struct {
	Header   carouselHeader `json:"header"`
	Contents []listItem     `json:"contents"`
}

type grid struct {
	Header *struct {
		GridHeader struct {
			Title text `json:"title"`
		} `json:"gridHeaderRenderer"`
	} `json:"header"`
	Items []listItem `json:"items"`
}

type cardShelf struct {
	Title          text                `json:"title"`
	Subtitle       text                `json:"subtitle"`
	Thumbnail      *thumbnailRenderer  `json:"thumbnail"`
	SubtitleBadges []badge             `json:"subtitleBadges"`
	Contents       []listItem          `json:"contents"`
	OnTap          *NavigationEndpoint `json:"onTap"`
}

type playlistShelf struct {
	PlaylistID string     `json:"playlistId"`
	Contents   []listItem `json:"contents"`
}

type descriptionShelf struct {
	Description text `json:"description"`
}

// section is any element of a section list contents array.
type section struct {
	MusicShelf       *musicShelf       `json:"musicShelfRenderer"`
	CarouselShelf    *carouselShelf    `json:"musicCarouselShelfRenderer"`
	ImmersiveShelf   *carouselShelf    `json:"musicImmersiveCarouselShelfRenderer"`
	Grid             *grid             `json:"gridRenderer"`
	CardShelf        *cardShelf        `json:"musicCardShelfRenderer"`
	PlaylistShelf    *playlistShelf    `json:"musicPlaylistShelfRenderer"`
	DescriptionShelf *descriptionShelf `json:"musicDescriptionShelfRenderer"`
	Message          *struct{}         `json:"messageRenderer"`
	ItemSection      *struct {
		Contents []section `json:"contents"`
	} `json:"itemSectionRenderer"`
}

type chip struct {
	Renderer *struct {
		Text               text                `json:"text"`
		IsSelected         bool                `json:"isSelected"`
		NavigationEndpoint *NavigationEndpoint `json:"navigationEndpoint"`
	} `json:"chipCloudChipRenderer"`
}

type continuation struct {
	NextContinuationData *struct {
		Continuation string `json:"continuation"`
	} `json:"nextContinuationData"`
}

type sectionList struct {
	Contents      []section      `json:"contents"`
	Continuations []continuation `json:"continuations"`
	Header        *struct {
		ChipCloud *struct {
			Chips []chip `json:"chips"`
		} `json:"chipCloudRenderer"`
	} `json:"header"`
}

func (s *sectionList) continuation() string {
	if nil == s {
		return ""
	}

	for _, c := range s.Continuations {
		if nil != c.NextContinuationData && len(c.NextContinuationData.Continuation) > 0 {
			return c.NextContinuationData.Continuation
		}
	}

	return ""
}

type tab struct {
	TabRenderer struct {
		Content struct {
			SectionList *sectionList `json:"sectionListRenderer"`
		} `json:"content"`
	} `json:"tabRenderer"`
}

func firstTabSectionList(tabs []tab) *sectionList {
	for _, t := range tabs {
		if nil != t.TabRenderer.Content.SectionList {
			return t.TabRenderer.Content.SectionList
		}
	}

	return nil
}

type singleColumn struct {
	Tabs []tab `json:"tabs"`
}

type twoColumn struct {
	Tabs              []tab `json:"tabs"`
	SecondaryContents *struct {
		SectionList *sectionList `json:"sectionListRenderer"`
	} `json:"secondaryContents"`
}
