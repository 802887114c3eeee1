package parse

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/xeptore/innertune/innertube/types"
)

const (
	PageTypeArtist      = "MUSIC_PAGE_TYPE_ARTIST"
	PageTypeUserChannel = "MUSIC_PAGE_TYPE_USER_CHANNEL"
	PageTypeAlbum       = "MUSIC_PAGE_TYPE_ALBUM"
	PageTypePlaylist    = "MUSIC_PAGE_TYPE_PLAYLIST"

	explicitBadgeIcon = "MUSIC_EXPLICIT_BADGE"
)

var durationPattern = regexp.MustCompile(`^\d{1,2}(:\d{2}){1,2}$`)

// Classify infers a content type from the prefix convention of an opaque
// upstream id. An id with no known prefix is a song only when the item
// carries a watch target.
func Classify(id string, hasWatch bool) types.ContentType {
	switch {
	case strings.HasPrefix(id, "UC"):
		return types.ContentTypeArtist
	case strings.HasPrefix(id, "MPRE"):
		return types.ContentTypeAlbum
	case strings.HasPrefix(id, "VL"), strings.HasPrefix(id, "PL"), strings.HasPrefix(id, "RD"):
		return types.ContentTypePlaylist
	case hasWatch:
		return types.ContentTypeSong
	default:
		return types.ContentTypeUnknown
	}
}

func classifyPageType(pageType string) types.ContentType {
	switch pageType {
	case PageTypeArtist, PageTypeUserChannel:
		return types.ContentTypeArtist
	case PageTypeAlbum:
		return types.ContentTypeAlbum
	case PageTypePlaylist:
		return types.ContentTypePlaylist
	default:
		return types.ContentTypeUnknown
	}
}

// classifyTarget prefers the id prefix, then the page type tag, then the
// presence of a watch target.
func classifyTarget(browseID, pageType string, hasWatch bool) types.ContentType {
	if t := Classify(browseID, false); t != types.ContentTypeUnknown {
		return t
	}

	if t := classifyPageType(pageType); t != types.ContentTypeUnknown {
		return t
	}

	return Classify("", hasWatch)
}

// LastThumbnail returns the URL of the last, highest resolution, entry.
func LastThumbnail(list []thumbnail) string {
	if len(list) == 0 {
		return ""
	}

	return list[len(list)-1].URL
}

func isExplicit(badges []badge) bool {
	return lo.ContainsBy(badges, func(b badge) bool {
		return nil != b.MusicInlineBadgeRenderer && b.MusicInlineBadgeRenderer.Icon.IconType == explicitBadgeIcon
	})
}

type ArtistTier int

const (
	ArtistTierNone ArtistTier = iota
	// ArtistTierTagged is a run navigating to a page tagged as an artist page.
	ArtistTierTagged
	// ArtistTierPositional is a heuristic: the third run of a
	// "Type • Artist • ..." subtitle. It is an approximation.
	ArtistTierPositional
	// ArtistTierChannelID is the last resort: any run targeting a channel id.
	ArtistTierChannelID
)

type ArtistRef struct {
	Name string
	ID   string
	Tier ArtistTier
}

// ArtistFromRuns resolves the artist of a subtitle line through the three
// tiers in order.
func ArtistFromRuns(runs []Run) ArtistRef {
	if r, ok := lo.Find(runs, func(r Run) bool {
		pt := r.PageType()
		return pt == PageTypeArtist || pt == PageTypeUserChannel
	}); ok {
		return ArtistRef{Name: r.Text, ID: r.BrowseID(), Tier: ArtistTierTagged}
	}

	if len(runs) > 2 && !isSeparator(runs[2].Text) {
		return ArtistRef{Name: runs[2].Text, ID: runs[2].BrowseID(), Tier: ArtistTierPositional}
	}

	if r, ok := lo.Find(runs, func(r Run) bool { return strings.HasPrefix(r.BrowseID(), "UC") }); ok {
		return ArtistRef{Name: r.Text, ID: r.BrowseID(), Tier: ArtistTierChannelID}
	}

	return ArtistRef{Name: "", ID: "", Tier: ArtistTierNone}
}

// albumFromRuns returns the first run targeting an album, by tag or by
// album id prefix.
func albumFromRuns(runs []Run) (name, id string, ok bool) {
	r, ok := lo.Find(runs, func(r Run) bool {
		return r.PageType() == PageTypeAlbum || strings.HasPrefix(r.BrowseID(), "MPRE")
	})
	if !ok {
		return "", "", false
	}

	return r.Text, r.BrowseID(), true
}

func durationFromRuns(runs []Run) string {
	for i := len(runs) - 1; i >= 0; i-- {
		if t := strings.TrimSpace(runs[i].Text); durationPattern.MatchString(t) {
			return t
		}
	}

	return ""
}

func isSeparator(s string) bool {
	return strings.TrimSpace(s) == "•" || strings.TrimSpace(s) == ""
}

func fromResponsiveListItem(r *responsiveListItem) (types.SearchResult, bool) {
	titleText := r.column(0)
	if nil == titleText {
		return types.SearchResult{}, false //nolint:exhaustruct
	}

	var subtitle []Run
	for i := 1; i < len(r.FlexColumns); i++ {
		if col := r.column(i); nil != col {
			subtitle = append(subtitle, col.Runs...)
		}
	}

	var (
		videoID string
		watch   *watchEndpoint
	)
	switch {
	case nil != r.PlaylistItemData && len(r.PlaylistItemData.VideoID) > 0:
		videoID = r.PlaylistItemData.VideoID
	case nil != r.Overlay && nil != r.Overlay.Renderer.Content.PlayButton.PlayNavigationEndpoint.watch():
		watch = r.Overlay.Renderer.Content.PlayButton.PlayNavigationEndpoint.watch()
		videoID = watch.VideoID
	case len(titleText.Runs) > 0 && nil != titleText.Runs[0].NavigationEndpoint.watch():
		watch = titleText.Runs[0].NavigationEndpoint.watch()
		videoID = watch.VideoID
	}

	browse := r.NavigationEndpoint.browse()
	if nil == browse && len(titleText.Runs) > 0 {
		browse = titleText.Runs[0].NavigationEndpoint.browse()
	}

	var browseID, pageType string
	if nil != browse {
		browseID, pageType = browse.BrowseID, browse.PageType()
	}

	out := types.SearchResult{ //nolint:exhaustruct
		Name:      titleText.String(),
		Thumbnail: LastThumbnail(r.Thumbnail.list()),
		Explicit:  isExplicit(r.Badges),
		Duration:  lo.Ternary(nil != r.fixed(0), r.fixed(0).First(), ""),
	}
	if out.Duration == "" {
		out.Duration = durationFromRuns(subtitle)
	}
	if nil != watch {
		out.PlaylistID = watch.PlaylistID
	}

	finish(&out, browseID, pageType, videoID, subtitle)

	return out, len(out.ID) > 0 && len(out.Name) > 0
}

func fromTwoRowItem(r *twoRowItem) (types.SearchResult, bool) {
	var (
		browse = r.NavigationEndpoint.browse()
		watch  = r.NavigationEndpoint.watch()
	)
	if nil == browse && nil == watch && len(r.Title.Runs) > 0 {
		browse = r.Title.Runs[0].NavigationEndpoint.browse()
		watch = r.Title.Runs[0].NavigationEndpoint.watch()
	}

	var browseID, pageType, videoID string
	if nil != browse {
		browseID, pageType = browse.BrowseID, browse.PageType()
	}

	out := types.SearchResult{ //nolint:exhaustruct
		Name:      r.Title.String(),
		Thumbnail: LastThumbnail(r.ThumbnailRenderer.list()),
		Explicit:  isExplicit(r.SubtitleBadges),
	}
	if nil != watch {
		videoID = watch.VideoID
		out.PlaylistID = watch.PlaylistID
	}

	finish(&out, browseID, pageType, videoID, r.Subtitle.Runs)

	return out, len(out.ID) > 0 && len(out.Name) > 0
}

func fromPanelVideo(r *panelVideo) (types.SearchResult, bool) {
	out := types.SearchResult{ //nolint:exhaustruct
		Name:      r.Title.String(),
		Thumbnail: LastThumbnail(r.Thumbnail.Thumbnails),
		Explicit:  isExplicit(r.Badges),
		Duration:  r.LengthText.String(),
	}
	finish(&out, "", "", r.VideoID, r.LongBylineText.Runs)

	return out, len(out.ID) > 0 && len(out.Name) > 0
}

// finish fills identity, type and attribution shared by every item shape.
func finish(out *types.SearchResult, browseID, pageType, videoID string, subtitle []Run) {
	out.Type = classifyTarget(browseID, pageType, len(videoID) > 0)

	switch out.Type {
	case types.ContentTypeSong:
		out.ID = videoID
	case types.ContentTypeUnknown:
		out.ID = lo.Ternary(len(browseID) > 0, browseID, videoID)
	default:
		out.ID = browseID
	}

	if out.Type == types.ContentTypeArtist {
		out.ArtistID = out.ID
		out.Artist = out.Name
		return
	}

	if a := ArtistFromRuns(subtitle); a.Tier != ArtistTierNone {
		out.Artist, out.ArtistID = a.Name, a.ID
	}

	if out.Type == types.ContentTypeSong {
		if name, id, ok := albumFromRuns(subtitle); ok {
			out.Album, out.AlbumID = name, id
		}
	}
}

func listItemResult(it listItem) (types.SearchResult, bool) {
	switch {
	case nil != it.ResponsiveListItem:
		return fromResponsiveListItem(it.ResponsiveListItem)
	case nil != it.TwoRowItem:
		return fromTwoRowItem(it.TwoRowItem)
	case nil != it.PanelVideo:
		return fromPanelVideo(it.PanelVideo)
	default:
		return types.SearchResult{}, false //nolint:exhaustruct
	}
}

func listItemResults(items []listItem) []types.SearchResult {
	return lo.FilterMap(items, func(it listItem, _ int) (types.SearchResult, bool) {
		return listItemResult(it)
	})
}
