package parse

import (
	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/types"
)

type queueEntry struct {
	// Shape A.
	PanelVideo *panelVideo `json:"playlistPanelVideoRenderer"`
	// Shape B.
	Wrapper *struct {
		PrimaryRenderer struct {
			PanelVideo *panelVideo `json:"playlistPanelVideoRenderer"`
		} `json:"primaryRenderer"`
	} `json:"playlistPanelVideoWrapperRenderer"`
}

func (e queueEntry) video() *panelVideo {
	if nil != e.PanelVideo {
		return e.PanelVideo
	}

	if nil != e.Wrapper {
		return e.Wrapper.PrimaryRenderer.PanelVideo
	}

	return nil
}

type nextEnvelope struct {
	Contents *struct {
		Watch *struct {
			TabbedRenderer struct {
				WatchNext struct {
					Tabs []struct {
						TabRenderer struct {
							Content struct {
								Queue *struct {
									Content *struct {
										Panel *struct {
											Contents []queueEntry `json:"contents"`
										} `json:"playlistPanelRenderer"`
									} `json:"content"`
								} `json:"musicQueueRenderer"`
							} `json:"content"`
						} `json:"tabRenderer"`
					} `json:"tabs"`
				} `json:"watchNextTabbedResultsRenderer"`
			} `json:"tabbedRenderer"`
		} `json:"singleColumnMusicWatchNextResultsRenderer"`
	} `json:"contents"`
}

func (e *nextEnvelope) entries() ([]queueEntry, bool) {
	if nil == e.Contents || nil == e.Contents.Watch {
		return nil, false
	}

	for _, t := range e.Contents.Watch.TabbedRenderer.WatchNext.Tabs {
		q := t.TabRenderer.Content.Queue
		if nil != q && nil != q.Content && nil != q.Content.Panel {
			return q.Content.Panel.Contents, true
		}
	}

	return nil, false
}

// Queue parses a next response into its play queue. When the queue
// renderer is missing or holds no songs, panel videos are collected from
// anywhere in the response.
func Queue(b []byte) ([]types.QueueSong, error) {
	var env nextEnvelope
	if err := json.Unmarshal(b, &env); nil != err {
		return nil, &apierr.ParseError{Shape: "queue", Missing: "valid json document"}
	}

	entries, matched := env.entries()
	if matched {
		songs := lo.FilterMap(entries, func(e queueEntry, _ int) (types.QueueSong, bool) {
			return queueSong(e.video())
		})
		if len(songs) > 0 {
			return songs, nil
		}
	}

	if songs := looseQueue(b); len(songs) > 0 {
		return songs, nil
	}

	if matched {
		return []types.QueueSong{}, nil
	}

	return nil, &apierr.ParseError{Shape: "queue", Missing: "musicQueueRenderer.content.playlistPanelRenderer"}
}

// looseQueue collects every panel video in document order, wherever it is
// nested.
func looseQueue(b []byte) []types.QueueSong {
	var songs []types.QueueSong
	walk(gjson.ParseBytes(b), func(key string, v gjson.Result) bool {
		if key != "playlistPanelVideoRenderer" {
			return true
		}

		var pv panelVideo
		if err := json.Unmarshal([]byte(v.Raw), &pv); nil != err {
			return false
		}
		if song, ok := queueSong(&pv); ok {
			songs = append(songs, song)
		}

		return false
	})

	return songs
}

func queueSong(v *panelVideo) (types.QueueSong, bool) {
	if nil == v || v.VideoID == "" {
		return types.QueueSong{}, false //nolint:exhaustruct
	}

	byline := lo.Ternary(len(v.LongBylineText.Runs) > 0, v.LongBylineText.Runs, v.ShortBylineText.Runs)
	song := types.QueueSong{ //nolint:exhaustruct
		VideoID:   v.VideoID,
		Title:     v.Title.String(),
		Thumbnail: LastThumbnail(v.Thumbnail.Thumbnails),
		Duration:  v.LengthText.String(),
		Explicit:  isExplicit(v.Badges),
		Selected:  v.Selected,
	}
	if a := ArtistFromRuns(byline); a.Tier != ArtistTierNone {
		song.Artist, song.ArtistID = a.Name, a.ID
	} else if len(byline) > 0 {
		song.Artist = byline[0].Text
	}
	if name, id, ok := albumFromRuns(byline); ok {
		song.Album, song.AlbumID = name, id
	}

	return song, true
}
