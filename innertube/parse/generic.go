package parse

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/xeptore/innertune/innertube/types"
)

// Containers whose items the generic scan collects, wherever they appear.
var containerKeys = map[string]string{
	"gridRenderer":                        "items",
	"musicShelfRenderer":                  "contents",
	"musicCarouselShelfRenderer":          "contents",
	"musicImmersiveCarouselShelfRenderer": "contents",
	"musicPlaylistShelfRenderer":          "contents",
	"itemSectionRenderer":                 "contents",
}

var itemKeys = map[string]struct{}{
	"musicResponsiveListItemRenderer": {},
	"musicTwoRowItemRenderer":         {},
	"playlistPanelVideoRenderer":      {},
}

var titlePaths = []string{
	"title.runs.0.text",
	"header.musicCarouselShelfBasicHeaderRenderer.title.runs.0.text",
	"header.gridHeaderRenderer.title.runs.0.text",
}

// walk visits every object member below v depth first. Returning false
// from fn skips the member's subtree.
func walk(v gjson.Result, fn func(key string, v gjson.Result) bool) {
	v.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() && !value.IsArray() {
			return true
		}

		if key.Type == gjson.String && !fn(key.String(), value) {
			return true
		}

		walk(value, fn)

		return true
	})
}

func decodeItem(key string, raw gjson.Result) (types.SearchResult, bool) {
	var it listItem
	if err := json.Unmarshal([]byte(`{"`+key+`":`+raw.Raw+`}`), &it); nil != err {
		return types.SearchResult{}, false //nolint:exhaustruct
	}

	return listItemResult(it)
}

// genericSections scans an arbitrary response for recognizable item
// containers. When no container holds items, loose item renderers are
// collected into a single untitled section.
func genericSections(b []byte) []types.HomeSection {
	root := gjson.ParseBytes(b)

	var sections []types.HomeSection
	walk(root, func(key string, v gjson.Result) bool {
		itemsKey, ok := containerKeys[key]
		if !ok {
			return true
		}

		var items []types.SearchResult
		v.Get(itemsKey).ForEach(func(_, el gjson.Result) bool {
			el.ForEach(func(k, raw gjson.Result) bool {
				if _, ok := itemKeys[k.String()]; ok {
					if it, ok := decodeItem(k.String(), raw); ok {
						items = append(items, it)
					}
				}
				return true
			})
			return true
		})

		if len(items) == 0 {
			// Item sections nest shelves; keep looking inside.
			return true
		}

		var title string
		for _, p := range titlePaths {
			if t := v.Get(p); t.Exists() {
				title = t.String()
				break
			}
		}
		sections = append(sections, types.HomeSection{Title: title, Items: items})

		return false
	})

	if len(sections) > 0 {
		return sections
	}

	var loose []types.SearchResult
	walk(root, func(key string, v gjson.Result) bool {
		if _, ok := itemKeys[key]; !ok {
			return true
		}

		if it, ok := decodeItem(key, v); ok {
			loose = append(loose, it)
		}

		return false
	})

	if len(loose) == 0 {
		return nil
	}

	return []types.HomeSection{{Title: "", Items: loose}}
}
