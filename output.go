package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"

	"github.com/xeptore/innertune/innertube/types"
	"github.com/xeptore/innertune/unit"
)

// printer renders results as tables on a terminal and as JSON otherwise.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(f *os.File, forceJSON bool) *printer {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &printer{w: f, json: forceJSON || !tty}
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); nil != err {
		return fmt.Errorf("encode output: %v", err)
	}

	return nil
}

func (p *printer) table(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	if len(title) > 0 {
		t.SetTitle(text.Bold.Sprint(title))
	}

	return t
}

func explicit(v bool) string {
	return lo.Ternary(v, "E", "")
}

func (p *printer) searchResults(res types.SearchResults) error {
	if p.json {
		return p.encode(res)
	}

	if len(res.TopResults) > 0 {
		if err := p.results("Top results", res.TopResults); nil != err {
			return err
		}
	}

	return p.results("Results", res.Results)
}

func (p *printer) results(title string, items []types.SearchResult) error {
	if p.json {
		return p.encode(items)
	}

	t := p.table(title)
	t.AppendHeader(table.Row{"#", "Type", "Name", "Artist", "Album", "Duration", "", "ID"})
	for i, v := range items {
		t.AppendRow(table.Row{i + 1, v.Type, v.Name, v.Artist, v.Album, v.Duration, explicit(v.Explicit), v.ID})
	}
	if len(items) == 0 {
		t.AppendRow(table.Row{"", text.Faint.Sprint("no results")})
	}
	t.Render()

	return nil
}

func (p *printer) homePage(page types.HomePage) error {
	if p.json {
		return p.encode(page)
	}

	if len(page.Chips) > 0 {
		t := p.table("Chips")
		t.AppendHeader(table.Row{"Title", "Params"})
		for _, c := range page.Chips {
			t.AppendRow(table.Row{lo.Ternary(c.Selected, text.Bold.Sprint(c.Title), c.Title), c.Params})
		}
		t.Render()
	}

	for _, s := range page.Sections {
		if err := p.results(s.Title, s.Items); nil != err {
			return err
		}
	}

	if len(page.Continuation) > 0 {
		fmt.Fprintln(p.w, text.Faint.Sprint("continuation: "+page.Continuation))
	}

	return nil
}

func (p *printer) artist(a types.ArtistDetail) error {
	if p.json {
		return p.encode(a)
	}

	fmt.Fprintln(p.w, text.Bold.Sprint(a.Name))
	if len(a.Subscribers) > 0 {
		fmt.Fprintln(p.w, a.Subscribers)
	}
	if len(a.Description) > 0 {
		fmt.Fprintln(p.w, text.WrapSoft(a.Description, 100))
	}

	for _, s := range a.Sections {
		title := s.Title
		if len(s.BrowseID) > 0 {
			title += " " + text.Faint.Sprint("("+s.BrowseID+" "+s.Params+")")
		}
		if err := p.artistItems(title, s.Items); nil != err {
			return err
		}
	}

	return nil
}

func (p *printer) artistItems(title string, items []types.ArtistItem) error {
	if p.json {
		return p.encode(items)
	}

	t := p.table(title)
	t.AppendHeader(table.Row{"#", "Type", "Title", "Subtitle", "", "ID"})
	for i, v := range items {
		t.AppendRow(table.Row{i + 1, v.Type, v.Title, v.Subtitle, explicit(v.Explicit), v.ID})
	}
	t.Render()

	return nil
}

func (p *printer) queue(songs []types.QueueSong) error {
	if p.json {
		return p.encode(songs)
	}

	t := p.table("Up next")
	t.AppendHeader(table.Row{"#", "Title", "Artist", "Album", "Duration", "", "Video ID"})
	for i, v := range songs {
		title := lo.Ternary(v.Selected, text.Bold.Sprint("▶ "+v.Title), v.Title)
		t.AppendRow(table.Row{i + 1, title, v.Artist, v.Album, v.Duration, explicit(v.Explicit), v.VideoID})
	}
	t.Render()

	return nil
}

func (p *printer) album(a types.AlbumRef) error {
	if p.json {
		return p.encode(a)
	}

	t := p.table("Album")
	t.AppendRows([]table.Row{
		{"ID", a.ID},
		{"Title", a.Title},
		{"Found via", a.Source},
	})
	t.Render()

	return nil
}

func (p *printer) playback(info types.PlaybackInfo) error {
	if p.json {
		return p.encode(info)
	}

	kbps := float64(info.Format.Bitrate) / unit.KilobitPerSecond

	t := p.table(info.Title)
	t.AppendRows([]table.Row{
		{"Video ID", info.VideoID},
		{"Artist", info.Artist},
		{"Duration", info.Duration.String()},
		{"Persona", info.Persona},
		{"Itag", info.Format.Itag},
		{"Mime type", info.Format.MimeType},
		{"Bitrate", strconv.FormatFloat(kbps, 'f', 1, 64) + " kbps"},
		{"Expires", info.ExpiresAt.Local().Format(time.RFC1123)},
	})
	t.Render()
	fmt.Fprintln(p.w, info.URL)

	return nil
}

func (p *printer) token(visitorData string, refreshedAt time.Time) error {
	if p.json {
		return p.encode(map[string]any{
			"visitor_data": visitorData,
			"refreshed_at": lo.Ternary[any](refreshedAt.IsZero(), nil, refreshedAt),
		})
	}

	t := p.table("Visitor token")
	t.AppendRows([]table.Row{
		{"Visitor data", visitorData},
		{"Refreshed at", lo.Ternary(refreshedAt.IsZero(), "never", refreshedAt.Local().Format(time.RFC1123))},
	})
	t.Render()

	return nil
}
