package types

import (
	"time"
)

type ContentType string

const (
	ContentTypeSong     ContentType = "song"
	ContentTypeAlbum    ContentType = "album"
	ContentTypeArtist   ContentType = "artist"
	ContentTypePlaylist ContentType = "playlist"
	ContentTypeUnknown  ContentType = "unknown"
)

// SearchResult is one listing entry of search, home and trending pages.
type SearchResult struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       ContentType `json:"type"`
	Artist     string      `json:"artist,omitempty"`
	ArtistID   string      `json:"artist_id,omitempty"`
	Album      string      `json:"album,omitempty"`
	AlbumID    string      `json:"album_id,omitempty"`
	Thumbnail  string      `json:"thumbnail"`
	Explicit   bool        `json:"explicit"`
	Duration   string      `json:"duration,omitempty"`
	PlaylistID string      `json:"playlist_id,omitempty"`
}

type SearchResults struct {
	TopResults []SearchResult `json:"top_results"`
	Results    []SearchResult `json:"results"`
}

type Chip struct {
	Title    string `json:"title"`
	Params   string `json:"params"`
	Selected bool   `json:"selected"`
}

type HomeSection struct {
	Title string         `json:"title"`
	Items []SearchResult `json:"items"`
}

type HomePage struct {
	Chips        []Chip        `json:"chips"`
	Sections     []HomeSection `json:"sections"`
	Continuation string        `json:"continuation,omitempty"`
}

type ArtistItem struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle,omitempty"`
	Type       ContentType `json:"type"`
	Thumbnail  string      `json:"thumbnail"`
	Explicit   bool        `json:"explicit"`
	PlaylistID string      `json:"playlist_id,omitempty"`
}

// ArtistSection is one shelf of an artist page. BrowseID and Params, when
// set, fetch the full item list of the shelf.
type ArtistSection struct {
	Title    string       `json:"title"`
	BrowseID string       `json:"browse_id,omitempty"`
	Params   string       `json:"params,omitempty"`
	Items    []ArtistItem `json:"items"`
}

type ArtistDetail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Subscribers string          `json:"subscribers,omitempty"`
	Thumbnail   string          `json:"thumbnail"`
	Sections    []ArtistSection `json:"sections"`
}

type QueueSong struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist,omitempty"`
	ArtistID  string `json:"artist_id,omitempty"`
	Album     string `json:"album,omitempty"`
	AlbumID   string `json:"album_id,omitempty"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration,omitempty"`
	Explicit  bool   `json:"explicit"`
	Selected  bool   `json:"selected"`
}

type AlbumSource string

const (
	AlbumSourceQueue  AlbumSource = "queue"
	AlbumSourceSearch AlbumSource = "search"
)

type AlbumRef struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Source AlbumSource `json:"source"`
}

// PlaybackInfo is a resolved stream. URL is only valid when requested with
// Headers and before ExpiresAt.
type PlaybackInfo struct {
	VideoID   string            `json:"video_id"`
	Title     string            `json:"title"`
	Artist    string            `json:"artist"`
	Thumbnail string            `json:"thumbnail"`
	Duration  time.Duration     `json:"duration"`
	URL       string            `json:"url"`
	Format    AudioFormat       `json:"format"`
	Headers   map[string]string `json:"headers"`
	Persona   string            `json:"persona"`
	ExpiresAt time.Time         `json:"expires_at"`
}
