package parse

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/types"
)

const PlayabilityOK = "OK"

type rawFormat struct {
	Itag            int    `json:"itag"`
	URL             string `json:"url"`
	MimeType        string `json:"mimeType"`
	Bitrate         int    `json:"bitrate"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	ContentLength   string `json:"contentLength"`
	AudioQuality    string `json:"audioQuality"`
	SignatureCipher string `json:"signatureCipher"`
	Cipher          string `json:"cipher"`
}

type playerEnvelope struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID       string        `json:"videoId"`
		Title         string        `json:"title"`
		Author        string        `json:"author"`
		LengthSeconds string        `json:"lengthSeconds"`
		Thumbnail     thumbnailList `json:"thumbnail"`
	} `json:"videoDetails"`
	StreamingData *struct {
		ExpiresInSeconds string      `json:"expiresInSeconds"`
		Formats          []rawFormat `json:"formats"`
		AdaptiveFormats  []rawFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

// PlayerResponse is the decoded part of a player response the stream
// engine works with. Formats lists adaptive formats before muxed ones.
type PlayerResponse struct {
	Status    string
	Reason    string
	VideoID   string
	Title     string
	Author    string
	Thumbnail string
	Duration  time.Duration
	ExpiresIn time.Duration
	Formats   []types.AudioFormat
}

func (p PlayerResponse) Playable() bool {
	return p.Status == PlayabilityOK
}

func Player(b []byte) (PlayerResponse, error) {
	if !gjson.ValidBytes(b) {
		return PlayerResponse{}, &apierr.ParseError{Shape: "player", Missing: "valid json document"} //nolint:exhaustruct
	}

	if !gjson.GetBytes(b, "playabilityStatus.status").Exists() {
		return PlayerResponse{}, &apierr.ParseError{Shape: "player", Missing: "playabilityStatus.status"} //nolint:exhaustruct
	}

	var env playerEnvelope
	if err := json.Unmarshal(b, &env); nil != err {
		return PlayerResponse{}, &apierr.ParseError{Shape: "player", Missing: "well typed player fields"} //nolint:exhaustruct
	}

	out := PlayerResponse{ //nolint:exhaustruct
		Status: env.PlayabilityStatus.Status,
		Reason: env.PlayabilityStatus.Reason,
	}

	if d := env.VideoDetails; nil != d {
		out.VideoID = d.VideoID
		out.Title = d.Title
		out.Author = d.Author
		out.Thumbnail = LastThumbnail(d.Thumbnail.Thumbnails)
		if secs, err := strconv.Atoi(d.LengthSeconds); nil == err {
			out.Duration = time.Duration(secs) * time.Second
		}
	}

	if sd := env.StreamingData; nil != sd {
		if secs, err := strconv.Atoi(sd.ExpiresInSeconds); nil == err {
			out.ExpiresIn = time.Duration(secs) * time.Second
		}

		out.Formats = lo.Map(append(sd.AdaptiveFormats, sd.Formats...), func(f rawFormat, _ int) types.AudioFormat {
			return types.AudioFormat{
				Itag:          f.Itag,
				URL:           f.URL,
				MimeType:      f.MimeType,
				Bitrate:       f.Bitrate,
				Width:         f.Width,
				Height:        f.Height,
				ContentLength: f.ContentLength,
				AudioQuality:  f.AudioQuality,
				Ciphered:      f.URL == "" && (f.SignatureCipher != "" || f.Cipher != ""),
			}
		})
	}

	return out, nil
}
