package types

import (
	"fmt"
	"strings"
)

// AudioFormat is one entry of a player response's adaptive formats.
type AudioFormat struct {
	Itag          int    `json:"itag"`
	URL           string `json:"-"`
	MimeType      string `json:"mime_type"`
	Bitrate       int    `json:"bitrate"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	ContentLength string `json:"content_length,omitempty"`
	AudioQuality  string `json:"audio_quality,omitempty"`
	Ciphered      bool   `json:"ciphered,omitempty"`
}

// Container returns the mime type without its codecs parameter, e.g.
// "audio/mp4" for `audio/mp4; codecs="mp4a.40.2"`.
func (f AudioFormat) Container() string {
	container, _, _ := strings.Cut(f.MimeType, ";")
	return strings.TrimSpace(container)
}

func (f AudioFormat) Codec() string {
	_, params, ok := strings.Cut(f.MimeType, ";")
	if !ok {
		return ""
	}

	_, codecs, ok := strings.Cut(params, "codecs=")
	if !ok {
		return ""
	}

	return strings.Trim(strings.TrimSpace(codecs), `"`)
}

func (f AudioFormat) IsVideo() bool {
	return f.Width > 0 || f.Height > 0 || strings.HasPrefix(f.MimeType, "video/")
}

func (f AudioFormat) Ext() (string, error) {
	return InferExt(f.Container(), f.Codec())
}

func InferExt(container, codec string) (string, error) {
	switch container {
	case "audio/mp4":
		switch strings.ToLower(codec) {
		case "mp4a.40.2", "mp4a.40.5", "aac", "ec-3", "ac-3":
			return "m4a", nil
		case "flac":
			return "flac", nil
		default:
			return "", fmt.Errorf("unsupported codec %q for audio/mp4 mime type", codec)
		}
	case "audio/webm":
		switch strings.ToLower(codec) {
		case "opus":
			return "opus", nil
		case "vorbis":
			return "webm", nil
		default:
			return "", fmt.Errorf("unsupported codec %q for audio/webm mime type", codec)
		}
	default:
		return "", fmt.Errorf("unsupported mime type %q", container)
	}
}
