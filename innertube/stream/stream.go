package stream

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/parse"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/types"
)

var ErrNoAudioFormat = errors.New("no usable audio-only format")

// Fetcher issues one player request as persona. poToken is empty for
// personas that do not require one.
type Fetcher interface {
	FetchPlayer(ctx context.Context, p persona.Persona, videoID, poToken string) ([]byte, error)
}

type Engine struct {
	fetcher    Fetcher
	personas   []persona.Persona
	containers []string
	poTokens   PoTokenProvider
	now        func() time.Time
}

// NewEngine returns an engine trying personas in order: the first is the
// primary attempt, the rest are fallbacks.
func NewEngine(fetcher Fetcher, personas []persona.Persona, containers []string, poTokens PoTokenProvider) *Engine {
	return &Engine{
		fetcher:    fetcher,
		personas:   personas,
		containers: containers,
		poTokens:   lo.Ternary[PoTokenProvider](nil != poTokens, poTokens, NoPoToken{}),
		now:        time.Now,
	}
}

// Resolve returns a playable audio stream for videoID, or a
// *apierr.StreamExhaustedError naming every persona tried.
func (e *Engine) Resolve(ctx context.Context, logger zerolog.Logger, videoID string) (types.PlaybackInfo, error) {
	logger = logger.With().Str("video_id", videoID).Logger()

	var attempts []apierr.Attempt
	for _, p := range e.personas {
		var poToken string
		if p.RequiresPoToken {
			tok, err := e.poTokens.PoToken(ctx, p, videoID)
			if nil != err || tok == "" {
				logger.Debug().Err(err).Str("persona", string(p.Name)).Msg("Skipping persona requiring proof of origin token")
				continue
			}
			poToken = tok
		}

		info, err := e.attempt(ctx, p, videoID, poToken)
		if nil == err {
			logger.Debug().Str("persona", string(p.Name)).Int("itag", info.Format.Itag).Msg("Resolved stream")
			return info, nil
		}

		if nil != ctx.Err() {
			return types.PlaybackInfo{}, ctx.Err() //nolint:exhaustruct
		}

		logger.Debug().Err(err).Str("persona", string(p.Name)).Msg("Persona failed to yield a stream")
		attempts = append(attempts, apierr.Attempt{Persona: string(p.Name), Err: err})
	}

	return types.PlaybackInfo{}, &apierr.StreamExhaustedError{VideoID: videoID, Attempts: attempts} //nolint:exhaustruct
}

func (e *Engine) attempt(ctx context.Context, p persona.Persona, videoID, poToken string) (types.PlaybackInfo, error) {
	b, err := e.fetcher.FetchPlayer(ctx, p, videoID, poToken)
	if nil != err {
		return types.PlaybackInfo{}, err //nolint:exhaustruct
	}

	resp, err := parse.Player(b)
	if nil != err {
		return types.PlaybackInfo{}, err //nolint:exhaustruct
	}

	if !resp.Playable() {
		return types.PlaybackInfo{}, &apierr.InvalidResponseError{ //nolint:exhaustruct
			Reason: fmt.Sprintf("playability status %s: %s", resp.Status, resp.Reason),
		}
	}

	format, ok := SelectAudioFormat(resp.Formats, e.containers)
	if !ok {
		return types.PlaybackInfo{}, &apierr.InvalidResponseError{Reason: ErrNoAudioFormat.Error()} //nolint:exhaustruct
	}

	info := types.PlaybackInfo{ //nolint:exhaustruct
		VideoID:   lo.Ternary(resp.VideoID != "", resp.VideoID, videoID),
		Title:     resp.Title,
		Artist:    resp.Author,
		Thumbnail: resp.Thumbnail,
		Duration:  resp.Duration,
		URL:       format.URL,
		Format:    format,
		Headers:   p.PlaybackHeaders(),
		Persona:   string(p.Name),
	}
	if resp.ExpiresIn > 0 {
		info.ExpiresAt = e.now().Add(resp.ExpiresIn).UTC()
	}

	return info, nil
}

// SelectAudioFormat picks the highest bitrate audio-only format with a
// direct URL whose container is allowed and whose codec is known. Ties go
// to the first seen. An empty containers list allows any container.
func SelectAudioFormat(formats []types.AudioFormat, containers []string) (types.AudioFormat, bool) {
	candidates := lo.Filter(formats, func(f types.AudioFormat, _ int) bool {
		if f.IsVideo() || f.Ciphered || f.URL == "" {
			return false
		}

		if len(containers) > 0 && !slices.Contains(containers, f.Container()) {
			return false
		}

		_, err := f.Ext()
		return nil == err
	})
	if len(candidates) == 0 {
		return types.AudioFormat{}, false //nolint:exhaustruct
	}

	return lo.MaxBy(candidates, func(a, b types.AudioFormat) bool { return a.Bitrate > b.Bitrate }), true
}
