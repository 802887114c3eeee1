package stream_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/innertune/config"
	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/stream"
	"github.com/xeptore/innertune/innertube/types"
)

const playable = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {"videoId": "5NV6Rdv1a3I", "title": "Get Lucky", "author": "Daft Punk", "lengthSeconds": "369"},
	"streamingData": {
		"expiresInSeconds": "21540",
		"adaptiveFormats": [
			{"itag": 139, "url": "https://stream/139", "mimeType": "audio/mp4; codecs=\"mp4a.40.5\"", "bitrate": 50000},
			{"itag": 140, "url": "https://stream/140", "mimeType": "audio/mp4; codecs=\"mp4a.40.2\"", "bitrate": 130000},
			{"itag": 137, "url": "https://stream/137", "mimeType": "video/mp4; codecs=\"avc1.640028\"", "bitrate": 4000000, "width": 1920, "height": 1080}
		]
	}
}`

const loginRequired = `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm your age"}}`

type fetcher struct {
	mux       sync.Mutex
	responses map[persona.Name]string
	errs      map[persona.Name]error
	calls     []persona.Name
	poTokens  []string
}

func (f *fetcher) FetchPlayer(_ context.Context, p persona.Persona, _ string, poToken string) ([]byte, error) {
	f.mux.Lock()
	defer f.mux.Unlock()

	f.calls = append(f.calls, p.Name)
	f.poTokens = append(f.poTokens, poToken)

	if err, ok := f.errs[p.Name]; ok {
		return nil, err
	}

	if body, ok := f.responses[p.Name]; ok {
		return []byte(body), nil
	}

	return nil, &apierr.HTTPStatusError{Code: 403}
}

type staticPoToken string

func (s staticPoToken) PoToken(context.Context, persona.Persona, string) (string, error) {
	return string(s), nil
}

func personas() []persona.Persona {
	p := persona.NewProvider(config.Default().Upstream)
	return []persona.Persona{p.AndroidVR(), p.IOS(), p.WebRemix()}
}

func TestResolvePrimarySucceeds(t *testing.T) {
	t.Parallel()

	f := &fetcher{responses: map[persona.Name]string{persona.NameAndroidVR: playable}} //nolint:exhaustruct
	engine := stream.NewEngine(f, personas(), []string{"audio/mp4"}, nil)

	before := time.Now()
	info, err := engine.Resolve(context.Background(), zerolog.Nop(), "5NV6Rdv1a3I")
	require.NoError(t, err)

	require.Equal(t, []persona.Name{persona.NameAndroidVR}, f.calls)
	require.Equal(t, "https://stream/140", info.URL)
	require.Equal(t, 140, info.Format.Itag)
	require.Equal(t, "Get Lucky", info.Title)
	require.Equal(t, "Daft Punk", info.Artist)
	require.Equal(t, 369*time.Second, info.Duration)
	require.Equal(t, string(persona.NameAndroidVR), info.Persona)
	require.Contains(t, info.Headers, "User-Agent")
	require.WithinRange(t, info.ExpiresAt, before.Add(21540*time.Second), time.Now().Add(21540*time.Second))
}

func TestResolveFallsBackToNextPersona(t *testing.T) {
	t.Parallel()

	f := &fetcher{ //nolint:exhaustruct
		responses: map[persona.Name]string{
			persona.NameAndroidVR: loginRequired,
			persona.NameIOS:       playable,
		},
	}
	engine := stream.NewEngine(f, personas(), []string{"audio/mp4"}, stream.NoPoToken{})

	info, err := engine.Resolve(context.Background(), zerolog.Nop(), "5NV6Rdv1a3I")
	require.NoError(t, err)
	require.Equal(t, []persona.Name{persona.NameAndroidVR, persona.NameIOS}, f.calls)
	require.Equal(t, string(persona.NameIOS), info.Persona)

	ios := persona.NewProvider(config.Default().Upstream).IOS()
	require.Equal(t, ios.UserAgent, info.Headers["User-Agent"])
}

func TestResolveExhaustionNamesEveryTriedPersona(t *testing.T) {
	t.Parallel()

	f := &fetcher{ //nolint:exhaustruct
		responses: map[persona.Name]string{persona.NameAndroidVR: loginRequired},
		errs:      map[persona.Name]error{persona.NameIOS: &apierr.NetworkError{Err: errors.New("connection reset"), Timeout: false}},
	}
	engine := stream.NewEngine(f, personas(), []string{"audio/mp4"}, stream.NoPoToken{})

	_, err := engine.Resolve(context.Background(), zerolog.Nop(), "5NV6Rdv1a3I")
	require.Error(t, err)

	var exhausted *apierr.StreamExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, "5NV6Rdv1a3I", exhausted.VideoID)
	require.Equal(t, []string{"ANDROID_VR", "IOS"}, exhausted.Personas())

	var invalid *apierr.InvalidResponseError
	require.ErrorAs(t, exhausted.Attempts[0].Err, &invalid)
	require.Contains(t, invalid.Reason, "LOGIN_REQUIRED")

	require.NotContains(t, f.calls, persona.NameWebRemix, "token gated persona must not be tried without a token")
	require.False(t, apierr.IsRetryable(err))
	require.Equal(t, apierr.MsgUnplayable, apierr.UserMessage(err))
}

func TestResolveTriesTokenGatedPersonaWithToken(t *testing.T) {
	t.Parallel()

	f := &fetcher{responses: map[persona.Name]string{persona.NameWebRemix: playable}} //nolint:exhaustruct
	engine := stream.NewEngine(f, personas(), []string{"audio/mp4"}, staticPoToken("po-token"))

	info, err := engine.Resolve(context.Background(), zerolog.Nop(), "5NV6Rdv1a3I")
	require.NoError(t, err)
	require.Equal(t, string(persona.NameWebRemix), info.Persona)
	require.Equal(t, []persona.Name{persona.NameAndroidVR, persona.NameIOS, persona.NameWebRemix}, f.calls)
	require.Equal(t, []string{"", "", "po-token"}, f.poTokens)
	require.Equal(t, "https://music.youtube.com", info.Headers["Origin"])
}

func TestResolveWithOnlyTokenGatedPersonas(t *testing.T) {
	t.Parallel()

	f := &fetcher{} //nolint:exhaustruct
	p := persona.NewProvider(config.Default().Upstream)
	engine := stream.NewEngine(f, []persona.Persona{p.WebRemix()}, nil, nil)

	_, err := engine.Resolve(context.Background(), zerolog.Nop(), "x")

	var exhausted *apierr.StreamExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Empty(t, exhausted.Attempts)
	require.Empty(t, f.calls)
}

func TestResolveStopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fetcher{errs: map[persona.Name]error{persona.NameAndroidVR: context.Canceled}} //nolint:exhaustruct
	engine := stream.NewEngine(f, personas(), nil, nil)

	_, err := engine.Resolve(ctx, zerolog.Nop(), "x")
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, f.calls, 1)
}

func TestSelectAudioFormat(t *testing.T) {
	t.Parallel()

	audio := func(itag, bitrate int, mime string) types.AudioFormat {
		return types.AudioFormat{ //nolint:exhaustruct
			Itag:     itag,
			URL:      fmt.Sprintf("https://stream/%d", itag),
			MimeType: mime,
			Bitrate:  bitrate,
		}
	}
	const (
		m4a  = `audio/mp4; codecs="mp4a.40.2"`
		opus = `audio/webm; codecs="opus"`
	)

	video := audio(18, 900000, `video/mp4; codecs="avc1.42001E, mp4a.40.2"`)
	sized := audio(22, 800000, m4a)
	sized.Width, sized.Height = 1280, 720
	ciphered := audio(141, 700000, m4a)
	ciphered.URL, ciphered.Ciphered = "", true
	unknownCodec := audio(599, 600000, `audio/mp4; codecs="mp4a.40.99"`)

	tests := []struct {
		name       string
		formats    []types.AudioFormat
		containers []string
		want       int
		ok         bool
	}{
		{
			name:       "highest bitrate among allowed audio",
			formats:    []types.AudioFormat{video, sized, ciphered, unknownCodec, audio(139, 50000, m4a), audio(140, 130000, m4a), audio(251, 160000, opus)},
			containers: []string{"audio/mp4"},
			want:       140,
			ok:         true,
		},
		{
			name:       "any container when unrestricted",
			formats:    []types.AudioFormat{audio(140, 130000, m4a), audio(251, 160000, opus)},
			containers: nil,
			want:       251,
			ok:         true,
		},
		{
			name:       "first seen wins ties",
			formats:    []types.AudioFormat{audio(140, 130000, m4a), audio(141, 130000, m4a)},
			containers: []string{"audio/mp4"},
			want:       140,
			ok:         true,
		},
		{
			name:       "nothing usable",
			formats:    []types.AudioFormat{video, sized, ciphered, audio(251, 160000, opus)},
			containers: []string{"audio/mp4"},
			want:       0,
			ok:         false,
		},
		{
			name:       "empty",
			formats:    nil,
			containers: nil,
			want:       0,
			ok:         false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := stream.SelectAudioFormat(tc.formats, tc.containers)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got.Itag)
		})
	}
}
