package stream

import (
	"context"

	"github.com/xeptore/innertune/innertube/persona"
)

// PoTokenProvider issues proof of origin tokens for personas whose playback
// requests are rejected without one.
type PoTokenProvider interface {
	PoToken(ctx context.Context, p persona.Persona, videoID string) (string, error)
}

// NoPoToken never yields a token, so the engine only tries personas that
// do not require one.
type NoPoToken struct{}

func (NoPoToken) PoToken(context.Context, persona.Persona, string) (string, error) {
	return "", nil
}
