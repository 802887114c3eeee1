// Package service holds the domain operations. Each builds a request body
// from a persona context, runs it through the request manager under a
// deterministic dedup key and hands the bytes to the parser.
package service

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/innertune/innertube/persona"
	"github.com/xeptore/innertune/innertube/request"
)

// Requester is the subset of the request manager services depend on.
type Requester interface {
	Execute(ctx context.Context, call request.Call) ([]byte, error)
	InvalidatePrefix(prefix string) int
}

type caller struct {
	requests Requester
	personas *persona.Provider
	logger   zerolog.Logger
}

type post struct {
	persona   persona.Persona
	endpoint  string
	query     string
	fields    map[string]any
	key       string
	cacheable bool
}

func (c caller) post(ctx context.Context, p post) ([]byte, error) {
	body := map[string]any{"context": c.personas.Context(p.persona)}
	maps.Copy(body, p.fields)

	b, err := json.Marshal(body)
	if nil != err {
		return nil, fmt.Errorf("marshal %s request body: %v", p.endpoint, err)
	}

	url := c.personas.Endpoint(p.persona, p.endpoint)
	if len(p.query) > 0 {
		url += "&" + p.query
	}

	return c.requests.Execute(ctx, request.Call{
		Method:    http.MethodPost,
		URL:       url,
		Header:    c.personas.Headers(p.persona),
		Body:      b,
		DedupKey:  p.key,
		Cacheable: p.cacheable,
	})
}

// key joins the parts of a dedup key, dropping empty trailing parameters.
func key(endpoint string, params ...string) string {
	parts := []string{endpoint}
	for _, p := range params {
		if len(p) > 0 {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, "_")
}
