package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/xeptore/innertune/unit"
)

// MaxResponseBodySize caps how much of a single upstream response is read.
const MaxResponseBodySize = 16 * unit.Mebibyte

var ErrResponseTooLarge = errors.New("response body exceeds size limit")

func ReadResponseBody(resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize+1))
	if nil != err {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(respBody) > MaxResponseBodySize {
		return nil, ErrResponseTooLarge
	}

	return respBody, nil
}

// DrainAndClose drains and closes body. A close error is only logged: by
// then the body was either fully read or the call already failed.
func DrainAndClose(logger zerolog.Logger, body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4*unit.Kibibyte))
	if err := body.Close(); nil != err {
		logger.Debug().Err(err).Msg("Failed to close response body")
	}
}

// LooksLikeHTML reports whether b is an HTML document. Upstream serves
// consent and interstitial pages with a success status on JSON endpoints.
func LooksLikeHTML(b []byte) bool {
	return mimetype.Detect(b).Is("text/html")
}
