package redact

import (
	"math"
	"net/http"
	"strings"
)

var sensitiveHeaders = []string{
	"X-Goog-Visitor-Id",
	"Cookie",
	"Authorization",
	"Proxy-Authorization",
}

// String keeps the first and last quarter of s and masks the middle.
func String(s string) string {
	l := len(s)

	var flag int
	if l%4 != 0 {
		flag = 1
	}

	return s[0:int(math.Floor(float64(l)*.25))] +
		strings.Repeat("*", int(math.RoundToEven(float64(l)*.5))+(1&flag)) +
		s[int(math.Floor(float64(l)*.75))+(1&flag):]
}

// Headers returns a loggable copy of h with identity bearing values masked.
func Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		v := h.Get(k)
		for _, s := range sensitiveHeaders {
			if http.CanonicalHeaderKey(s) == http.CanonicalHeaderKey(k) {
				v = String(v)
				break
			}
		}
		out[http.CanonicalHeaderKey(k)] = v
	}

	return out
}
