package httputil

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"

	"github.com/xeptore/innertune/config"
)

// NewClient builds the single client shared by every upstream call. The
// request timeout bounds waiting for response headers, the resource timeout
// bounds the whole exchange including reading the body.
func NewClient(conf config.Upstream) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if nil != err {
		return nil, fmt.Errorf("create cookie jar: %v", err)
	}

	dialer := &net.Dialer{ //nolint:exhaustruct
		Timeout:   conf.Timeouts.Request.Duration,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{ //nolint:exhaustruct
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   conf.Timeouts.Request.Duration,
		ResponseHeaderTimeout: conf.Timeouts.Request.Duration,
		ForceAttemptHTTP2:     true,
	}

	if conf.Proxy.Enabled() {
		var auth *proxy.Auth
		if len(conf.Proxy.Username) > 0 && len(conf.Proxy.Password) > 0 {
			auth = &proxy.Auth{
				User:     conf.Proxy.Username,
				Password: conf.Proxy.Password,
			}
		}

		sock5, err := proxy.SOCKS5("tcp", conf.Proxy.Address(), auth, dialer)
		if nil != err {
			return nil, fmt.Errorf("create socks5 dialer: %v", err)
		}

		dc, ok := sock5.(proxy.ContextDialer)
		if !ok {
			return nil, errors.New("failed to cast proxy to ContextDialer")
		}
		transport.DialContext = dc.DialContext
	}

	return &http.Client{ //nolint:exhaustruct
		Transport: transport,
		Jar:       jar,
		Timeout:   conf.Timeouts.Resource.Duration,
	}, nil
}
