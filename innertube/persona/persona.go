package persona

import (
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/xeptore/innertune/config"
)

type Name string

const (
	NameWebRemix  Name = "WEB_REMIX"
	NameAndroidVR Name = "ANDROID_VR"
	NameIOS       Name = "IOS"
)

// DefaultVisitorData is served until a refreshed or persisted token is known.
const DefaultVisitorData = "CgtsZG1ySnZiQWtSbyiMjuGSBg%3D%3D"

const (
	webRemixVersion   = "1.20241127.01.00"
	webRemixUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	androidVRVersion   = "1.60.19"
	androidVRUserAgent = "com.google.android.apps.youtube.vr.oculus/" + androidVRVersion + " (Linux; U; Android 12L; eureka-user Build/SQ3A.220605.009.A1) gzip"

	iosVersion   = "20.10.4"
	iosUserAgent = "com.google.ios.youtube/" + iosVersion + " (iPhone16,2; U; CPU iOS 18_3_2 like Mac OS X;)"
)

// Persona is one emulated upstream client. Values are immutable; the
// visitor token is supplied by the Provider at request time.
type Persona struct {
	Name            Name
	NameID          int
	Version         string
	UserAgent       string
	BaseURL         string
	RequiresPoToken bool
	Web             bool
	// Client carries the persona specific fields of the request context
	// client object, besides name, version, language and region.
	Client map[string]any
}

// PlaybackHeaders are the headers media URLs issued to this persona must
// be requested with.
func (p Persona) PlaybackHeaders() map[string]string {
	h := map[string]string{"User-Agent": p.UserAgent}
	if p.Web {
		h["Origin"] = "https://music.youtube.com"
		h["Referer"] = "https://music.youtube.com/"
	}

	return h
}

type Provider struct {
	visitor       atomic.Pointer[string]
	language      string
	region        string
	musicBaseURL  string
	playerBaseURL string
}

func NewProvider(conf config.Upstream) *Provider {
	p := &Provider{ //nolint:exhaustruct
		language:      conf.Language,
		region:        conf.Region,
		musicBaseURL:  conf.MusicBaseURL,
		playerBaseURL: conf.PlayerBaseURL,
	}
	p.SetVisitorData(DefaultVisitorData)

	return p
}

func (p *Provider) VisitorData() string {
	return *p.visitor.Load()
}

func (p *Provider) SetVisitorData(s string) {
	p.visitor.Store(&s)
}

func (p *Provider) WebRemix() Persona {
	return Persona{
		Name:            NameWebRemix,
		NameID:          67,
		Version:         webRemixVersion,
		UserAgent:       webRemixUserAgent,
		BaseURL:         p.musicBaseURL,
		RequiresPoToken: true,
		Web:             true,
		Client: map[string]any{
			"platform":         "DESKTOP",
			"clientFormFactor": "UNKNOWN_FORM_FACTOR",
			"userAgent":        webRemixUserAgent,
		},
	}
}

func (p *Provider) AndroidVR() Persona {
	return Persona{
		Name:            NameAndroidVR,
		NameID:          28,
		Version:         androidVRVersion,
		UserAgent:       androidVRUserAgent,
		BaseURL:         p.playerBaseURL,
		RequiresPoToken: false,
		Web:             false,
		Client: map[string]any{
			"deviceMake":        "Oculus",
			"deviceModel":       "Quest 3",
			"androidSdkVersion": 32,
			"osName":            "Android",
			"osVersion":         "12L",
			"userAgent":         androidVRUserAgent,
		},
	}
}

func (p *Provider) IOS() Persona {
	return Persona{
		Name:            NameIOS,
		NameID:          5,
		Version:         iosVersion,
		UserAgent:       iosUserAgent,
		BaseURL:         p.playerBaseURL,
		RequiresPoToken: false,
		Web:             false,
		Client: map[string]any{
			"deviceMake":  "Apple",
			"deviceModel": "iPhone16,2",
			"osName":      "iPhone",
			"osVersion":   "18.3.2.22D82",
			"userAgent":   iosUserAgent,
		},
	}
}

func (p *Provider) ByName(name string) (Persona, bool) {
	switch Name(name) {
	case NameWebRemix:
		return p.WebRemix(), true
	case NameAndroidVR:
		return p.AndroidVR(), true
	case NameIOS:
		return p.IOS(), true
	default:
		return Persona{}, false //nolint:exhaustruct
	}
}

// Headers returns the request headers for persona, carrying the current
// visitor token.
func (p *Provider) Headers(pp Persona) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", p.language)
	h.Set("User-Agent", pp.UserAgent)
	h.Set("X-YouTube-Client-Name", strconv.Itoa(pp.NameID))
	h.Set("X-YouTube-Client-Version", pp.Version)
	h.Set("X-Goog-Visitor-Id", p.VisitorData())
	if pp.Web {
		h.Set("Origin", "https://music.youtube.com")
		h.Set("Referer", "https://music.youtube.com/")
	}

	return h
}

// Context returns a fresh request context object for persona.
func (p *Provider) Context(pp Persona) map[string]any {
	client := maps.Clone(pp.Client)
	if nil == client {
		client = map[string]any{}
	}
	client["clientName"] = string(pp.Name)
	client["clientVersion"] = pp.Version
	client["hl"] = p.language
	client["gl"] = p.region
	client["visitorData"] = p.VisitorData()

	return map[string]any{
		"client": client,
		"user":   map[string]any{"lockedSafetyMode": false},
	}
}

// Endpoint returns the URL of endpoint (e.g. "search", "player") on the
// persona's host with pretty printing disabled.
func (p *Provider) Endpoint(pp Persona, endpoint string) string {
	u, err := url.JoinPath(pp.BaseURL, endpoint)
	if nil != err {
		u = pp.BaseURL + "/" + endpoint
	}

	return u + "?prettyPrint=false"
}
