package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/xeptore/innertune/redact"
)

const (
	EnvVisitorData   = "INNERTUNE_VISITOR_DATA"
	EnvProxyPassword = "INNERTUNE_PROXY_PASSWORD"
)

var knownPersonas = []string{"WEB_REMIX", "ANDROID_VR", "IOS"}

type Config struct {
	Log      Log      `yaml:"log"`
	Upstream Upstream `yaml:"upstream"`
	Cache    Cache    `yaml:"cache"`
	Token    Token    `yaml:"token"`
	Retry    Retry    `yaml:"retry"`
	Stream   Stream   `yaml:"stream"`
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("log", c.Log.ToDict()).
		Dict("upstream", c.Upstream.ToDict()).
		Dict("cache", c.Cache.ToDict()).
		Dict("token", c.Token.ToDict()).
		Dict("retry", c.Retry.ToDict()).
		Dict("stream", c.Stream.ToDict())
}

// SetDefaults fills every unset field. It is exported for callers that
// build a Config in code instead of loading it from a file.
func (c *Config) SetDefaults() {
	c.Log.setDefaults()
	c.Upstream.setDefaults()
	c.Cache.setDefaults()
	c.Token.setDefaults()
	c.Retry.setDefaults()
	c.Stream.setDefaults()
}

func (c *Config) Validate() error {
	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	if err := c.Upstream.validate(); nil != err {
		return fmt.Errorf("upstream config validation failed: %v", err)
	}

	if err := c.Cache.validate(); nil != err {
		return fmt.Errorf("cache config validation failed: %v", err)
	}

	if err := c.Token.validate(); nil != err {
		return fmt.Errorf("token config validation failed: %v", err)
	}

	if err := c.Retry.validate(); nil != err {
		return fmt.Errorf("retry config validation failed: %v", err)
	}

	if err := c.Stream.validate(); nil != err {
		return fmt.Errorf("stream config validation failed: %v", err)
	}

	return nil
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "pretty"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: trace, debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty"}, c.Format) {
		return fmt.Errorf("format must be 'json' or 'pretty', got: %s", c.Format)
	}

	return nil
}

type Upstream struct {
	MusicBaseURL  string    `yaml:"music_base_url"`
	PlayerBaseURL string    `yaml:"player_base_url"`
	PublicPageURL string    `yaml:"public_page_url"`
	Language      string    `yaml:"language"`
	Region        string    `yaml:"region"`
	Timeouts      Timeouts  `yaml:"timeouts"`
	RateLimit     RateLimit `yaml:"rate_limit"`
	Proxy         Proxy     `yaml:"proxy"`
}

func (c *Upstream) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("music_base_url", c.MusicBaseURL).
		Str("player_base_url", c.PlayerBaseURL).
		Str("public_page_url", c.PublicPageURL).
		Str("language", c.Language).
		Str("region", c.Region).
		Dict("timeouts", c.Timeouts.ToDict()).
		Dict("rate_limit", c.RateLimit.ToDict()).
		Dict("proxy", c.Proxy.ToDict())
}

func (c *Upstream) setDefaults() {
	if c.MusicBaseURL == "" {
		c.MusicBaseURL = "https://music.youtube.com/youtubei/v1"
	}

	if c.PlayerBaseURL == "" {
		c.PlayerBaseURL = "https://youtubei.googleapis.com/youtubei/v1"
	}

	if c.PublicPageURL == "" {
		c.PublicPageURL = "https://music.youtube.com/"
	}

	if c.Language == "" {
		c.Language = "en"
	}

	if c.Region == "" {
		c.Region = "US"
	}

	c.Timeouts.setDefaults()
	c.RateLimit.setDefaults()
}

func (c *Upstream) validate() error {
	for k, v := range map[string]string{
		"music_base_url":  c.MusicBaseURL,
		"player_base_url": c.PlayerBaseURL,
		"public_page_url": c.PublicPageURL,
	} {
		u, err := url.Parse(v)
		if nil != err {
			return fmt.Errorf("%s is not a valid url: %v", k, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) url, got: %s", k, v)
		}
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	if err := c.RateLimit.validate(); nil != err {
		return fmt.Errorf("rate_limit config validation failed: %v", err)
	}

	if err := c.Proxy.validate(); nil != err {
		return fmt.Errorf("proxy config validation failed: %v", err)
	}

	return nil
}

type Timeouts struct {
	Request  Duration `yaml:"request"`
	Resource Duration `yaml:"resource"`
}

func (c *Timeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("request", c.Request.String()).
		Str("resource", c.Resource.String())
}

func (c *Timeouts) setDefaults() {
	if c.Request.Duration == 0 {
		c.Request.Duration = 10 * time.Second
	}

	if c.Resource.Duration == 0 {
		c.Resource.Duration = 30 * time.Second
	}
}

func (c *Timeouts) validate() error {
	if c.Request.Duration < 0 {
		return errors.New("request must be greater than 0")
	}

	if c.Resource.Duration < c.Request.Duration {
		return errors.New("resource must not be less than request")
	}

	return nil
}

type RateLimit struct {
	Every Duration `yaml:"every"`
	Burst int      `yaml:"burst"`
}

func (c *RateLimit) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("every", c.Every.String()).
		Int("burst", c.Burst)
}

func (c *RateLimit) setDefaults() {
	if c.Every.Duration == 0 {
		c.Every.Duration = 100 * time.Millisecond
	}

	if c.Burst == 0 {
		c.Burst = 5
	}
}

func (c *RateLimit) validate() error {
	if c.Every.Duration < 0 {
		return errors.New("every must be greater than 0")
	}

	if c.Burst < 0 {
		return errors.New("burst must be greater than 0")
	}

	return nil
}

type Proxy struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"-"`
}

func (c *Proxy) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("host", c.Host).
		Int("port", c.Port).
		Str("username", c.Username).
		Str("password", lo.Ternary(len(c.Password) > 0, redact.String(c.Password), ""))
}

func (c *Proxy) Enabled() bool {
	return len(c.Host) > 0 && c.Port > 0
}

func (c *Proxy) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *Proxy) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", c.Port)
	}

	if len(c.Host) > 0 && c.Port == 0 {
		return errors.New("port is required when host is set")
	}

	return nil
}

type Cache struct {
	ResponseTTL Duration `yaml:"response_ttl"`
	MaxSize     int64    `yaml:"max_size"`
}

func (c *Cache) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("response_ttl", c.ResponseTTL.String()).
		Int64("max_size", c.MaxSize)
}

func (c *Cache) setDefaults() {
	if c.ResponseTTL.Duration == 0 {
		c.ResponseTTL.Duration = 30 * time.Second
	}

	if c.MaxSize == 0 {
		c.MaxSize = 500
	}
}

func (c *Cache) validate() error {
	if c.ResponseTTL.Duration < 0 {
		return errors.New("response_ttl must be greater than 0")
	}

	if c.MaxSize < 0 {
		return errors.New("max_size must be greater than 0")
	}

	return nil
}

type Token struct {
	Cooldown    Duration `yaml:"cooldown"`
	StoragePath string   `yaml:"storage_path"`
	VisitorData string   `yaml:"visitor_data"`
}

func (c *Token) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("cooldown", c.Cooldown.String()).
		Str("storage_path", c.StoragePath).
		Str("visitor_data", lo.Ternary(len(c.VisitorData) > 0, redact.String(c.VisitorData), ""))
}

func (c *Token) setDefaults() {
	if c.Cooldown.Duration == 0 {
		c.Cooldown.Duration = time.Hour
	}

	if c.StoragePath == "" {
		c.StoragePath = "innertune.db"
	}
}

func (c *Token) validate() error {
	if c.Cooldown.Duration < 0 {
		return errors.New("cooldown must be greater than 0")
	}

	return nil
}

type Retry struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
}

func (c *Retry) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("max_attempts", c.MaxAttempts).
		Str("initial_delay", c.InitialDelay.String())
}

func (c *Retry) setDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}

	if c.InitialDelay.Duration == 0 {
		c.InitialDelay.Duration = time.Second
	}
}

func (c *Retry) validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}

	if c.InitialDelay.Duration < 0 {
		return errors.New("initial_delay must be greater than 0")
	}

	return nil
}

type Stream struct {
	Personas   []string `yaml:"personas"`
	Containers []string `yaml:"containers"`
}

func (c *Stream) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Strs("personas", c.Personas).
		Strs("containers", c.Containers)
}

func (c *Stream) setDefaults() {
	if len(c.Personas) == 0 {
		c.Personas = []string{"ANDROID_VR", "IOS", "WEB_REMIX"}
	}

	if len(c.Containers) == 0 {
		c.Containers = []string{"audio/mp4"}
	}
}

func (c *Stream) validate() error {
	for _, p := range c.Personas {
		if !slices.Contains(knownPersonas, p) {
			return fmt.Errorf("personas contains unknown persona: %s", p)
		}
	}

	if len(lo.Uniq(c.Personas)) != len(c.Personas) {
		return errors.New("personas must not contain duplicates")
	}

	return nil
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("failed to parse duration: %v", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration: %v", err)
	}

	d.Duration = parsed

	return nil
}

// Default returns a fully defaulted configuration, as if loaded from an
// empty file.
func Default() *Config {
	var conf Config
	conf.SetDefaults()

	return &conf
}

// Load reads filename, falling back to config.yaml. A missing config.yaml is
// not an error when no filename was given; defaults and environment
// overrides apply as if the file were empty.
func Load(filename string) (*Config, error) {
	explicit := len(filename) > 0
	filename = lo.Ternary(explicit, filename, "config.yaml")

	data, err := os.ReadFile(filename)
	if nil != err {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %v", filename, err)
		}
		data = nil
	}

	var conf Config
	if err := yaml.Unmarshal(data, &conf); nil != err {
		return nil, fmt.Errorf("failed to parse config file %s: %v", filename, err)
	}

	if v := os.Getenv(EnvVisitorData); len(v) > 0 {
		conf.Token.VisitorData = v
	}
	conf.Upstream.Proxy.Password = os.Getenv(EnvProxyPassword)
	conf.SetDefaults()

	if err := conf.Validate(); nil != err {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return &conf, nil
}
