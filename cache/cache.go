package cache

import (
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/xeptore/innertune/config"
)

// Responses caches raw upstream response bodies by request key. Expired
// entries are never served, even before they are pruned.
type Responses struct {
	c   *ccache.Cache[[]byte]
	ttl time.Duration
}

func NewResponses(conf config.Cache) *Responses {
	c := ccache.New(
		ccache.Configure[[]byte]().
			MaxSize(conf.MaxSize).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Responses{c: c, ttl: conf.ResponseTTL.Duration}
}

func (r *Responses) TTL() time.Duration {
	return r.ttl
}

func (r *Responses) Get(k string) ([]byte, bool) {
	item := r.c.Get(k)
	if nil == item || item.Expired() {
		return nil, false
	}

	return item.Value(), true
}

func (r *Responses) Set(k string, v []byte) {
	r.c.Set(k, v, r.ttl)
}

func (r *Responses) Delete(k string) bool {
	return r.c.Delete(k)
}

func (r *Responses) DeletePrefix(prefix string) int {
	return r.c.DeleteFunc(func(key string, _ *ccache.Item[[]byte]) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (r *Responses) Clear() {
	r.c.Clear()
}

// SweepExpired drops expired entries and returns how many were dropped.
func (r *Responses) SweepExpired() int {
	return r.c.DeleteFunc(func(_ string, item *ccache.Item[[]byte]) bool {
		return item.Expired()
	})
}

func (r *Responses) Stop() {
	r.c.Stop()
}
