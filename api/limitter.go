package api

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/blocknative/opkeys/structs"
)

var ErrTooManyCalls = errors.New("too many calls")

// Limitter keeps a token bucket per client address.
type Limitter struct {
	c         *lru.Cache[string, *rate.Limiter]
	RateLimit rate.Limit
	Burst     int
}

func NewLimitter(ratel int, burst int, cacheSize int) (*Limitter, error) {
	c, err := lru.New[string, *rate.Limiter](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &Limitter{
		c:         c,
		RateLimit: toLimit(int64(ratel)),
		Burst:     burst,
	}, nil
}

// toLimit maps a non positive rate to no limit.
func toLimit(r int64) rate.Limit {
	if r <= 0 {
		return rate.Inf
	}
	return rate.Limit(r)
}

func (l *Limitter) Allow(client string) error {
	lim, ok := l.c.Get(client)
	if !ok {
		lim = rate.NewLimiter(l.RateLimit, l.Burst)
		l.c.Add(client, lim)
	}

	if !lim.Allow() {
		return ErrTooManyCalls
	}
	return nil
}

func (l *Limitter) OnConfigChange(c structs.OldNew) (err error) {
	switch c.Name {
	case "RateLimit":
		if i, ok := c.New.(int64); ok {
			l.RateLimit = toLimit(i)
			l.c.Purge()
		}
	case "Burst":
		if i, ok := c.New.(int64); ok {
			l.Burst = int(i)
			l.c.Purge()
		}
	}
	return nil
}
