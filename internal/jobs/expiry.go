// Package jobs contains background tickers owned by the server process.
package jobs

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quickfetch/quickfetch/internal/session"
)

// ExpiryJob periodically closes an open pairing session that has
// outlived its TTL. It only runs when a TTL is configured; by default
// sessions stay open until replaced or reset.
type ExpiryJob struct {
	store    *session.Store
	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
}

func NewExpiryJob(store *session.Store, ttl, interval time.Duration) *ExpiryJob {
	return &ExpiryJob{
		store:    store,
		ttl:      ttl,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ExpiryJob) Start() {
	go j.run()
	log.Info().
		Dur("ttl", j.ttl).
		Dur("interval", j.interval).
		Msg("session expiry job started")
}

func (j *ExpiryJob) Stop() {
	close(j.done)
	log.Info().Msg("session expiry job stopped")
}

func (j *ExpiryJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *ExpiryJob) sweep() {
	if j.store.CloseExpired(j.ttl) {
		log.Info().Msg("expired pairing session closed")
	}
}
