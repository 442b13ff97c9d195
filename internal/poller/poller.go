// Package poller implements the desktop-side polling loop: ask the local
// server whether content has arrived, back off on transport failures,
// and hand the content over exactly once.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quickfetch/quickfetch/internal/config"
	"github.com/quickfetch/quickfetch/internal/session"
)

// DeliverFunc receives the content once the server reports it.
type DeliverFunc func(status session.Status)

// Config tunes a Poller. Zero values fall back to the standard cadence.
type Config struct {
	BaseURL       string
	Interval      time.Duration
	ErrorInterval time.Duration
	Client        *http.Client
}

type Poller struct {
	baseURL     string
	interval    time.Duration
	errInterval time.Duration
	client      *http.Client
	deliver     DeliverFunc
}

func New(cfg Config, deliver DeliverFunc) *Poller {
	p := &Poller{
		baseURL:     cfg.BaseURL,
		interval:    cfg.Interval,
		errInterval: cfg.ErrorInterval,
		client:      cfg.Client,
		deliver:     deliver,
	}
	if p.interval <= 0 {
		p.interval = config.PollInterval
	}
	if p.errInterval <= 0 {
		p.errInterval = config.PollErrorInterval
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 10 * time.Second}
	}
	return p
}

// Run polls until content arrives or ctx is cancelled. Transport
// failures are retried at the slower error cadence. On cancellation the
// active session is reset on the server so a late submission cannot land
// in an abandoned session.
func (p *Poller) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.reset()
			return ctx.Err()
		case <-timer.C:
		}

		status, err := p.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.reset()
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("poll failed, backing off")
			timer.Reset(p.errInterval)
			continue
		}

		if status.Received {
			p.deliver(status)
			return nil
		}
		timer.Reset(p.interval)
	}
}

func (p *Poller) poll(ctx context.Context) (session.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/poll", nil)
	if err != nil {
		return session.Status{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return session.Status{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session.Status{}, fmt.Errorf("poll: unexpected status %d", resp.StatusCode)
	}

	var status session.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return session.Status{}, fmt.Errorf("poll: decode response: %w", err)
	}
	return status, nil
}

// reset uses its own deadline because the caller's context is already
// cancelled by the time it runs.
func (p *Poller) reset() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/reset", nil)
	if err != nil {
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("session reset failed")
		return
	}
	resp.Body.Close()
}
