// Package schedule runs the repeating meme post job.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PostFunc posts one meme to chatID
type PostFunc func(ctx context.Context, chatID int64) error

// DefaultStopTimeout bounds how long Stop waits for an in-flight post
const DefaultStopTimeout = 30 * time.Second

// Poster runs at most one repeating post job. Starting a new job cancels
// the previous one first.
//
// A post in flight when its job is cancelled may keep running until its
// upload returns. Neither Start nor the accessors wait for it; Stop waits
// up to StopTimeout.
type Poster struct {
	post   PostFunc
	logger zerolog.Logger

	// StopTimeout bounds the wait in Stop. Zero means DefaultStopTimeout.
	StopTimeout time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	chatID   int64
	interval time.Duration

	statsMu  sync.Mutex
	posts    int
	lastPost time.Time
}

// NewPoster creates an idle poster
func NewPoster(post PostFunc, logger zerolog.Logger) *Poster {
	return &Poster{
		post:   post,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

// Start replaces any running job with one that posts to chatID every
// interval. The first post fires one interval from now.
func (p *Poster) Start(chatID int64, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.detachLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.chatID = chatID
	p.interval = interval

	go p.run(ctx, p.done, chatID, interval)

	p.logger.Info().Int64("chat_id", chatID).Dur("interval", interval).Msg("Scheduled meme posts")
}

// Stop cancels the running job, if any, and waits for it to return or for
// StopTimeout to pass.
func (p *Poster) Stop() {
	p.mu.Lock()
	done := p.detachLocked()
	timeout := p.StopTimeout
	p.mu.Unlock()

	if done == nil {
		return
	}
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		p.logger.Warn().Dur("timeout", timeout).Msg("Scheduled post still in flight after stop")
	}
}

// detachLocked cancels the current job and returns its done channel
func (p *Poster) detachLocked() chan struct{} {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	done := p.done
	p.cancel = nil
	p.done = nil
	p.logger.Debug().Int64("chat_id", p.chatID).Msg("Stopped scheduled posts")
	return done
}

// Running reports whether a job is scheduled
func (p *Poster) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// ChatID returns the chat the current or last job posts to
func (p *Poster) ChatID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chatID
}

// Interval returns the current or last job's interval
func (p *Poster) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Stats returns how many ticks have posted and when the last one did
func (p *Poster) Stats() (int, time.Time) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.posts, p.lastPost
}

func (p *Poster) run(ctx context.Context, done chan struct{}, chatID int64, interval time.Duration) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, chatID)
		}
	}
}

func (p *Poster) tick(ctx context.Context, chatID int64) {
	if chatID == 0 {
		p.logger.Warn().Msg("Group chat ID not set. Skipping meme post.")
		return
	}

	start := time.Now()
	err := p.post(ctx, chatID)
	if err != nil {
		p.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Scheduled meme post failed")
	} else {
		p.logger.Debug().Int64("chat_id", chatID).Dur("duration", time.Since(start)).Msg("Scheduled meme posted")
	}

	p.statsMu.Lock()
	p.posts++
	p.lastPost = start
	p.statsMu.Unlock()
}
