// Package receiver runs the background polling loop that drains inbound
// host messages.
package receiver

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/metrics"
)

// DefaultInterval is the pause between two polls.
const DefaultInterval = time.Millisecond

// Poller receives and dispatches at most one message per call.
type Poller interface {
	PollOnce() error
}

// Config holds receiver configuration
type Config struct {
	Interval time.Duration
	Metrics  *metrics.Metrics
}

// Receiver polls a Poller on a ticker until stopped. It can be started again
// after Stop.
type Receiver struct {
	poller  Poller
	config  Config
	logger  zerolog.Logger
	errLog  zerolog.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a stopped receiver
func New(poller Poller, cfg Config, logger zerolog.Logger) *Receiver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	l := logger.With().Str("component", "receiver").Logger()
	return &Receiver{
		poller: poller,
		config: cfg,
		logger: l,
		// a dead host fails every tick
		errLog:  l.Sample(&zerolog.BurstSampler{Burst: 5, Period: time.Second}),
		metrics: cfg.Metrics,
	}
}

// Running reports whether the loop is active.
func (r *Receiver) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start begins polling in a goroutine. It is a no-op when already running.
func (r *Receiver) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.stopCh = make(chan struct{})
	r.stoppedCh = make(chan struct{})
	r.running = true
	go r.run(r.stopCh, r.stoppedCh)

	r.logger.Debug().Dur("interval", r.config.Interval).Msg("Message polling started")
}

// Stop signals the loop to stop and waits for it to finish. It is a no-op
// when not running. Stop must not be called from inside a poll.
func (r *Receiver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	close(r.stopCh)
	<-r.stoppedCh
	r.running = false

	r.logger.Debug().Msg("Message polling stopped")
}

func (r *Receiver) run(stopCh <-chan struct{}, stoppedCh chan<- struct{}) {
	defer close(stoppedCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.poll()
		}
	}
}

func (r *Receiver) poll() {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.PollError()
			r.errLog.Error().Interface("panic", p).Msg("Message handler panicked")
		}
	}()

	if err := r.poller.PollOnce(); err != nil {
		r.metrics.PollError()
		r.errLog.Warn().Err(err).Msg("Poll failed")
	}
}
