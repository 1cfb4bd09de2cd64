package cleanup

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 5 * time.Minute

// IdleReclaimer is the part of the session registry the worker drives.
type IdleReclaimer interface {
	CleanupIdleSessions(ttl time.Duration) int
}

type Worker struct {
	Sessions IdleReclaimer
	Interval time.Duration
	IdleTTL  time.Duration

	stop chan struct{}
}

func NewWorker(sessions IdleReclaimer, interval, idleTTL time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		Sessions: sessions,
		Interval: interval,
		IdleTTL:  idleTTL,
		stop:     make(chan struct{}),
	}
}

// Start initiates the background ticker
func (w *Worker) Start() {
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.RunOnce()
			case <-w.stop:
				return
			}
		}
	}()
	log.Info().Dur("interval", w.Interval).Dur("idle_ttl", w.IdleTTL).Msg("[CLEANUP] Background worker started")
}

func (w *Worker) Stop() {
	close(w.stop)
}

// RunOnce reclaims idle sessions and reports how many were dropped.
func (w *Worker) RunOnce() int {
	removed := w.Sessions.CleanupIdleSessions(w.IdleTTL)
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("[CLEANUP] Removed idle sessions")
	}
	return removed
}
