// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// FlushFunc periodically snapshots the trunking SM's in-memory tables into
// the Store; internal/trunking.Machine is the caller's source for it.
type FlushFunc func(*Store) error

// Scheduler periodically flushes durable trunking state, the same
// gocron.Scheduler wrapper shape as the teacher's netscheduler.NetScheduler,
// generalized from per-net jobs to a single recurring flush job.
type Scheduler struct {
	scheduler gocron.Scheduler
	store     *Store
}

// NewScheduler builds a Scheduler backed by store, running flush every
// interval.
func NewScheduler(store *Store, interval time.Duration, flush FlushFunc) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create persistence scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := flush(store); err != nil {
				slog.Error("failed to flush trunking state", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule persistence flush job: %w", err)
	}

	return &Scheduler{scheduler: s, store: store}, nil
}

// Start starts the underlying gocron scheduler.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down persistence scheduler: %w", err)
	}
	return nil
}
