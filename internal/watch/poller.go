package watch

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// poller wraps a gocron scheduler that requests a reload on a fixed interval.
// It covers changes fsnotify cannot see, such as env files outside the
// watched directory or network mounts without inotify support.
type poller struct {
	scheduler gocron.Scheduler
	jobID     string
}

func newPoller(interval time.Duration, tick func()) (*poller, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(tick),
		gocron.WithName("config-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create poll job: %w", err)
	}
	return &poller{scheduler: s, jobID: job.ID().String()}, nil
}

func (p *poller) start() { p.scheduler.Start() }

func (p *poller) stop() error { return p.scheduler.Shutdown() }
