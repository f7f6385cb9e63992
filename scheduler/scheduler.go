// Package scheduler runs periodic jobs behind a cancellable handle.
package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var ErrInvalidInterval = errors.New("interval must be positive")

type (
	// Job is a running periodic job.
	Job interface {
		Stop()
	}

	// CronScheduler starts every job on its own cron runner. A run that is
	// still going when the next one is due is skipped.
	CronScheduler struct {
		logger cron.Logger
	}

	cronJob struct {
		once sync.Once
		cron *cron.Cron
	}
)

func New(logger logrus.FieldLogger) *CronScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &CronScheduler{logger: cron.PrintfLogger(logger)}
}

// Every runs job once per interval until the returned Job is stopped.
// Intervals below one second are rounded up to one second.
func (s *CronScheduler) Every(interval time.Duration, job func()) (Job, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	runner := cron.New(
		cron.WithLogger(s.logger),
		cron.WithChain(cron.Recover(s.logger), cron.SkipIfStillRunning(s.logger)),
	)
	runner.Schedule(cron.Every(interval), cron.FuncJob(job))
	runner.Start()

	return &cronJob{cron: runner}, nil
}

// Stop cancels future runs without waiting for one already in progress.
func (j *cronJob) Stop() {
	j.once.Do(func() {
		j.cron.Stop()
	})
}
