package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/run"
)

// Scheduler registers a deferred removal of a backup directory. The job
// runs after devup has exited; devup never verifies its completion
// (fire-and-forget), the sweep is the reliable fallback.
type Scheduler interface {
	ScheduleRemoval(ctx context.Context, dir string, at time.Time) error
}

// AtScheduler registers removal jobs with the at(1) facility
type AtScheduler struct {
	runner run.Runner
	facts  platform.Facts
}

// NewAtScheduler creates a scheduler backed by at(1)
func NewAtScheduler(runner run.Runner, facts platform.Facts) *AtScheduler {
	return &AtScheduler{runner: runner, facts: facts}
}

// ScheduleRemoval queues `rm -rf dir` for the expiry time. Missing at(1)
// is reported as an error; the caller degrades to a logged reminder.
func (s *AtScheduler) ScheduleRemoval(ctx context.Context, dir string, at time.Time) error {
	if !s.facts.OnPath("at") {
		return errors.New(errors.ErrNotFound, "at(1) is not available on this host")
	}

	// at reads the job from stdin; pipe it through the shell
	job := fmt.Sprintf("echo 'rm -rf %q' | at %s", dir, at.Format("15:04 01/02/2006"))
	if err := s.runner.Run(ctx, "sh", "-c", job); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to register at job")
	}
	return nil
}
