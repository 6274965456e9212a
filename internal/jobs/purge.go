package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drawpile/listserver-go/internal/audit"
)

// Purger deletes listings whose last activity is older than before.
// repository.AnnouncementRepository implements it.
type Purger interface {
	DeleteInactiveBefore(ctx context.Context, before time.Time) (int64, error)
}

// PurgeJob periodically removes long dead listings. Liveness never depends on
// it: expired rows are already invisible, this only bounds table growth.
type PurgeJob struct {
	repo       Purger
	retention  time.Duration
	interval   time.Duration
	runTimeout time.Duration
	now        func() time.Time
	done       chan struct{}
	stopped    chan struct{}
}

func NewPurgeJob(repo Purger, retention, interval time.Duration) *PurgeJob {
	return &PurgeJob{
		repo:       repo,
		retention:  retention,
		interval:   interval,
		runTimeout: 30 * time.Second,
		now:        func() time.Time { return time.Now().UTC() },
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

func (j *PurgeJob) Start() {
	go j.run()
	log.Info().
		Dur("interval", j.interval).
		Dur("retention", j.retention).
		Msg("purge job started")
}

// Stop signals the job and waits for an in-flight purge to finish.
func (j *PurgeJob) Stop() {
	close(j.done)
	<-j.stopped
	log.Info().Msg("purge job stopped")
}

func (j *PurgeJob) run() {
	defer close(j.stopped)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.purge()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.purge()
		}
	}
}

func (j *PurgeJob) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), j.runTimeout)
	defer cancel()

	before := j.now().Add(-j.retention)
	count, err := j.repo.DeleteInactiveBefore(ctx, before)
	if err != nil {
		log.Error().Err(err).Msg("failed to purge inactive listings")
		return
	}
	if count > 0 {
		log.Info().Int64("count", count).Time("before", before).Msg("purged inactive listings")
		audit.Log(audit.Event{
			Type:    audit.EventPurge,
			Details: map[string]interface{}{"count": count},
		})
	}
}
