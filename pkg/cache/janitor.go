package cache

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultPruneSchedule runs the janitor once a minute.
const DefaultPruneSchedule = "@every 1m"

// Janitor prunes stale cache entries on a cron schedule.
type Janitor struct {
	cache    *Cache
	schedule string
	cron     *cron.Cron
}

// NewJanitor creates a janitor for the cache. An empty schedule uses
// DefaultPruneSchedule.
func NewJanitor(c *Cache, schedule string) *Janitor {
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	return &Janitor{
		cache:    c,
		schedule: schedule,
	}
}

// Start begins the periodic prune. Returns an error if the schedule
// expression is invalid.
func (j *Janitor) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, func() {
		if removed := j.cache.Prune(); removed > 0 {
			log.Debug().Int("removed", removed).Msg("Pruned stale cache entries")
		}
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	log.Info().Str("schedule", j.schedule).Msg("Cache janitor started")
	return nil
}

// Stop halts the periodic prune. Safe to call before Start.
func (j *Janitor) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}
