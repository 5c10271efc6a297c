package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/starfinance/backend/internal/services/bullion"
)

// ScheduleRecurringJobs starts the scheduler for periodic background
// work. Currently that is the bullion rate refresh; the scheduler is
// returned so main can stop it on shutdown.
func ScheduleRecurringJobs(rates *bullion.RateService, refreshMinutes int) *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	if _, err := scheduler.Every(refreshMinutes).Minutes().Do(rates.Refresh); err != nil {
		log.Printf("failed to schedule bullion rate refresh: %v", err)
	}

	scheduler.StartAsync()
	return scheduler
}
