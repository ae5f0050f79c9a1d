package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"athlete-network/models"
)

// StartMatchScheduler runs a periodic job that advances match status by
// clock: upcoming matches whose start time has passed go live, live matches
// whose end time has passed complete. Returns the scheduler so the caller
// can shut it down.
func (s *LeagueService) StartMatchScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.advanceMatches(context.Background())
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Println("[SCHED] match status scheduler started")
	return sched, nil
}

func (s *LeagueService) advanceMatches(ctx context.Context) {
	now := time.Now()

	upcoming, err := s.Store.MatchesByStatus(ctx, models.MatchUpcoming)
	if err != nil {
		log.Printf("[SCHED] failed to list upcoming matches: %v", err)
		return
	}
	for _, m := range upcoming {
		if m.StartTime.After(now) {
			continue
		}
		if _, err := s.Store.UpdateMatch(ctx, m.ID, map[string]interface{}{"status": models.MatchLive}); err != nil {
			log.Printf("[SCHED] failed to mark match %d live: %v", m.ID, err)
			continue
		}
		log.Printf("[SCHED] match %d is now live (%s vs %s)", m.ID, m.Team1, m.Team2)
	}

	live, err := s.Store.MatchesByStatus(ctx, models.MatchLive)
	if err != nil {
		log.Printf("[SCHED] failed to list live matches: %v", err)
		return
	}
	for _, m := range live {
		if m.EndTime == nil || m.EndTime.After(now) {
			continue
		}
		if _, err := s.Store.UpdateMatch(ctx, m.ID, map[string]interface{}{"status": models.MatchCompleted}); err != nil {
			log.Printf("[SCHED] failed to complete match %d: %v", m.ID, err)
			continue
		}
		log.Printf("[SCHED] match %d completed", m.ID)
	}
}
