package scheduler

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/llm"
	"github.com/mrwolf/moodlog/internal/vault"
	"github.com/mrwolf/moodlog/internal/wellness"
)

// Job types recorded in scheduler_runs
const (
	JobWeeklyLetter = "weekly_letter"
	JobHealthCheck  = "health_check"
)

// Scheduler manages scheduled jobs
type Scheduler struct {
	scheduler gocron.Scheduler
	db        *db.DB
	vault     *vault.Vault
	svc       *wellness.Service
	timezone  *time.Location
	owners    []string
	now       func() time.Time
}

// Config holds scheduler configuration
type Config struct {
	Location *time.Location
	Owners   []string
}

// New creates a scheduler. v may be nil, in which case letters are only
// stored in the database.
func New(database *db.DB, v *vault.Vault, svc *wellness.Service, cfg Config) (*Scheduler, error) {
	tz := cfg.Location
	if tz == nil {
		tz = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(tz))
	if err != nil {
		return nil, err
	}

	owners := append([]string(nil), cfg.Owners...)
	sort.Strings(owners)

	return &Scheduler{
		scheduler: s,
		db:        database,
		vault:     v,
		svc:       svc,
		timezone:  tz,
		owners:    owners,
		now:       time.Now,
	}, nil
}

// Start registers all jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Weekly letter on Sunday at 08:00
	_, err := s.scheduler.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Sunday), gocron.NewAtTimes(gocron.NewAtTime(8, 0, 0))),
		gocron.NewTask(s.generateWeeklyLetters),
		gocron.WithName("weekly-letters"),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(s.healthCheck),
		gocron.WithName("health-check"),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Printf("scheduler: started with %d owners", len(s.owners))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) generateWeeklyLetters() {
	log.Println("scheduler: running weekly letter generation")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, owner := range s.owners {
		if _, err := s.GenerateWeeklyNow(ctx, owner); err != nil {
			log.Printf("scheduler: weekly letter for %s: %v", owner, err)
		}
	}
}

func (s *Scheduler) healthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.track(ctx, "", JobHealthCheck, func() error { return s.checkGenerator(ctx) })
}

func (s *Scheduler) checkGenerator(ctx context.Context) error {
	checker, ok := s.svc.Generator().(llm.HealthChecker)
	if !ok {
		return nil
	}
	if err := checker.HealthCheck(ctx); err != nil {
		log.Printf("scheduler: health check failed, %s unreachable: %v", llm.NameOf(s.svc.Generator()), err)
		return err
	}
	return nil
}

// track records a job run in scheduler_runs around fn
func (s *Scheduler) track(ctx context.Context, owner, jobType string, fn func() error) error {
	runID, err := s.db.StartSchedulerRun(ctx, owner, jobType)
	if err != nil {
		log.Printf("scheduler: recording %s start: %v", jobType, err)
	}

	jobErr := fn()

	if runID != 0 {
		msg := ""
		if jobErr != nil {
			msg = jobErr.Error()
		}
		if err := s.db.CompleteSchedulerRun(context.WithoutCancel(ctx), runID, msg); err != nil {
			log.Printf("scheduler: recording %s completion: %v", jobType, err)
		}
	}
	return jobErr
}
