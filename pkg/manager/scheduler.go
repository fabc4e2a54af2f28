package manager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kasuboski/simulcast/pkg/cache"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type JobType string

const (
	FeedPoll         JobType = "FeedPoll"
	ScheduleRefresh  JobType = "ScheduleRefresh"
	DownloadsRefresh JobType = "DownloadsRefresh"
	ClientHealth     JobType = "ClientHealth"
)

// Job is a periodic refresh cycle. Apply only sees values of cycles that were not superseded.
type Job struct {
	Type     JobType
	Interval time.Duration
	Run      func(ctx context.Context) (any, error)
	Apply    func(ctx context.Context, value any)
}

// Result is the outcome of the latest applied cycle of a job
type Result struct {
	Job        JobType   `json:"job"`
	Cycle      string    `json:"cycle"`
	Generation uint64    `json:"generation"`
	Value      any       `json:"value,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

type cycle struct {
	generation uint64
	cancel     context.CancelFunc
}

type jobState struct {
	job Job

	// start serializes generation bumps with cancelling the previous cycle
	start      sync.Mutex
	apply      sync.Mutex
	generation atomic.Uint64
}

type Scheduler struct {
	jobs        map[JobType]*jobState
	order       []JobType
	cron        *cron.Cron
	now         func() time.Time
	runningJobs *cache.Cache[JobType, cycle]
	results     *cache.Cache[JobType, Result]
	wg          sync.WaitGroup
}

// NewScheduler creates a scheduler for jobs. Jobs without a positive interval only run when triggered.
func NewScheduler(jobs []Job) *Scheduler {
	s := &Scheduler{
		jobs:        make(map[JobType]*jobState, len(jobs)),
		cron:        cron.New(),
		now:         time.Now,
		runningJobs: cache.New[JobType, cycle](),
		results:     cache.New[JobType, Result](),
	}

	for _, j := range jobs {
		if _, ok := s.jobs[j.Type]; !ok {
			s.order = append(s.order, j.Type)
		}
		s.jobs[j.Type] = &jobState{job: j}
	}
	return s
}

// Run starts every job immediately and then on its interval until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx)

	for _, t := range s.order {
		js := s.jobs[t]
		if js.job.Interval > 0 {
			s.cron.Schedule(cron.Every(js.job.Interval), cron.FuncJob(func() {
				s.trigger(ctx, t)
			}))
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.trigger(ctx, t)
		}()
	}

	s.cron.Start()
	log.Infow("scheduler started", zap.Int("jobs", len(s.order)))

	<-ctx.Done()
	return s.shutdown(ctx)
}

func (s *Scheduler) shutdown(ctx context.Context) error {
	log := logger.FromCtx(ctx)
	log.Debug("scheduler context cancelled")

	stopped := s.cron.Stop()

	running := s.runningJobs.Keys()
	for _, t := range running {
		if c, ok := s.runningJobs.Get(t); ok {
			c.cancel()
		}
	}

	<-stopped.Done()
	s.wg.Wait()
	log.Debugw("all cycles cancelled", zap.Int("count", len(running)))
	return nil
}

func (s *Scheduler) trigger(ctx context.Context, t JobType) {
	_, _, _ = s.Trigger(ctx, t)
}

// Trigger runs a cycle of t now, cancelling a cycle of t that is still running.
// It reports whether the result was applied; a cycle superseded while running is dropped.
func (s *Scheduler) Trigger(ctx context.Context, t JobType) (Result, bool, error) {
	js, ok := s.jobs[t]
	if !ok {
		return Result{}, false, fmt.Errorf("unknown job %q", t)
	}

	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	js.start.Lock()
	gen := js.generation.Add(1)
	if prev, ok := s.runningJobs.Swap(t, cycle{generation: gen, cancel: cancel}); ok {
		prev.cancel()
	}
	js.start.Unlock()

	id := uuid.NewString()
	log := logger.FromCtx(ctx, zap.String("job_type", string(t)), zap.String("cycle", id))
	cycleCtx = logger.WithCtx(cycleCtx, log)

	res := Result{
		Job:        t,
		Cycle:      id,
		Generation: gen,
		StartedAt:  s.now(),
	}

	value, err := js.job.Run(cycleCtx)
	res.FinishedAt = s.now()
	res.Value = value
	if err != nil {
		res.Error = err.Error()
	}

	s.runningJobs.DeleteFunc(t, func(c cycle) bool {
		return c.generation == gen
	})

	js.apply.Lock()
	defer js.apply.Unlock()

	if js.generation.Load() != gen {
		log.Debugw("dropping superseded cycle", zap.Uint64("generation", gen))
		return res, false, err
	}

	if err != nil {
		log.Warnw("cycle failed", zap.Error(err))
	} else if js.job.Apply != nil {
		js.job.Apply(cycleCtx, value)
	}

	s.results.Set(t, res)
	log.Debugw("cycle finished", zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)))
	return res, true, err
}

// State returns the latest applied result of each job that has finished a cycle
func (s *Scheduler) State() map[JobType]Result {
	out := make(map[JobType]Result, s.results.Size())
	for _, t := range s.results.Keys() {
		if r, ok := s.results.Get(t); ok {
			out[t] = r
		}
	}
	return out
}

// Latest returns the latest applied result of t
func (s *Scheduler) Latest(t JobType) (Result, bool) {
	return s.results.Get(t)
}
